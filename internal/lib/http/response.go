package httpresponse

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type H map[string]any

// JSON writes body with status. Encoding failures are only logged: the
// header is already sent.
func JSON(w http.ResponseWriter, log *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
