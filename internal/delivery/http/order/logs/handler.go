package logs

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	httpresponse "github.com/jeevanjot011/bevflow/internal/lib/http"
)

const linkTTL = time.Hour

type linker interface {
	Link(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Handler struct {
	log *slog.Logger

	linker linker
}

func NewHandler(log *slog.Logger, linker linker) *Handler {
	return &Handler{
		log:    log,
		linker: linker,
	}
}

// Link returns a presigned URL of the order's processing log.
func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.order.logs.Link"

	orderID := chi.URLParam(r, "order_id")

	url, err := h.linker.Link(r.Context(), models.LogKey(orderID), linkTTL)
	if err != nil {
		h.log.Error(op, slog.String("order_id", orderID), slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httpresponse.JSON(w, h.log, http.StatusOK, httpresponse.H{"url": url})
}
