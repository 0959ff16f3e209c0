package subscription

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	httpresponse "github.com/jeevanjot011/bevflow/internal/lib/http"
)

type emailSubscriber interface {
	SubscribeEmail(ctx context.Context, address string) (bool, error)
}

type Handler struct {
	log *slog.Logger

	subscriber emailSubscriber
}

func NewHandler(log *slog.Logger, subscriber emailSubscriber) *Handler {
	return &Handler{
		log:        log,
		subscriber: subscriber,
	}
}

// Subscribe answers 201 for a new subscription and 200 when it already existed.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.subscription.Subscribe"

	var request SubscribeRequest

	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		h.log.Error(op, slog.String("failed to decode request", err.Error()))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err = request.validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.subscriber.SubscribeEmail(r.Context(), request.Email)
	if err != nil {
		h.log.Error(op, slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	httpresponse.JSON(w, h.log, status, httpresponse.H{"email": request.Email, "created": created})
}
