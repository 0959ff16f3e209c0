package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
	httpresponse "github.com/jeevanjot011/bevflow/internal/lib/http"
)

type orderPublisher interface {
	Publish(ctx context.Context, msg models.OrderMessage) error
}

type Handler struct {
	log *slog.Logger

	orderPublisher orderPublisher
	now            func() time.Time
}

func NewHandler(log *slog.Logger, orderPublisher orderPublisher) *Handler {
	return &Handler{
		log:            log,
		orderPublisher: orderPublisher,
		now:            time.Now,
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.order.create.Create"

	var request CreateOrderRequest

	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		h.log.Error(op, slog.String("failed to decode request", err.Error()))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := h.now()

	if err = request.validate(now); err != nil {
		h.log.Error(op, slog.String("failed to validate request", err.Error()))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg := request.toDTO(now)

	if err = h.orderPublisher.Publish(r.Context(), msg); err != nil {
		h.log.Error(op, slog.String("failed to publish order", err.Error()))

		switch {
		case errors.Is(err, internalErrors.ErrInvalidMessage):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, internalErrors.ErrEnqueueFailed):
			http.Error(w, err.Error(), http.StatusBadGateway)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	httpresponse.JSON(w, h.log, http.StatusAccepted, httpresponse.H{
		"order_id": msg.OrderID.String(),
	})
}
