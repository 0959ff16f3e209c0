package summary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jeevanjot011/bevflow/internal/domain/models"
	internalErrors "github.com/jeevanjot011/bevflow/internal/lib/errors"
	httpresponse "github.com/jeevanjot011/bevflow/internal/lib/http"
)

type summaryGetter interface {
	Get(ctx context.Context, orderID string) (models.OrderSummary, error)
}

type Handler struct {
	log *slog.Logger

	summaryGetter summaryGetter
}

func NewHandler(log *slog.Logger, summaryGetter summaryGetter) *Handler {
	return &Handler{
		log:           log,
		summaryGetter: summaryGetter,
	}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.order.summary.Get"

	orderID := chi.URLParam(r, "order_id")

	s, err := h.summaryGetter.Get(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, internalErrors.ErrSummaryNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		h.log.Error(op, slog.String("order_id", orderID), slog.String("error", err.Error()))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	httpresponse.JSON(w, h.log, http.StatusOK, s)
}
