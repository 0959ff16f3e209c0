package provision

import (
	"context"
	"log/slog"
	"net/http"

	httpresponse "github.com/jeevanjot011/bevflow/internal/lib/http"
	"github.com/jeevanjot011/bevflow/internal/provisioner"
)

type ensurer interface {
	EnsureAll(ctx context.Context) (provisioner.Report, error)
}

type Handler struct {
	log *slog.Logger

	ensurer ensurer
}

func NewHandler(log *slog.Logger, ensurer ensurer) *Handler {
	return &Handler{
		log:     log,
		ensurer: ensurer,
	}
}

// Provision runs every provisioning step and returns the report. Any failed
// step turns the response into a 500; the report is sent either way.
func (h *Handler) Provision(w http.ResponseWriter, r *http.Request) {
	const op = "delivery.http.admin.provision.Provision"

	report, err := h.ensurer.EnsureAll(r.Context())
	if err != nil {
		h.log.Error(op, slog.String("error", err.Error()))
		httpresponse.JSON(w, h.log, http.StatusInternalServerError, report)
		return
	}

	httpresponse.JSON(w, h.log, http.StatusOK, report)
}
