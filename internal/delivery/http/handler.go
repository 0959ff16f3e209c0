package order_service_http

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jeevanjot011/bevflow/internal/delivery/http/admin/provision"
	"github.com/jeevanjot011/bevflow/internal/delivery/http/order/create"
	"github.com/jeevanjot011/bevflow/internal/delivery/http/order/logs"
	"github.com/jeevanjot011/bevflow/internal/delivery/http/order/summary"
	"github.com/jeevanjot011/bevflow/internal/delivery/http/subscription"
	"github.com/jeevanjot011/bevflow/internal/domain/models"
	httpresponse "github.com/jeevanjot011/bevflow/internal/lib/http"
	"github.com/jeevanjot011/bevflow/internal/provisioner"
)

type Publisher interface {
	Publish(ctx context.Context, msg models.OrderMessage) error
	SubscribeEmail(ctx context.Context, address string) (bool, error)
}

type SummaryReader interface {
	Get(ctx context.Context, orderID string) (models.OrderSummary, error)
}

type LogLinker interface {
	Link(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Provisioner interface {
	EnsureAll(ctx context.Context) (provisioner.Report, error)
}

type Handler struct {
	log *slog.Logger

	create       *create.Handler
	summary      *summary.Handler
	logs         *logs.Handler
	subscription *subscription.Handler
	provision    *provision.Handler
}

func NewHandler(
	log *slog.Logger,
	publisher Publisher,
	summaries SummaryReader,
	archive LogLinker,
	prov Provisioner,
) *Handler {
	return &Handler{
		log:          log,
		create:       create.NewHandler(log, publisher),
		summary:      summary.NewHandler(log, summaries),
		logs:         logs.NewHandler(log, archive),
		subscription: subscription.NewHandler(log, publisher),
		provision:    provision.NewHandler(log, prov),
	}
}

func (h *Handler) InitRoutes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", h.healthz)

	mux.Route("/orders", func(r chi.Router) {
		r.Post("/", h.create.Create)
		r.Get("/{order_id}/summary", h.summary.Get)
		r.Get("/{order_id}/log", h.logs.Link)
	})

	mux.Post("/subscriptions", h.subscription.Subscribe)
	mux.Post("/admin/provision", h.provision.Provision)

	return mux
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	httpresponse.JSON(w, h.log, http.StatusOK, httpresponse.H{"status": "ok"})
}
