package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jomarvillega/stockroom-backend/api/controllers"
	"github.com/jomarvillega/stockroom-backend/api/middleware"
	internalinventory "github.com/jomarvillega/stockroom-backend/internal/inventory"
	"github.com/jomarvillega/stockroom-backend/internal/ledger"
	internalorders "github.com/jomarvillega/stockroom-backend/internal/orders"
	"github.com/jomarvillega/stockroom-backend/pkg/config"
	"github.com/jomarvillega/stockroom-backend/pkg/db"
	"github.com/jomarvillega/stockroom-backend/pkg/logger"
	"github.com/jomarvillega/stockroom-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	ordersSvc internalorders.Service,
	inventorySvc internalinventory.Service,
	ledgerSvc ledger.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins...),
		// Cancels the request context at the deadline so in-flight
		// transactions roll back instead of holding row locks.
		chimiddleware.Timeout(cfg.App.RequestTimeout),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersSvc, logg))
			r.Get("/", controllers.ListOrders(ordersSvc, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersSvc, logg))
			r.Post("/{orderId}/complete", controllers.CompleteOrder(ordersSvc, logg))
			r.With(middleware.RequireVoidRights(logg)).Post("/{orderId}/void", controllers.VoidOrder(ordersSvc, logg))
			r.With(middleware.RequireVoidRights(logg)).Delete("/{orderId}", controllers.DeleteOrder(ordersSvc, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListStock(inventorySvc, logg))
			r.Post("/{productId}/restock", controllers.Restock(inventorySvc, logg))
			r.Get("/{productId}/movements", controllers.StockMovements(ledgerSvc, logg))
		})
	})

	return r
}
