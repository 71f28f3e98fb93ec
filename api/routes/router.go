package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sew4mi/sew4mi-backend/api/controllers"
	"github.com/sew4mi/sew4mi-backend/api/middleware"
	"github.com/sew4mi/sew4mi-backend/internal/milestones"
	"github.com/sew4mi/sew4mi-backend/internal/orders"
	"github.com/sew4mi/sew4mi-backend/pkg/config"
	"github.com/sew4mi/sew4mi-backend/pkg/db"
	"github.com/sew4mi/sew4mi-backend/pkg/logger"
	"github.com/sew4mi/sew4mi-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	ordersService orders.Service,
	milestonesService milestones.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	writePolicy := middleware.NewWriteRateLimitPolicy(
		"orders",
		cfg.WriteRate.Window,
		cfg.WriteRate.IPLimit,
		cfg.WriteRate.UserLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.WriteRateLimit(writePolicy, redisClient, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Get("/ping", controllers.PrivatePing())

		r.Post("/escrow/quote", controllers.EscrowQuote(logg))

		r.Post("/orders", controllers.CreateOrder(ordersService, logg))
		r.Get("/orders", controllers.ListOrders(ordersService, logg))
		r.Get("/orders/{orderId}", controllers.OrderDetail(ordersService, logg))
		r.Get("/orders/{orderId}/milestones", controllers.OrderMilestones(milestonesService, logg))
		r.Post("/orders/{orderId}/milestones/{milestoneId}/decision", controllers.MilestoneDecision(milestonesService, logg))
	})

	return r
}
