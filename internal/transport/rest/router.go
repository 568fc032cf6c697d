package rest

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/auth"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/payment"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/reservation"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/transport/middleware"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/transport/swagger"
)

type RouterDeps struct {
	DB                 *sql.DB
	Redis              *redis.Client
	Config             *internal.Config
	AuthHandler        *auth.Handler
	ReservationHandler *reservation.Handler
	WebhookHandler     *payment.WebhookHandler
}

// RegisterAllRoutes wires the HTTP surface under /api/v1. The gateway
// callback stays outside auth, payment submission sits behind both auth and
// the rate limiter.
func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)
	rateLimit := middleware.RateLimit(deps.Config.Redis.RateLimit, deps.Redis)

	router.Use(middleware.CORS(deps.Config.Server.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.WebhookHandler != nil {
			r.Post("/payment/callback", deps.WebhookHandler.HandleGatewayCallback)
		}

		if deps.AuthHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", deps.AuthHandler.Login)
				sr.Post("/refresh", deps.AuthHandler.Refresh)
			})
		}

		if deps.ReservationHandler != nil {
			r.Group(func(pr chi.Router) {
				if deps.AuthHandler != nil {
					pr.Use(deps.AuthHandler.Middleware)
				}

				pr.Route("/reservations", func(rr chi.Router) {
					rr.Get("/", deps.ReservationHandler.ListReservations)
					rr.Post("/", deps.ReservationHandler.CreateReservation)
					rr.Get("/{id}", deps.ReservationHandler.GetReservation)
					rr.Patch("/{id}/cancel", deps.ReservationHandler.CancelReservation)

					rr.Get("/{id}/payment", deps.ReservationHandler.GetPaymentInfo)
					rr.Group(func(pmr chi.Router) {
						pmr.Use(rateLimit)
						pmr.Post("/{id}/payment", deps.ReservationHandler.SubmitPayment)
					})
				})
			})
		}
	})
}
