package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/invoice-approval/internal/auth"
	"github.com/frahmantamala/invoice-approval/internal/organization"
	"github.com/frahmantamala/invoice-approval/internal/request"
	"github.com/frahmantamala/invoice-approval/internal/transport/middleware"
	"github.com/frahmantamala/invoice-approval/internal/transport/swagger"
	"github.com/frahmantamala/invoice-approval/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, authHandler *auth.Handler, userHandler *user.Handler, requestHandler *request.Handler, orgHandler *organization.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		if authHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", authHandler.Login)
				sr.Post("/refresh", authHandler.RefreshToken)
				sr.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler != nil {
			// Protected routes that require authentication
			r.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)

				// Current user
				if userHandler != nil {
					pr.Get("/users/me", userHandler.GetCurrentUser)
				}

				// Organization directory for the request form
				if orgHandler != nil {
					pr.Get("/companies", orgHandler.GetCompanies)
					pr.Get("/companies/{companyID}/sectors", orgHandler.GetSectors)
					pr.Get("/sectors/{sectorID}/cost-centers", orgHandler.GetCostCenters)
				}

				// Payment request routes; role checks live in the
				// service's authorization gate
				if requestHandler != nil {
					pr.Route("/requests", func(rr chi.Router) {
						rr.Post("/", requestHandler.CreateRequest)
						rr.Get("/", requestHandler.ListRequests)
						rr.Post("/batch", requestHandler.BatchTransition)
						rr.Get("/{id}", requestHandler.GetRequest)
						rr.Put("/{id}", requestHandler.EditRequest)
						rr.Delete("/{id}", requestHandler.DeleteRequest)
						rr.Get("/{id}/history", requestHandler.GetRequestHistory)

						rr.Patch("/{id}/approve", requestHandler.ApproveRequest)
						rr.Patch("/{id}/reject", requestHandler.RejectRequest)
						rr.Patch("/{id}/schedule", requestHandler.SchedulePayment)
						rr.Patch("/{id}/mark-paid", requestHandler.MarkPaid)
						rr.Patch("/{id}/resubmit", requestHandler.ResubmitRequest)
					})
				}
			})
		}
	})
}
