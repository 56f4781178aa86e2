package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/gastoscl/rendiciones/internal/area"
	"github.com/gastoscl/rendiciones/internal/auth"
	"github.com/gastoscl/rendiciones/internal/category"
	"github.com/gastoscl/rendiciones/internal/client"
	"github.com/gastoscl/rendiciones/internal/expense"
	"github.com/gastoscl/rendiciones/internal/receipt"
	"github.com/gastoscl/rendiciones/internal/transport/middleware"
	"github.com/gastoscl/rendiciones/internal/transport/swagger"
	"github.com/gastoscl/rendiciones/internal/user"
)

type Handlers struct {
	Auth    *auth.Handler
	User    *user.Handler
	Area    *area.Handler
	Categ   *category.Handler
	Client  *client.Handler
	Expense *expense.Handler
	Receipt *receipt.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, rbac *auth.RBAC, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.TraceID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
		})

		// Category catalog is public; it only describes the form choices.
		r.Get("/categories", h.Categ.GetCategories)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.Auth.Me)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.User.ListUsers)
				ur.Get("/{id}", h.User.GetUser)

				ur.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Post("/", h.User.CreateUser)
					ar.Patch("/{id}", h.User.UpdateUser)
				})
			})

			pr.Route("/areas", func(ar chi.Router) {
				ar.Get("/", h.Area.ListAreas)

				ar.Group(func(aar chi.Router) {
					aar.Use(rbac.RequireAdmin())
					aar.Post("/", h.Area.CreateArea)
					aar.Patch("/{id}", h.Area.UpdateArea)
				})
			})

			pr.Route("/clients", func(cr chi.Router) {
				cr.Post("/", h.Client.RegisterClient)
				cr.Get("/", h.Client.ListClients)

				cr.Group(func(acr chi.Router) {
					acr.Use(rbac.RequireAdmin())
					acr.Get("/pending", h.Client.ListPendingClients)
					acr.Patch("/{id}/approve", h.Client.ApproveClient)
					acr.Patch("/{id}/reject", h.Client.RejectClient)
				})
			})

			pr.Route("/expenses", func(er chi.Router) {
				er.Post("/", h.Expense.SubmitExpense)
				er.Get("/", h.Expense.ListExpenses)
				er.Get("/{id}", h.Expense.GetExpense)
				er.Patch("/{id}", h.Expense.UpdateExpense)
				er.Delete("/{id}", h.Expense.DeleteExpense)
				er.Get("/{id}/approvals", h.Expense.GetApprovalHistory)

				er.Group(func(rr chi.Router) {
					rr.Use(rbac.RequireReviewer())
					rr.Get("/pending", h.Expense.ListPendingExpenses)
					rr.Patch("/{id}/approve", h.Expense.ApproveExpense)
					rr.Patch("/{id}/reject", h.Expense.RejectExpense)
				})
			})

			pr.Group(func(rr chi.Router) {
				rr.Use(rbac.RequireReviewer())
				rr.Get("/approvals/history", h.Expense.ListMyDecisions)
			})

			pr.Route("/stats", func(sr chi.Router) {
				sr.Get("/summary", h.Expense.GetStats)

				sr.Group(func(rr chi.Router) {
					rr.Use(rbac.RequireReviewer())
					rr.Get("/by-category", h.Expense.GetStatsByCategory)
					rr.Get("/by-period", h.Expense.GetStatsByPeriod)
				})

				sr.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Get("/by-area", h.Expense.GetStatsByArea)
				})
			})

			pr.Route("/receipts", func(rr chi.Router) {
				rr.Post("/", h.Receipt.UploadReceipt)
				rr.Get("/{reference}", h.Receipt.DownloadReceipt)
			})
		})
	})
}
