/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, the middleware stack and the route table.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:    Unique ID per request, carried into the logs
  2. requestLogger: One zerolog line per request
  3. recoverer:    Panic recovery (500 result instead of a crash)
  4. CORS:         Cross-origin requests from the presentation layer
  5. requireUser:  /api only; 401 without an authenticated user

ROUTE GROUPS:
  /api/workspaces/*     Workspace creation
  /api/accounts/*       Accounts, balance adjustment, reconciliation
  /api/transactions/*   Ledger transactions
  /api/income/*         Paychecks and one-off income
  /api/budget/*         Bills and planned expenses
  /api/categories/*     Categories
  /healthz              Liveness (no auth)
  /*                    Static files (presentation layer)

STATIC FILE SERVING:
  Serves the built app from Handler.StaticDir when it exists and falls
  back to index.html for client-side routing.

SEE ALSO:
  - handlers.go: Shared handler plumbing
  - middleware.go: Logging, recovery, identity
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	allowedHeaders := []string{"Accept", "Authorization", "Content-Type"}
	if hi, ok := h.Identity.(HeaderIdentity); ok {
		allowedHeaders = append(allowedHeaders, hi.Header)
	}

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.Log))
	r.Use(recoverer(h.Log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   allowedHeaders,
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser(h.Identity))

		r.Route("/workspaces", func(r chi.Router) {
			r.Post("/", h.CreateWorkspace)
			r.Get("/current", h.CurrentWorkspace)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", h.ListAccounts)
			r.Post("/", h.CreateAccount)
			r.Put("/{id}", h.UpdateAccount)
			r.Delete("/{id}", h.DeleteAccount)
			r.Post("/{id}/balance", h.AdjustBalance)
			r.Get("/{id}/reconcile", h.ReconcileAccount)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
			r.Put("/{id}", h.UpdateTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})

		r.Route("/income", func(r chi.Router) {
			r.Post("/settle", h.SettleIncome)
			r.Get("/{kind}", h.ListIncome)
			r.Post("/{kind}", h.CreateIncome)
			r.Put("/{kind}/{id}", h.UpdateIncome)
			r.Delete("/{kind}/{id}", h.DeleteIncome)
		})

		r.Route("/budget", func(r chi.Router) {
			r.Get("/{kind}", h.ListBudgetItems)
			r.Post("/{kind}", h.CreateBudgetItem)
			r.Put("/{kind}/{id}", h.UpdateBudgetItem)
			r.Delete("/{kind}/{id}", h.DeleteBudgetItem)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Put("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})

	if h.StaticDir != "" {
		if _, err := os.Stat(h.StaticDir); err == nil {
			r.Get("/*", spa(h.StaticDir))
		}
	}

	return r
}

// spa serves files from dir, and index.html for any path that is not a file.
func spa(dir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))
	return func(w http.ResponseWriter, r *http.Request) {
		fullPath := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(fullPath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	}
}
