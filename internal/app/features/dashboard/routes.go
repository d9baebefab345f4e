// internal/app/features/dashboard/routes.go
package dashboard

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the dashboard endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/stats", h.ServeStats)
	return r
}
