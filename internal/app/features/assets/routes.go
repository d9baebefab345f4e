// internal/app/features/assets/routes.go
package assets

import "github.com/go-chi/chi/v5"

// Routes mounts the asset endpoints (typically under "/assets").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Post("/{id}/assign", h.HandleAssign)
	r.Post("/{id}/unassign", h.HandleUnassign)

	return r
}
