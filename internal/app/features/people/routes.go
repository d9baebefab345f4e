// internal/app/features/people/routes.go
package people

import "github.com/go-chi/chi/v5"

// Routes mounts the people endpoints (typically under "/people").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
