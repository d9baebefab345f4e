// internal/app/features/teams/routes.go
package teams

import "github.com/go-chi/chi/v5"

// Routes mounts the team endpoints (typically under "/teams").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
