// internal/app/features/organizations/routes.go
package organizations

import "github.com/go-chi/chi/v5"

// Routes mounts the organization endpoints (typically under
// "/organizations" from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/current", h.ServeCurrent)
	r.Post("/switch", h.HandleSwitch)
	r.Patch("/{id}", h.HandleRename)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
