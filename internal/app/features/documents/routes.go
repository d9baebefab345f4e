// internal/app/features/documents/routes.go
package documents

import "github.com/go-chi/chi/v5"

// Routes mounts the document endpoints (typically under "/documents").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/assign", h.HandleAssign)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
