// internal/app/features/licenses/routes.go
package licenses

import "github.com/go-chi/chi/v5"

// Routes mounts the license and seat endpoints (typically under
// "/licenses").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/seats", h.ServeSeats)
	r.Post("/seats/{seatID}/assign", h.HandleAssignSeat)
	r.Post("/seats/{seatID}/unassign", h.HandleUnassignSeat)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
