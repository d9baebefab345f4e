// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"net/http"

	dashboarddata "github.com/dalemusser/assethub/internal/app/data/dashboard"
	"github.com/dalemusser/assethub/internal/app/features/shared/httpjson"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the dashboard counts for the active organization.
type Handler struct {
	stats *dashboarddata.Accessor
	log   *zap.Logger
}

func NewHandler(stats *dashboarddata.Accessor, logger *zap.Logger) *Handler {
	return &Handler{stats: stats, log: logger}
}

// ServeStats handles GET /dashboard/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	stats, err := h.stats.Stats(ctx)
	if err != nil {
		h.log.Error("dashboard stats failed", zap.Error(err))
		httpjson.RespondError(w, http.StatusInternalServerError, "could not load dashboard stats")
		return
	}
	httpjson.Respond(w, http.StatusOK, stats)
}
