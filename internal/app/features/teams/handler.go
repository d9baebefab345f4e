// internal/app/features/teams/handler.go
package teams

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	teamsdata "github.com/dalemusser/assethub/internal/app/data/teams"
	"github.com/dalemusser/assethub/internal/app/features/shared/httpjson"
	teamstore "github.com/dalemusser/assethub/internal/app/store/teams"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the team endpoints for the active organization.
type Handler struct {
	teams *teamsdata.Accessor
	log   *zap.Logger
}

func NewHandler(teams *teamsdata.Accessor, logger *zap.Logger) *Handler {
	return &Handler{teams: teams, log: logger}
}

// ServeList handles GET /teams.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	teams, err := h.teams.List(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, teams)
}

type createRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// HandleCreate handles POST /teams.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.teams.Add(ctx, teamsdata.AddTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, team)
}

type updateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// HandleUpdate handles PATCH /teams/{id}. An omitted description clears it.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid team id")
		return
	}
	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.teams.Update(ctx, id, teamsdata.UpdateTeamInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, team)
}

// HandleDelete handles DELETE /teams/{id}, detaching the team's members
// first.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid team id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.teams.Delete(ctx, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *inputval.ValidationError
	switch {
	case errors.As(err, &verr):
		httpjson.RespondError(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, teamstore.ErrDuplicateTeamName):
		httpjson.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, teamstore.ErrTeamNotFound):
		httpjson.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orgscope.ErrNoOrganization):
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("teams request failed", zap.Error(err))
		httpjson.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
