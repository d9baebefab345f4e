// internal/app/features/people/handler.go
package people

import (
	"context"
	"errors"
	"net/http"

	peopledata "github.com/dalemusser/assethub/internal/app/data/people"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	"github.com/dalemusser/assethub/internal/app/features/shared/httpjson"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	teamstore "github.com/dalemusser/assethub/internal/app/store/teams"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the people endpoints for the active organization.
type Handler struct {
	people *peopledata.Accessor
	log    *zap.Logger
}

func NewHandler(people *peopledata.Accessor, logger *zap.Logger) *Handler {
	return &Handler{people: people, log: logger}
}

// ServeList handles GET /people.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	people, err := h.people.List(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, people)
}

type createRequest struct {
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Position  string  `json:"position"`
	Password  *string `json:"password,omitempty"`
	ReportsTo *string `json:"reportsTo,omitempty"`
	TeamID    *string `json:"teamId,omitempty"`
}

// HandleCreate handles POST /people.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reportsTo, err := httpjson.ParseOptionalObjectID(req.ReportsTo)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid reportsTo id")
		return
	}
	teamID, err := httpjson.ParseOptionalObjectID(req.TeamID)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid teamId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	person, err := h.people.Add(ctx, peopledata.AddPersonInput{
		Email:     req.Email,
		Name:      req.Name,
		Position:  req.Position,
		Password:  req.Password,
		ReportsTo: reportsTo,
		TeamID:    teamID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, person)
}

type updateRequest struct {
	Email     *string `json:"email,omitempty"`
	Name      *string `json:"name,omitempty"`
	Position  *string `json:"position,omitempty"`
	ReportsTo *string `json:"reportsTo,omitempty"`
	TeamID    *string `json:"teamId,omitempty"`
}

// HandleUpdate handles PATCH /people/{id}. Omitted required fields stay as
// they are; omitted reportsTo/teamId clear the reference.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid person id")
		return
	}
	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reportsTo, err := httpjson.ParseOptionalObjectID(req.ReportsTo)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid reportsTo id")
		return
	}
	teamID, err := httpjson.ParseOptionalObjectID(req.TeamID)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid teamId")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	person, err := h.people.Update(ctx, id, peopledata.UpdatePersonInput{
		Email:     req.Email,
		Name:      req.Name,
		Position:  req.Position,
		ReportsTo: reportsTo,
		TeamID:    teamID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, person)
}

// HandleDelete handles DELETE /people/{id}, releasing the person's seats,
// assets, and documents first.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.people.Delete(ctx, id); err != nil {
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
	case errors.Is(err, peoplestore.ErrDuplicatePersonEmail):
		httpjson.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, peopledata.ErrReportsToCycle):
		httpjson.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, peoplestore.ErrPersonNotFound),
		errors.Is(err, teamstore.ErrTeamNotFound):
		httpjson.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orgscope.ErrNoOrganization):
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("people request failed", zap.Error(err))
		httpjson.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
