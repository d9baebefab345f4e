// internal/app/features/organizations/handler.go
package organizations

import (
	"context"
	"errors"
	"net/http"

	organizationsdata "github.com/dalemusser/assethub/internal/app/data/organizations"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	"github.com/dalemusser/assethub/internal/app/features/shared/httpjson"
	organizationstore "github.com/dalemusser/assethub/internal/app/store/organizations"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/orgsession"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the organization list and the active-organization controls.
type Handler struct {
	orgs    *organizationsdata.Accessor
	scope   *orgscope.Scope
	session *orgsession.Manager
	log     *zap.Logger
}

func NewHandler(orgs *organizationsdata.Accessor, scope *orgscope.Scope, session *orgsession.Manager, logger *zap.Logger) *Handler {
	return &Handler{orgs: orgs, scope: scope, session: session, log: logger}
}

// ServeList handles GET /organizations.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orgs, err := h.orgs.List(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, orgs)
}

// ServeCurrent handles GET /organizations/current.
func (h *Handler) ServeCurrent(w http.ResponseWriter, r *http.Request) {
	org, ok := h.scope.Current()
	if !ok {
		httpjson.RespondError(w, http.StatusNotFound, "no active organization")
		return
	}
	httpjson.Respond(w, http.StatusOK, org)
}

type createRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /organizations.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.orgs.Add(ctx, req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, org)
}

type renameRequest struct {
	Name string `json:"name"`
}

// HandleRename handles PATCH /organizations/{id}.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid organization id")
		return
	}
	var req renameRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	org, err := h.orgs.Rename(ctx, id, req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, org)
}

// HandleDelete handles DELETE /organizations/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.orgs.Delete(ctx, id); err != nil {
		h.writeError(w, err)
		return
	}
	// Only clear the cookie when it pointed at the deleted organization.
	if selected, ok := h.session.SelectedOrg(r); ok && selected == id {
		if err := h.session.ClearSelectedOrg(w, r); err != nil {
			h.log.Warn("session clear after delete failed", zap.Error(err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type switchRequest struct {
	OrganizationID string `json:"organizationId"`
}

// HandleSwitch handles POST /organizations/switch. A failed switch leaves
// the previous selection active.
func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req switchRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	id, err := httpjson.ParseObjectID(req.OrganizationID)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid organization id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.scope.SwitchTo(ctx, id); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.session.SetSelectedOrg(w, r, id); err != nil {
		h.log.Warn("session write after switch failed", zap.Error(err))
	}
	org, _ := h.scope.Current()
	httpjson.Respond(w, http.StatusOK, org)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *inputval.ValidationError
	switch {
	case errors.As(err, &verr):
		httpjson.RespondError(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, organizationstore.ErrDuplicateOrganization):
		httpjson.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, organizationstore.ErrOrganizationNotFound):
		httpjson.RespondError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error("organization request failed", zap.Error(err))
		httpjson.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
