// internal/app/features/assets/handler.go
package assets

import (
	"context"
	"errors"
	"net/http"

	assetsdata "github.com/dalemusser/assethub/internal/app/data/assets"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	"github.com/dalemusser/assethub/internal/app/features/shared/httpjson"
	assetstore "github.com/dalemusser/assethub/internal/app/store/assets"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the asset endpoints for the active organization.
type Handler struct {
	assets *assetsdata.Accessor
	log    *zap.Logger
}

func NewHandler(assets *assetsdata.Accessor, logger *zap.Logger) *Handler {
	return &Handler{assets: assets, log: logger}
}

// ServeList handles GET /assets.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	assets, err := h.assets.List(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, assets)
}

type createRequest struct {
	Name         string  `json:"name"`
	SerialNumber *string `json:"serialNumber,omitempty"`
	Brand        string  `json:"brand"`
	Value        float64 `json:"value"`
}

// HandleCreate handles POST /assets.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	asset, err := h.assets.Add(ctx, assetsdata.AddAssetInput{
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Brand:        req.Brand,
		Value:        req.Value,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, asset)
}

type updateRequest struct {
	Name         *string  `json:"name,omitempty"`
	SerialNumber *string  `json:"serialNumber,omitempty"`
	Brand        *string  `json:"brand,omitempty"`
	Value        *float64 `json:"value,omitempty"`
}

// HandleUpdate handles PATCH /assets/{id}. An omitted serialNumber clears
// it.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	asset, err := h.assets.Update(ctx, id, assetsdata.UpdateAssetInput{
		Name:         req.Name,
		SerialNumber: req.SerialNumber,
		Brand:        req.Brand,
		Value:        req.Value,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, asset)
}

// HandleDelete handles DELETE /assets/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.assets.Delete(ctx, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	PersonID string `json:"personId"`
}

// HandleAssign handles POST /assets/{id}/assign.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	var req assignRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	personID, err := httpjson.ParseObjectID(req.PersonID)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	asset, err := h.assets.Assign(ctx, id, personID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, asset)
}

// HandleUnassign handles POST /assets/{id}/unassign.
func (h *Handler) HandleUnassign(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	asset, err := h.assets.Unassign(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, asset)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *inputval.ValidationError
	switch {
	case errors.As(err, &verr):
		httpjson.RespondError(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, assetstore.ErrAssetNotFound),
		errors.Is(err, peoplestore.ErrPersonNotFound):
		httpjson.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orgscope.ErrNoOrganization):
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("assets request failed", zap.Error(err))
		httpjson.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
