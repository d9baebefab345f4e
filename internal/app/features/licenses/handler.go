// internal/app/features/licenses/handler.go
package licenses

import (
	"context"
	"errors"
	"net/http"

	licensesdata "github.com/dalemusser/assethub/internal/app/data/licenses"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	"github.com/dalemusser/assethub/internal/app/features/shared/httpjson"
	licensestore "github.com/dalemusser/assethub/internal/app/store/licenses"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	seatstore "github.com/dalemusser/assethub/internal/app/store/seats"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the license and seat endpoints for the active organization.
type Handler struct {
	licenses *licensesdata.Accessor
	log      *zap.Logger
}

func NewHandler(licenses *licensesdata.Accessor, logger *zap.Logger) *Handler {
	return &Handler{licenses: licenses, log: logger}
}

// ServeList handles GET /licenses.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	licenses, err := h.licenses.List(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, licenses)
}

// ServeSeats handles GET /licenses/seats: every seat across the active
// organization's licenses.
func (h *Handler) ServeSeats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	seats, err := h.licenses.Seats(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, seats)
}

type createRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	TotalSeats  int     `json:"totalSeats"`
}

// HandleCreate handles POST /licenses, creating the license together with
// its seats.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	license, err := h.licenses.Add(ctx, licensesdata.AddLicenseInput{
		Name:        req.Name,
		Description: req.Description,
		TotalSeats:  req.TotalSeats,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, license)
}

type updateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	TotalSeats  *int    `json:"totalSeats,omitempty"`
}

// HandleUpdate handles PATCH /licenses/{id}. Changing totalSeats does not
// add or remove seats.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid license id")
		return
	}
	var req updateRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	license, err := h.licenses.Update(ctx, id, licensesdata.UpdateLicenseInput{
		Name:        req.Name,
		Description: req.Description,
		TotalSeats:  req.TotalSeats,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, license)
}

// HandleDelete handles DELETE /licenses/{id}, removing the license's seats
// first.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid license id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.licenses.Delete(ctx, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignSeatRequest struct {
	PersonID string  `json:"personId"`
	Code     *string `json:"code,omitempty"`
}

// HandleAssignSeat handles POST /licenses/seats/{seatID}/assign.
func (h *Handler) HandleAssignSeat(w http.ResponseWriter, r *http.Request) {
	seatID, err := httpjson.URLObjectID(r, "seatID")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid seat id")
		return
	}
	var req assignSeatRequest
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

	seat, err := h.licenses.AssignSeat(ctx, seatID, personID, req.Code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, seat)
}

// HandleUnassignSeat handles POST /licenses/seats/{seatID}/unassign.
func (h *Handler) HandleUnassignSeat(w http.ResponseWriter, r *http.Request) {
	seatID, err := httpjson.URLObjectID(r, "seatID")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid seat id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	seat, err := h.licenses.UnassignSeat(ctx, seatID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, seat)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var verr *inputval.ValidationError
	switch {
	case errors.As(err, &verr):
		httpjson.RespondError(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, licensestore.ErrDuplicateLicenseName),
		errors.Is(err, seatstore.ErrSeatAlreadyTaken):
		httpjson.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, licensestore.ErrLicenseNotFound),
		errors.Is(err, seatstore.ErrSeatNotFound),
		errors.Is(err, peoplestore.ErrPersonNotFound):
		httpjson.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orgscope.ErrNoOrganization):
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("licenses request failed", zap.Error(err))
		httpjson.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
