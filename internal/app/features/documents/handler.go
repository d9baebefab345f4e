// internal/app/features/documents/handler.go
package documents

import (
	"context"
	"errors"
	"net/http"

	documentsdata "github.com/dalemusser/assethub/internal/app/data/documents"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	"github.com/dalemusser/assethub/internal/app/features/shared/httpjson"
	documentstore "github.com/dalemusser/assethub/internal/app/store/documents"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the document endpoints for the active organization.
type Handler struct {
	documents *documentsdata.Accessor
	log       *zap.Logger
}

func NewHandler(documents *documentsdata.Accessor, logger *zap.Logger) *Handler {
	return &Handler{documents: documents, log: logger}
}

// ServeList handles GET /documents.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	docs, err := h.documents.List(ctx)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, docs)
}

type createRequest struct {
	Name     string  `json:"name"`
	Filename string  `json:"filename"`
	PersonID *string `json:"personId,omitempty"`
}

// HandleCreate handles POST /documents.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	personID, err := httpjson.ParseOptionalObjectID(req.PersonID)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	doc, err := h.documents.Add(ctx, documentsdata.AddDocumentInput{
		Name:     req.Name,
		Filename: req.Filename,
		PersonID: personID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, doc)
}

type assignRequest struct {
	PersonID *string `json:"personId,omitempty"`
}

// HandleAssign handles POST /documents/{id}/assign. A null or omitted
// personId detaches the document.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	var req assignRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	personID, err := httpjson.ParseOptionalObjectID(req.PersonID)
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid person id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	doc, err := h.documents.AssignToPerson(ctx, id, personID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, doc)
}

// HandleDelete handles DELETE /documents/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.URLObjectID(r, "id")
	if err != nil {
		httpjson.RespondError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.documents.Delete(ctx, id); err != nil {
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
	case errors.Is(err, documentstore.ErrDocumentNotFound),
		errors.Is(err, peoplestore.ErrPersonNotFound):
		httpjson.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orgscope.ErrNoOrganization):
		httpjson.RespondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("documents request failed", zap.Error(err))
		httpjson.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
