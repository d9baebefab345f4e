// internal/app/features/shared/httpjson/httpjson.go

// Package httpjson holds the JSON request/response plumbing shared by the
// API features.
package httpjson

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type errorResponse struct {
	Error string `json:"error"`
}

// Respond writes v as a JSON response with the given status.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError writes a JSON error body with the given status.
func RespondError(w http.ResponseWriter, status int, msg string) {
	Respond(w, status, errorResponse{Error: msg})
}

// Decode reads the request body into dst. Unknown fields are rejected so
// typos in request payloads surface as 400s instead of silent no-ops.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// URLObjectID parses the named chi URL parameter as an ObjectID.
func URLObjectID(r *http.Request, param string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, param))
}

// ParseObjectID parses a hex id from a request payload.
func ParseObjectID(s string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(s)
}

// ParseOptionalObjectID parses an optional hex id: nil and "" both mean
// absent.
func ParseOptionalObjectID(s *string) (*primitive.ObjectID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
