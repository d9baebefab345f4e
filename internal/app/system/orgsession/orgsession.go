// internal/app/system/orgsession/orgsession.go

// Package orgsession keeps each browser's selected organization in a signed
// cookie session. It is the HTTP-facing mirror of the server-side selection
// persisted by the prefs store: the cookie remembers which organization this
// client was looking at, the prefs store remembers the service-wide default.
package orgsession

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const orgIDKey = "organization_id"

type ctxKey struct{}

// Manager wraps the gorilla cookie store for organization selection.
type Manager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewManager builds a Manager. An empty signing key gets a generated one,
// which is fine for dev but means selections reset on restart.
func NewManager(key, name, domain string, secure bool, logger *zap.Logger) (*Manager, error) {
	if name == "" {
		return nil, fmt.Errorf("orgsession: session name must not be empty")
	}
	keyBytes := []byte(key)
	if len(keyBytes) == 0 {
		keyBytes = securecookie.GenerateRandomKey(32)
		logger.Warn("orgsession: no session key configured, using a generated key")
	}

	store := sessions.NewCookieStore(keyBytes)
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   domain,
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store, name: name, log: logger}, nil
}

// SelectedOrg returns the organization id stored in the request's session.
func (m *Manager) SelectedOrg(r *http.Request) (primitive.ObjectID, bool) {
	sess, _ := m.store.Get(r, m.name)
	hex, _ := sess.Values[orgIDKey].(string)
	if hex == "" {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// SetSelectedOrg writes the selection into the session cookie.
func (m *Manager) SetSelectedOrg(w http.ResponseWriter, r *http.Request, id primitive.ObjectID) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[orgIDKey] = id.Hex()
	return sess.Save(r, w)
}

// ClearSelectedOrg drops the selection, e.g. after the organization is deleted.
func (m *Manager) ClearSelectedOrg(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	delete(sess.Values, orgIDKey)
	return sess.Save(r, w)
}

// LoadSelectedOrg is middleware that injects the session's organization id
// into the request context for handlers that want it.
func (m *Manager) LoadSelectedOrg(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := m.SelectedOrg(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext returns the organization id placed by LoadSelectedOrg.
func FromContext(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(ctxKey{}).(primitive.ObjectID)
	return id, ok
}
