package organizations_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	organizationsdata "github.com/dalemusser/assethub/internal/app/data/organizations"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	organizationsfeature "github.com/dalemusser/assethub/internal/app/features/organizations"
	assetstore "github.com/dalemusser/assethub/internal/app/store/assets"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	documentstore "github.com/dalemusser/assethub/internal/app/store/documents"
	licensestore "github.com/dalemusser/assethub/internal/app/store/licenses"
	organizationstore "github.com/dalemusser/assethub/internal/app/store/organizations"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	prefsstore "github.com/dalemusser/assethub/internal/app/store/prefs"
	seatstore "github.com/dalemusser/assethub/internal/app/store/seats"
	teamstore "github.com/dalemusser/assethub/internal/app/store/teams"
	"github.com/dalemusser/assethub/internal/app/system/orgsession"
	"github.com/dalemusser/assethub/internal/domain/models"
	"github.com/dalemusser/assethub/internal/testutil"
	"go.uber.org/zap"
)

type env struct {
	router  http.Handler
	session *orgsession.Manager
	orgA    models.Organization
	orgB    models.Organization
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgA := fx.CreateOrganization(ctx, "Acme Corp")
	orgB := fx.CreateOrganization(ctx, "Globex")

	scope := orgscope.New(organizationstore.New(db), prefsstore.New(db), "default", time.Minute, zap.NewNop())
	t.Cleanup(scope.Stop)
	if err := scope.Resolve(ctx); err != nil {
		t.Fatalf("scope resolve: %v", err)
	}

	cache := cachestore.New(cachestore.NewMemoryKV(), zap.NewNop())
	acc := organizationsdata.New(
		organizationstore.New(db), prefsstore.New(db),
		organizationsdata.Stores{
			People:    peoplestore.New(db),
			Teams:     teamstore.New(db),
			Licenses:  licensestore.New(db),
			Seats:     seatstore.New(db),
			Assets:    assetstore.New(db),
			Documents: documentstore.New(db),
		},
		scope, cache, 30*time.Minute, zap.NewNop())
	t.Cleanup(acc.Close)

	session, err := orgsession.NewManager("test-signing-key-0123456789abcdef", "assethub-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	return &env{
		router:  organizationsfeature.Routes(organizationsfeature.NewHandler(acc, scope, session, zap.NewNop())),
		session: session,
		orgA:    orgA,
		orgB:    orgB,
	}
}

// selectCookies writes a selection through the session manager and returns
// the cookies a browser would carry afterwards.
func selectCookies(t *testing.T, e *env, org models.Organization) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/switch", nil)
	if err := e.session.SetSelectedOrg(w, r, org.ID); err != nil {
		t.Fatalf("SetSelectedOrg failed: %v", err)
	}
	return w.Result().Cookies()
}

func TestHandleDelete_KeepsCookieForOtherOrganization(t *testing.T) {
	e := newEnv(t)
	cookies := selectCookies(t, e, e.orgA)

	req := httptest.NewRequest(http.MethodDelete, "/"+e.orgB.ID.Hex(), nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body: %s", rec.Code, rec.Body.String())
	}
	// Deleting an unrelated organization must not touch the session.
	if got := rec.Result().Cookies(); len(got) != 0 {
		t.Errorf("expected no session rewrite, got %d cookies", len(got))
	}
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	if selected, ok := e.session.SelectedOrg(next); !ok || selected != e.orgA.ID {
		t.Errorf("selection = (%s, %t), want it still on the surviving organization", selected.Hex(), ok)
	}
}

func TestHandleDelete_ClearsCookieForSelectedOrganization(t *testing.T) {
	e := newEnv(t)
	cookies := selectCookies(t, e, e.orgB)

	req := httptest.NewRequest(http.MethodDelete, "/"+e.orgB.ID.Hex(), nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204; body: %s", rec.Code, rec.Body.String())
	}
	rewritten := rec.Result().Cookies()
	if len(rewritten) == 0 {
		t.Fatal("expected the session cookie rewritten to drop the selection")
	}
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rewritten {
		next.AddCookie(c)
	}
	if _, ok := e.session.SelectedOrg(next); ok {
		t.Error("expected no selection after deleting the selected organization")
	}
}
