package organizationsdata_test

import (
	"testing"
	"time"

	organizationsdata "github.com/dalemusser/assethub/internal/app/data/organizations"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	assetstore "github.com/dalemusser/assethub/internal/app/store/assets"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	documentstore "github.com/dalemusser/assethub/internal/app/store/documents"
	licensestore "github.com/dalemusser/assethub/internal/app/store/licenses"
	organizationstore "github.com/dalemusser/assethub/internal/app/store/organizations"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	prefsstore "github.com/dalemusser/assethub/internal/app/store/prefs"
	seatstore "github.com/dalemusser/assethub/internal/app/store/seats"
	teamstore "github.com/dalemusser/assethub/internal/app/store/teams"
	"github.com/dalemusser/assethub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type env struct {
	acc   *organizationsdata.Accessor
	scope *orgscope.Scope
	prefs *prefsstore.Store
	db    *mongo.Database
	fx    *testutil.Fixtures
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)

	prefs := prefsstore.New(db)
	scope := orgscope.New(organizationstore.New(db), prefs, "default", time.Minute, zap.NewNop())
	t.Cleanup(scope.Stop)

	cache := cachestore.New(cachestore.NewMemoryKV(), zap.NewNop())
	acc := organizationsdata.New(organizationstore.New(db), prefs, organizationsdata.Stores{
		People:    peoplestore.New(db),
		Teams:     teamstore.New(db),
		Licenses:  licensestore.New(db),
		Seats:     seatstore.New(db),
		Assets:    assetstore.New(db),
		Documents: documentstore.New(db),
	}, scope, cache, 30*time.Minute, zap.NewNop())
	t.Cleanup(acc.Close)

	return &env{acc: acc, scope: scope, prefs: prefs, db: db, fx: fx}
}

func TestAdd_FirstOrganizationBecomesActive(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := e.scope.Resolve(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.scope.Current(); ok {
		t.Fatal("expected no active organization before the first create")
	}

	org, err := e.acc.Add(ctx, "  Acme Corp  ")
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if org.Name != "Acme Corp" {
		t.Errorf("name = %q, want trimmed %q", org.Name, "Acme Corp")
	}

	current, ok := e.scope.Current()
	if !ok || current.ID != org.ID {
		t.Error("expected the first organization to become active")
	}
}

func TestAdd_DuplicateNamePassesThrough(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := e.acc.Add(ctx, "Acme Corp"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.acc.Add(ctx, "ACME CORP"); err != organizationstore.ErrDuplicateOrganization {
		t.Errorf("Add = %v, want ErrDuplicateOrganization", err)
	}
}

func TestRename_VisibleThroughScope(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org, err := e.acc.Add(ctx, "Old Corp")
	if err != nil {
		t.Fatal(err)
	}
	if err := e.scope.Resolve(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := e.acc.Rename(ctx, org.ID, "New Corp"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	current, ok := e.scope.Current()
	if !ok || current.Name != "New Corp" {
		t.Errorf("scope name = %q, want New Corp", current.Name)
	}
}

func TestDelete_CascadesAndReResolves(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	doomed, err := e.acc.Add(ctx, "Doomed Corp")
	if err != nil {
		t.Fatal(err)
	}
	survivor, err := e.acc.Add(ctx, "Survivor Corp")
	if err != nil {
		t.Fatal(err)
	}
	if err := e.scope.SwitchTo(ctx, doomed.ID); err != nil {
		t.Fatal(err)
	}

	// Populate the doomed organization.
	person := e.fx.CreatePerson(ctx, doomed.ID, "Ana", "ana@example.com")
	e.fx.CreateTeam(ctx, doomed.ID, "Design")
	lic := e.fx.CreateLicense(ctx, doomed.ID, "Figma", 2)
	e.fx.CreateSeats(ctx, lic.ID, "Figma-001", "Figma-002")
	e.fx.CreateAsset(ctx, doomed.ID, "MacBook")

	if err := e.acc.Delete(ctx, doomed.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Child rows are gone.
	if _, err := peoplestore.New(e.db).GetByID(ctx, person.ID); err != peoplestore.ErrPersonNotFound {
		t.Errorf("person lookup = %v, want ErrPersonNotFound", err)
	}
	seats, err := seatstore.New(e.db).ListByLicenses(ctx, []primitive.ObjectID{lic.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(seats) != 0 {
		t.Errorf("got %d seats, want 0", len(seats))
	}

	// The persisted selection is cleared and the scope re-resolved.
	if _, found, _ := e.prefs.SelectedOrganization(ctx, "default"); found {
		t.Error("expected the persisted selection cleared")
	}
	current, ok := e.scope.Current()
	if !ok || current.ID != survivor.ID {
		t.Errorf("current = %v, want survivor %v", current.ID, survivor.ID)
	}
}
