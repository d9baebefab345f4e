package peopledata_test

import (
	"errors"
	"testing"
	"time"

	assetsdata "github.com/dalemusser/assethub/internal/app/data/assets"
	documentsdata "github.com/dalemusser/assethub/internal/app/data/documents"
	licensesdata "github.com/dalemusser/assethub/internal/app/data/licenses"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	peopledata "github.com/dalemusser/assethub/internal/app/data/people"
	assetstore "github.com/dalemusser/assethub/internal/app/store/assets"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	documentstore "github.com/dalemusser/assethub/internal/app/store/documents"
	licensestore "github.com/dalemusser/assethub/internal/app/store/licenses"
	organizationstore "github.com/dalemusser/assethub/internal/app/store/organizations"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	prefsstore "github.com/dalemusser/assethub/internal/app/store/prefs"
	seatstore "github.com/dalemusser/assethub/internal/app/store/seats"
	teamstore "github.com/dalemusser/assethub/internal/app/store/teams"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/testutil"
	"go.uber.org/zap"
)

// harness wires the people accessor together with the license, asset, and
// document accessors the way the application does, so delete cascades can be
// observed end to end.
type harness struct {
	people    *peopledata.Accessor
	licenses  *licensesdata.Accessor
	assets    *assetsdata.Accessor
	documents *documentsdata.Accessor
	fx        *testutil.Fixtures
	scope     *orgscope.Scope
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateOrganization(ctx, "Acme Corp")

	scope := orgscope.New(organizationstore.New(db), prefsstore.New(db), "default", time.Minute, zap.NewNop())
	t.Cleanup(scope.Stop)
	if err := scope.Resolve(ctx); err != nil {
		t.Fatalf("scope resolve: %v", err)
	}

	cache := cachestore.New(cachestore.NewMemoryKV(), zap.NewNop())
	logger := zap.NewNop()

	lic := licensesdata.New(licensestore.New(db), seatstore.New(db), peoplestore.New(db),
		scope, cache, 15*time.Minute, 10*time.Minute, logger)
	ast := assetsdata.New(assetstore.New(db), peoplestore.New(db), scope, cache, 10*time.Minute, logger)
	docs := documentsdata.New(documentstore.New(db), peoplestore.New(db), scope, cache, 10*time.Minute, "/files", logger)
	ppl := peopledata.New(peoplestore.New(db), seatstore.New(db), assetstore.New(db),
		documentstore.New(db), teamstore.New(db), scope, cache, 10*time.Minute,
		peopledata.Cascades{Seats: lic.ReloadSeats, Assets: ast.Reload, Documents: docs.Reload},
		logger)
	t.Cleanup(func() {
		ppl.Close()
		lic.Close()
		ast.Close()
		docs.Close()
	})

	return &harness{people: ppl, licenses: lic, assets: ast, documents: docs, fx: fx, scope: scope}
}

func TestAdd_NormalizesEmailAndName(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	person, err := h.people.Add(ctx, peopledata.AddPersonInput{
		Email:    "  Ana@EXAMPLE.com ",
		Name:     "  Ana Lima  ",
		Position: "Designer",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if person.Email != "ana@example.com" {
		t.Errorf("email = %q, want ana@example.com", person.Email)
	}
	if person.Name != "Ana Lima" {
		t.Errorf("name = %q, want %q", person.Name, "Ana Lima")
	}
}

func TestAdd_RejectsInvalidEmail(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := h.people.Add(ctx, peopledata.AddPersonInput{Email: "not-an-email", Name: "Ana"})
	var verr *inputval.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Add = %v, want ValidationError", err)
	}
}

func TestAdd_DuplicateEmailConflict(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := h.people.Add(ctx, peopledata.AddPersonInput{Email: "ana@example.com", Name: "Ana Lima"}); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	// The same address again, differently cased: still one Ana per org.
	_, err := h.people.Add(ctx, peopledata.AddPersonInput{Email: "ANA@example.com", Name: "Ana L."})
	if err != peoplestore.ErrDuplicatePersonEmail {
		t.Fatalf("second Add = %v, want ErrDuplicatePersonEmail", err)
	}

	// The conflict left exactly one person behind.
	people, err := h.people.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 1 {
		t.Errorf("got %d people, want 1", len(people))
	}
}

func TestUpdate_ReportsToCycleRejected(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ana, err := h.people.Add(ctx, peopledata.AddPersonInput{Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	bruno, err := h.people.Add(ctx, peopledata.AddPersonInput{
		Email: "bruno@example.com", Name: "Bruno", ReportsTo: &ana.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Ana reporting to Bruno would close the loop.
	if _, err := h.people.Update(ctx, ana.ID, peopledata.UpdatePersonInput{ReportsTo: &bruno.ID}); err != peopledata.ErrReportsToCycle {
		t.Errorf("Update = %v, want ErrReportsToCycle", err)
	}
	// Reporting to yourself is the degenerate loop.
	if _, err := h.people.Update(ctx, ana.ID, peopledata.UpdatePersonInput{ReportsTo: &ana.ID}); err != peopledata.ErrReportsToCycle {
		t.Errorf("self Update = %v, want ErrReportsToCycle", err)
	}
}

func TestUpdate_NilClearsOptionalReferences(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ana, err := h.people.Add(ctx, peopledata.AddPersonInput{Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	bruno, err := h.people.Add(ctx, peopledata.AddPersonInput{
		Email: "bruno@example.com", Name: "Bruno", ReportsTo: &ana.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	// An update that submits no references clears them.
	updated, err := h.people.Update(ctx, bruno.ID, peopledata.UpdatePersonInput{})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ReportsTo != nil {
		t.Error("expected reports_to cleared by nil update")
	}
}

func TestDelete_CascadesThroughAssignments(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ana, err := h.people.Add(ctx, peopledata.AddPersonInput{Email: "ana@example.com", Name: "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	bruno, err := h.people.Add(ctx, peopledata.AddPersonInput{
		Email: "bruno@example.com", Name: "Bruno", ReportsTo: &ana.ID,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Give Ana a seat, an asset, and a document.
	if _, err := h.licenses.Add(ctx, licensesdata.AddLicenseInput{Name: "Figma", TotalSeats: 1}); err != nil {
		t.Fatal(err)
	}
	seats, err := h.licenses.Seats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.licenses.AssignSeat(ctx, seats[0].ID, ana.ID, nil); err != nil {
		t.Fatal(err)
	}
	asset, err := h.assets.Add(ctx, assetsdata.AddAssetInput{Name: "MacBook", Brand: "Apple", Value: 2500})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.assets.Assign(ctx, asset.ID, ana.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := h.documents.Add(ctx, documentsdata.AddDocumentInput{
		Name: "Contract", Filename: "contract.pdf", PersonID: &ana.ID,
	}); err != nil {
		t.Fatal(err)
	}

	if err := h.people.Delete(ctx, ana.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// The person is gone; nothing still points at them.
	people, err := h.people.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 1 || people[0].ID != bruno.ID {
		t.Fatalf("remaining people = %v, want only Bruno", people)
	}
	if people[0].ReportsTo != nil {
		t.Error("expected Bruno's manager reference cleared")
	}

	seats, err = h.licenses.Seats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if seats[0].Assigned() {
		t.Error("expected Ana's seat freed")
	}
	assets, err := h.assets.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if assets[0].Assigned() {
		t.Error("expected Ana's asset taken back")
	}
	docs, err := h.documents.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].PersonID != nil {
		t.Error("expected Ana's document detached but kept")
	}
}

func TestList_IsolatedAcrossOrganizationSwitch(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := h.people.Add(ctx, peopledata.AddPersonInput{Email: "ana@example.com", Name: "Ana"}); err != nil {
		t.Fatal(err)
	}

	other := h.fx.CreateOrganization(ctx, "Beta Corp")
	if err := h.scope.SwitchTo(ctx, other.ID); err != nil {
		t.Fatal(err)
	}
	people, err := h.people.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 0 {
		t.Errorf("got %d people in Beta Corp, want 0", len(people))
	}

	// Switching back serves Acme's roster again, not Beta's.
	orgs, err := organizationstore.New(h.fx.DB()).List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.scope.SwitchTo(ctx, orgs[0].ID); err != nil {
		t.Fatal(err)
	}
	people, err = h.people.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(people) != 1 || people[0].Email != "ana@example.com" {
		t.Errorf("after switching back, people = %v, want Ana", people)
	}
}
