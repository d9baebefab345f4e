package licensesdata_test

import (
	"errors"
	"testing"
	"time"

	licensesdata "github.com/dalemusser/assethub/internal/app/data/licenses"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	licensestore "github.com/dalemusser/assethub/internal/app/store/licenses"
	organizationstore "github.com/dalemusser/assethub/internal/app/store/organizations"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	prefsstore "github.com/dalemusser/assethub/internal/app/store/prefs"
	seatstore "github.com/dalemusser/assethub/internal/app/store/seats"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/domain/models"
	"github.com/dalemusser/assethub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newAccessor(t *testing.T) (*licensesdata.Accessor, *testutil.Fixtures, models.Organization) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Corp")
	scope := newResolvedScope(t, db)
	cache := cachestore.New(cachestore.NewMemoryKV(), zap.NewNop())
	acc := licensesdata.New(
		licensestore.New(db), seatstore.New(db), peoplestore.New(db),
		scope, cache, 15*time.Minute, 10*time.Minute, zap.NewNop())
	t.Cleanup(acc.Close)
	return acc, fx, org
}

func newResolvedScope(t *testing.T, db *mongo.Database) *orgscope.Scope {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	scope := orgscope.New(organizationstore.New(db), prefsstore.New(db), "default", time.Minute, zap.NewNop())
	t.Cleanup(scope.Stop)
	if err := scope.Resolve(ctx); err != nil {
		t.Fatalf("scope resolve: %v", err)
	}
	return scope
}

func TestAdd_CreatesLicenseWithSeats(t *testing.T) {
	acc, _, _ := newAccessor(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	lic, err := acc.Add(ctx, licensesdata.AddLicenseInput{Name: "Figma", TotalSeats: 3})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if lic.TotalSeats != 3 {
		t.Errorf("TotalSeats = %d, want 3", lic.TotalSeats)
	}

	seats, err := acc.Seats(ctx)
	if err != nil {
		t.Fatalf("Seats failed: %v", err)
	}
	if len(seats) != 3 {
		t.Fatalf("got %d seats, want 3", len(seats))
	}
	wantCodes := []string{"Figma-001", "Figma-002", "Figma-003"}
	for i, seat := range seats {
		if seat.Code == nil || *seat.Code != wantCodes[i] {
			t.Errorf("seat %d code = %v, want %q", i, seat.Code, wantCodes[i])
		}
		if seat.Assigned() {
			t.Errorf("seat %d should start unassigned", i)
		}
		if seat.LicenseID != lic.ID {
			t.Errorf("seat %d license = %v, want %v", i, seat.LicenseID, lic.ID)
		}
	}
}

func TestAdd_RejectsNonPositiveSeatCount(t *testing.T) {
	acc, _, _ := newAccessor(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := acc.Add(ctx, licensesdata.AddLicenseInput{Name: "Figma", TotalSeats: 0})
	var verr *inputval.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Add = %v, want ValidationError", err)
	}
	if verr.Field != "totalSeats" {
		t.Errorf("field = %q, want totalSeats", verr.Field)
	}
}

func TestAdd_DuplicateNamePassesThrough(t *testing.T) {
	acc, _, _ := newAccessor(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := acc.Add(ctx, licensesdata.AddLicenseInput{Name: "Slack", TotalSeats: 1}); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	_, err := acc.Add(ctx, licensesdata.AddLicenseInput{Name: "slack", TotalSeats: 1})
	if err != licensestore.ErrDuplicateLicenseName {
		t.Errorf("Add = %v, want ErrDuplicateLicenseName", err)
	}
}

func TestAssignSeat_PairingInvariant(t *testing.T) {
	acc, fx, org := newAccessor(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	person := fx.CreatePerson(ctx, org.ID, "Ana Lima", "ana@example.com")
	if _, err := acc.Add(ctx, licensesdata.AddLicenseInput{Name: "Figma", TotalSeats: 2}); err != nil {
		t.Fatal(err)
	}
	seats, err := acc.Seats(ctx)
	if err != nil {
		t.Fatal(err)
	}

	assigned, err := acc.AssignSeat(ctx, seats[0].ID, person.ID, nil)
	if err != nil {
		t.Fatalf("AssignSeat failed: %v", err)
	}
	if assigned.PersonID == nil || *assigned.PersonID != person.ID {
		t.Error("expected person_id set")
	}
	if assigned.AssignedAt == nil {
		t.Error("expected assigned_at set together with person_id")
	}

	// One seat per person per license.
	if _, err := acc.AssignSeat(ctx, seats[1].ID, person.ID, nil); err != seatstore.ErrSeatAlreadyTaken {
		t.Errorf("second AssignSeat = %v, want ErrSeatAlreadyTaken", err)
	}

	freed, err := acc.UnassignSeat(ctx, seats[0].ID)
	if err != nil {
		t.Fatalf("UnassignSeat failed: %v", err)
	}
	if freed.PersonID != nil || freed.AssignedAt != nil {
		t.Error("expected person_id and assigned_at cleared together")
	}
}

func TestDelete_RemovesSeatsFirst(t *testing.T) {
	acc, _, _ := newAccessor(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	lic, err := acc.Add(ctx, licensesdata.AddLicenseInput{Name: "Notion", TotalSeats: 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := acc.Delete(ctx, lic.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	licenses, err := acc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(licenses) != 0 {
		t.Errorf("got %d licenses, want 0", len(licenses))
	}
	seats, err := acc.Seats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(seats) != 0 {
		t.Errorf("got %d seats, want 0", len(seats))
	}
}

func TestSeatCode_Padding(t *testing.T) {
	if got := licensesdata.SeatCode("Figma", 7); got != "Figma-007" {
		t.Errorf("SeatCode = %q, want Figma-007", got)
	}
	if got := licensesdata.SeatCode("Figma", 123); got != "Figma-123" {
		t.Errorf("SeatCode = %q, want Figma-123", got)
	}
}
