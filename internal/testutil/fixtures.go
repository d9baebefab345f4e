package testutil

import (
	"context"
	"net/http"
	"testing"

	assetstore "github.com/dalemusser/assethub/internal/app/store/assets"
	licensestore "github.com/dalemusser/assethub/internal/app/store/licenses"
	organizationstore "github.com/dalemusser/assethub/internal/app/store/organizations"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	seatstore "github.com/dalemusser/assethub/internal/app/store/seats"
	teamstore "github.com/dalemusser/assethub/internal/app/store/teams"
	"github.com/dalemusser/assethub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data through the real
// stores, so fixture rows always match the stored schema.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates a test organization with the given name.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()
	org, err := organizationstore.New(f.db).Create(ctx, name)
	if err != nil {
		f.t.Fatalf("fixture organization %q: %v", name, err)
	}
	return org
}

// CreatePerson creates a test person in the organization.
func (f *Fixtures) CreatePerson(ctx context.Context, orgID primitive.ObjectID, name, email string) models.Person {
	f.t.Helper()
	person, err := peoplestore.New(f.db).Create(ctx, peoplestore.NewPerson{
		Email:          email,
		Name:           name,
		Position:       "Engineer",
		OrganizationID: orgID,
	})
	if err != nil {
		f.t.Fatalf("fixture person %q: %v", email, err)
	}
	return person
}

// CreateTeam creates a test team in the organization.
func (f *Fixtures) CreateTeam(ctx context.Context, orgID primitive.ObjectID, name string) models.Team {
	f.t.Helper()
	team, err := teamstore.New(f.db).Create(ctx, teamstore.NewTeam{
		Name:           name,
		OrganizationID: orgID,
	})
	if err != nil {
		f.t.Fatalf("fixture team %q: %v", name, err)
	}
	return team
}

// CreateLicense creates a test license in the organization. Seats are not
// created here; use CreateSeats for that.
func (f *Fixtures) CreateLicense(ctx context.Context, orgID primitive.ObjectID, name string, totalSeats int) models.License {
	f.t.Helper()
	lic, err := licensestore.New(f.db).Create(ctx, licensestore.NewLicense{
		Name:           name,
		TotalSeats:     totalSeats,
		OrganizationID: orgID,
	})
	if err != nil {
		f.t.Fatalf("fixture license %q: %v", name, err)
	}
	return lic
}

// CreateSeats creates seats on the license with the given codes.
func (f *Fixtures) CreateSeats(ctx context.Context, licenseID primitive.ObjectID, codes ...string) []models.Seat {
	f.t.Helper()
	newSeats := make([]seatstore.NewSeat, 0, len(codes))
	for _, code := range codes {
		c := code
		newSeats = append(newSeats, seatstore.NewSeat{LicenseID: licenseID, Code: &c})
	}
	seats, err := seatstore.New(f.db).CreateMany(ctx, newSeats)
	if err != nil {
		f.t.Fatalf("fixture seats for %v: %v", licenseID, err)
	}
	return seats
}

// CreateAsset creates a test asset in the organization.
func (f *Fixtures) CreateAsset(ctx context.Context, orgID primitive.ObjectID, name string) models.Asset {
	f.t.Helper()
	asset, err := assetstore.New(f.db).Create(ctx, assetstore.NewAsset{
		Name:           name,
		Brand:          "Test Brand",
		Value:          100,
		OrganizationID: orgID,
	})
	if err != nil {
		f.t.Fatalf("fixture asset %q: %v", name, err)
	}
	return asset
}
