// internal/app/data/licenses/licensesdata.go

// Package licensesdata serves and mutates the active organization's licenses
// and their seats. Seats carry no organization id of their own, so the seat
// feed is scoped through the organization's license ids.
package licensesdata

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/assethub/internal/app/data/datacache"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	licensestore "github.com/dalemusser/assethub/internal/app/store/licenses"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	seatstore "github.com/dalemusser/assethub/internal/app/store/seats"
	"github.com/dalemusser/assethub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/normalize"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"github.com/dalemusser/assethub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	licensesEntity = "licenses"
	seatsEntity    = "seats"
)

// Accessor owns the license and seat feeds for the active organization.
type Accessor struct {
	store  *licensestore.Store
	seats  *seatstore.Store
	people *peoplestore.Store
	scope  *orgscope.Scope
	cache  *cachestore.Store
	log    *zap.Logger

	licenseSub *datacache.Subscription[[]models.License]
	seatSub    *datacache.Subscription[[]models.Seat]
}

func New(store *licensestore.Store, seats *seatstore.Store, people *peoplestore.Store, scope *orgscope.Scope, cache *cachestore.Store, licenseTTL, seatTTL time.Duration, logger *zap.Logger) *Accessor {
	a := &Accessor{
		store:  store,
		seats:  seats,
		people: people,
		scope:  scope,
		cache:  cache,
		log:    logger,
	}
	a.licenseSub = datacache.New(cache, licenseTTL, a.licenseKey, a.fetchLicenses, logger)
	a.seatSub = datacache.New(cache, seatTTL, a.seatKey, a.fetchSeats, logger)
	scope.OnChange(func(models.Organization, bool) { a.reloadOnScopeChange() })
	return a
}

func (a *Accessor) licenseKey() string {
	org, _ := a.scope.Current()
	return cachestore.Key(licensesEntity, org.ID)
}

func (a *Accessor) seatKey() string {
	org, _ := a.scope.Current()
	return cachestore.Key(seatsEntity, org.ID)
}

func (a *Accessor) fetchLicenses(ctx context.Context) ([]models.License, error) {
	org, ok := a.scope.Current()
	if !ok {
		return []models.License{}, nil
	}
	return a.store.ListByOrganization(ctx, org.ID)
}

func (a *Accessor) fetchSeats(ctx context.Context) ([]models.Seat, error) {
	org, ok := a.scope.Current()
	if !ok {
		return []models.Seat{}, nil
	}
	ids, err := a.store.IDsByOrganization(ctx, org.ID)
	if err != nil {
		return nil, err
	}
	seats, err := a.seats.ListByLicenses(ctx, ids)
	if err != nil {
		return nil, err
	}
	if seats == nil {
		seats = []models.Seat{}
	}
	return seats, nil
}

func (a *Accessor) reloadOnScopeChange() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()
	if _, err := a.licenseSub.Refresh(ctx); err != nil {
		a.log.Warn("license feed reload failed", zap.Error(err))
	}
	if _, err := a.seatSub.Refresh(ctx); err != nil {
		a.log.Warn("seat feed reload failed", zap.Error(err))
	}
}

// List returns the organization's licenses, cache-first.
func (a *Accessor) List(ctx context.Context) ([]models.License, error) {
	return a.licenseSub.Load(ctx)
}

// Seats returns the organization's seats across all licenses, cache-first.
func (a *Accessor) Seats(ctx context.Context) ([]models.Seat, error) {
	return a.seatSub.Load(ctx)
}

// Refresh re-reads the licenses from the store, bypassing the cache.
func (a *Accessor) Refresh(ctx context.Context) ([]models.License, error) {
	return a.licenseSub.Refresh(ctx)
}

// RefreshSeats re-reads the seats from the store, bypassing the cache.
func (a *Accessor) RefreshSeats(ctx context.Context) ([]models.Seat, error) {
	return a.seatSub.Refresh(ctx)
}

// Snapshot returns the license feed state.
func (a *Accessor) Snapshot() datacache.Snapshot[[]models.License] {
	return a.licenseSub.Snapshot()
}

// SeatsSnapshot returns the seat feed state.
func (a *Accessor) SeatsSnapshot() datacache.Snapshot[[]models.Seat] {
	return a.seatSub.Snapshot()
}

// ReloadSeats invalidates and refreshes the seat feed. Cross-entity cascades
// (person deletion) call this after unassigning the person's seats.
func (a *Accessor) ReloadSeats(ctx context.Context) error {
	a.seatSub.InvalidateCache(ctx)
	_, err := a.seatSub.Refresh(ctx)
	return err
}

// Close tears down both feeds.
func (a *Accessor) Close() {
	a.licenseSub.Close()
	a.seatSub.Close()
}

// SeatCode formats the label of the n-th seat (1-based) of a license.
func SeatCode(licenseName string, n int) string {
	return fmt.Sprintf("%s-%03d", licenseName, n)
}

// AddLicenseInput carries the fields for a new license.
type AddLicenseInput struct {
	Name        string
	Description *string
	TotalSeats  int
}

// Add creates a license together with its seats: TotalSeats unassigned seats
// labeled <name>-001 through <name>-NNN. If the seat insert fails the license
// is deleted again so the pair never ends up half-created.
func (a *Accessor) Add(ctx context.Context, in AddLicenseInput) (models.License, error) {
	org, ok := a.scope.Current()
	if !ok {
		return models.License{}, orgscope.ErrNoOrganization
	}
	if err := inputval.Required("name", in.Name); err != nil {
		return models.License{}, err
	}
	if err := inputval.Positive("totalSeats", in.TotalSeats); err != nil {
		return models.License{}, err
	}

	name := htmlsanitize.Clean(normalize.Name(in.Name))
	license, err := a.store.Create(ctx, licensestore.NewLicense{
		Name:           name,
		Description:    htmlsanitize.CleanOptional(normalize.OptionalFrom(in.Description)),
		TotalSeats:     in.TotalSeats,
		OrganizationID: org.ID,
	})
	if err != nil {
		return models.License{}, err
	}

	newSeats := make([]seatstore.NewSeat, 0, in.TotalSeats)
	for i := 1; i <= in.TotalSeats; i++ {
		code := SeatCode(name, i)
		newSeats = append(newSeats, seatstore.NewSeat{LicenseID: license.ID, Code: &code})
	}
	if _, err := a.seats.CreateMany(ctx, newSeats); err != nil {
		// Compensate: take the license back out rather than leave it
		// seatless.
		if _, delErr := a.store.Delete(ctx, license.ID); delErr != nil {
			a.log.Error("license rollback after seat insert failure failed",
				zap.String("license_id", license.ID.Hex()), zap.Error(delErr))
		}
		return models.License{}, err
	}

	a.afterMutation(ctx, true)
	return license, nil
}

// UpdateLicenseInput carries license changes. Nil Name/TotalSeats leave the
// field unchanged; Description is always applied (nil clears it). Changing
// TotalSeats does not add or remove existing seats.
type UpdateLicenseInput struct {
	Name        *string
	Description *string
	TotalSeats  *int
}

func (a *Accessor) Update(ctx context.Context, id primitive.ObjectID, in UpdateLicenseInput) (models.License, error) {
	if in.Name != nil {
		if err := inputval.Required("name", *in.Name); err != nil {
			return models.License{}, err
		}
	}
	if in.TotalSeats != nil {
		if err := inputval.Positive("totalSeats", *in.TotalSeats); err != nil {
			return models.License{}, err
		}
	}

	u := licensestore.Update{
		Description: htmlsanitize.CleanOptional(normalize.OptionalFrom(in.Description)),
		TotalSeats:  in.TotalSeats,
	}
	if in.Name != nil {
		cleaned := htmlsanitize.Clean(normalize.Name(*in.Name))
		u.Name = &cleaned
	}

	license, err := a.store.Update(ctx, id, u)
	if err != nil {
		return models.License{}, err
	}
	a.afterMutation(ctx, false)
	return license, nil
}

// Delete removes a license and all of its seats, seats first.
func (a *Accessor) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := a.store.GetByID(ctx, id); err != nil {
		return err
	}
	if _, err := a.seats.DeleteByLicense(ctx, id); err != nil {
		return err
	}
	if _, err := a.store.Delete(ctx, id); err != nil {
		return err
	}
	a.afterMutation(ctx, true)
	return nil
}

// AssignSeat occupies a seat for a person. A person may hold at most one
// seat per license; a non-nil code relabels the seat.
func (a *Accessor) AssignSeat(ctx context.Context, seatID, personID primitive.ObjectID, code *string) (models.Seat, error) {
	seat, err := a.seats.GetByID(ctx, seatID)
	if err != nil {
		return models.Seat{}, err
	}
	if _, err := a.people.GetByID(ctx, personID); err != nil {
		return models.Seat{}, err
	}
	taken, err := a.seats.HasSeatOnLicense(ctx, seat.LicenseID, personID)
	if err != nil {
		return models.Seat{}, err
	}
	if taken {
		return models.Seat{}, seatstore.ErrSeatAlreadyTaken
	}

	assigned, err := a.seats.Assign(ctx, seatID, personID, htmlsanitize.CleanOptional(normalize.OptionalFrom(code)))
	if err != nil {
		return models.Seat{}, err
	}
	a.afterSeatMutation(ctx)
	return assigned, nil
}

// UnassignSeat frees a seat.
func (a *Accessor) UnassignSeat(ctx context.Context, seatID primitive.ObjectID) (models.Seat, error) {
	seat, err := a.seats.Unassign(ctx, seatID)
	if err != nil {
		return models.Seat{}, err
	}
	a.afterSeatMutation(ctx)
	return seat, nil
}

// afterMutation invalidates and refreshes the license feed, plus the seat
// feed when the mutation touched seats too.
func (a *Accessor) afterMutation(ctx context.Context, seatsToo bool) {
	a.licenseSub.InvalidateCache(ctx)
	if _, err := a.licenseSub.Refresh(ctx); err != nil {
		a.log.Warn("license feed refresh after mutation failed", zap.Error(err))
	}
	if seatsToo {
		a.afterSeatMutation(ctx)
	}
}

func (a *Accessor) afterSeatMutation(ctx context.Context) {
	a.seatSub.InvalidateCache(ctx)
	if _, err := a.seatSub.Refresh(ctx); err != nil {
		a.log.Warn("seat feed refresh after mutation failed", zap.Error(err))
	}
}
