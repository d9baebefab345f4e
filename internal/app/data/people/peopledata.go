// internal/app/data/people/peopledata.go

// Package peopledata serves and mutates the active organization's people.
// Deleting a person cascades: their seats and assets are released and their
// documents detached before the person row goes away, so no assignment ever
// points at a missing person.
package peopledata

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/assethub/internal/app/data/datacache"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	assetstore "github.com/dalemusser/assethub/internal/app/store/assets"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	documentstore "github.com/dalemusser/assethub/internal/app/store/documents"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	seatstore "github.com/dalemusser/assethub/internal/app/store/seats"
	teamstore "github.com/dalemusser/assethub/internal/app/store/teams"
	"github.com/dalemusser/assethub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/normalize"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"github.com/dalemusser/assethub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const entity = "people"

// ErrReportsToCycle is returned when a manager change would make someone
// (transitively) report to themself.
var ErrReportsToCycle = errors.New("reporting chain would form a cycle")

// Cascades names the feeds that must reload after a person mutation touches
// their entities. Nil funcs are skipped.
type Cascades struct {
	Seats     func(ctx context.Context) error
	Assets    func(ctx context.Context) error
	Documents func(ctx context.Context) error
}

// Accessor owns the people feed for the active organization.
type Accessor struct {
	store     *peoplestore.Store
	seats     *seatstore.Store
	assets    *assetstore.Store
	documents *documentstore.Store
	teams     *teamstore.Store
	scope     *orgscope.Scope
	cache     *cachestore.Store
	cascades  Cascades
	sub       *datacache.Subscription[[]models.Person]
	log       *zap.Logger
}

func New(store *peoplestore.Store, seats *seatstore.Store, assets *assetstore.Store, documents *documentstore.Store, teams *teamstore.Store, scope *orgscope.Scope, cache *cachestore.Store, ttl time.Duration, cascades Cascades, logger *zap.Logger) *Accessor {
	a := &Accessor{
		store:     store,
		seats:     seats,
		assets:    assets,
		documents: documents,
		teams:     teams,
		scope:     scope,
		cache:     cache,
		cascades:  cascades,
		log:       logger,
	}
	a.sub = datacache.New(cache, ttl, a.cacheKey, a.fetch, logger)
	scope.OnChange(func(models.Organization, bool) { a.reloadOnScopeChange() })
	return a
}

func (a *Accessor) cacheKey() string {
	org, _ := a.scope.Current()
	return cachestore.Key(entity, org.ID)
}

func (a *Accessor) fetch(ctx context.Context) ([]models.Person, error) {
	org, ok := a.scope.Current()
	if !ok {
		return []models.Person{}, nil
	}
	return a.store.ListByOrganization(ctx, org.ID)
}

func (a *Accessor) reloadOnScopeChange() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()
	if _, err := a.sub.Refresh(ctx); err != nil {
		a.log.Warn("people feed reload failed", zap.Error(err))
	}
}

// List returns the organization's people, cache-first.
func (a *Accessor) List(ctx context.Context) ([]models.Person, error) {
	return a.sub.Load(ctx)
}

// Refresh re-reads the people from the store, bypassing the cache.
func (a *Accessor) Refresh(ctx context.Context) ([]models.Person, error) {
	return a.sub.Refresh(ctx)
}

// Snapshot returns the feed state without touching cache or store.
func (a *Accessor) Snapshot() datacache.Snapshot[[]models.Person] {
	return a.sub.Snapshot()
}

// Reload invalidates the cache entry and refreshes the feed. Cross-entity
// cascades call this when their mutation touched people.
func (a *Accessor) Reload(ctx context.Context) error {
	a.sub.InvalidateCache(ctx)
	_, err := a.sub.Refresh(ctx)
	return err
}

// Close tears down the feed.
func (a *Accessor) Close() {
	a.sub.Close()
}

// AddPersonInput carries the fields for a new person. Password is optional
// and stored only as a bcrypt hash.
type AddPersonInput struct {
	Email     string
	Name      string
	Position  string
	Password  *string
	ReportsTo *primitive.ObjectID
	TeamID    *primitive.ObjectID
}

// Add validates and creates a person in the active organization. ReportsTo
// and TeamID must reference records of the same organization.
func (a *Accessor) Add(ctx context.Context, in AddPersonInput) (models.Person, error) {
	org, ok := a.scope.Current()
	if !ok {
		return models.Person{}, orgscope.ErrNoOrganization
	}
	if err := inputval.Email("email", in.Email); err != nil {
		return models.Person{}, err
	}
	if err := inputval.Required("name", in.Name); err != nil {
		return models.Person{}, err
	}
	if err := a.checkReferences(ctx, org.ID, in.ReportsTo, in.TeamID); err != nil {
		return models.Person{}, err
	}

	person, err := a.store.Create(ctx, peoplestore.NewPerson{
		Email:          normalize.Email(in.Email),
		Name:           htmlsanitize.Clean(normalize.Name(in.Name)),
		Position:       htmlsanitize.Clean(normalize.Name(in.Position)),
		Password:       in.Password,
		ReportsTo:      in.ReportsTo,
		TeamID:         in.TeamID,
		OrganizationID: org.ID,
	})
	if err != nil {
		return models.Person{}, err
	}
	a.afterMutation(ctx)
	return person, nil
}

// UpdatePersonInput carries person changes. Nil Email/Name/Position leave
// the field unchanged; ReportsTo and TeamID are always applied (nil clears
// the reference).
type UpdatePersonInput struct {
	Email     *string
	Name      *string
	Position  *string
	ReportsTo *primitive.ObjectID
	TeamID    *primitive.ObjectID
}

func (a *Accessor) Update(ctx context.Context, id primitive.ObjectID, in UpdatePersonInput) (models.Person, error) {
	person, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Person{}, err
	}
	if in.Email != nil {
		if err := inputval.Email("email", *in.Email); err != nil {
			return models.Person{}, err
		}
	}
	if in.Name != nil {
		if err := inputval.Required("name", *in.Name); err != nil {
			return models.Person{}, err
		}
	}
	if err := a.checkReferences(ctx, person.OrganizationID, in.ReportsTo, in.TeamID); err != nil {
		return models.Person{}, err
	}
	if in.ReportsTo != nil {
		if err := a.checkNoCycle(ctx, id, *in.ReportsTo); err != nil {
			return models.Person{}, err
		}
	}

	u := peoplestore.Update{
		ReportsTo: in.ReportsTo,
		TeamID:    in.TeamID,
	}
	if in.Email != nil {
		cleaned := normalize.Email(*in.Email)
		u.Email = &cleaned
	}
	if in.Name != nil {
		cleaned := htmlsanitize.Clean(normalize.Name(*in.Name))
		u.Name = &cleaned
	}
	if in.Position != nil {
		cleaned := htmlsanitize.Clean(normalize.Name(*in.Position))
		u.Position = &cleaned
	}

	updated, err := a.store.Update(ctx, id, u)
	if err != nil {
		return models.Person{}, err
	}
	a.afterMutation(ctx)
	return updated, nil
}

// Delete removes a person after releasing everything assigned to them:
// seats are freed, assets taken back, documents detached, and anyone who
// reported to them is left without a manager.
func (a *Accessor) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := a.store.GetByID(ctx, id); err != nil {
		return err
	}

	if _, err := a.seats.UnassignByPerson(ctx, id); err != nil {
		return err
	}
	if _, err := a.assets.UnassignByPerson(ctx, id); err != nil {
		return err
	}
	if _, err := a.documents.ClearPerson(ctx, id); err != nil {
		return err
	}
	if _, err := a.store.ClearReportsTo(ctx, id); err != nil {
		return err
	}
	if _, err := a.store.Delete(ctx, id); err != nil {
		return err
	}

	a.afterMutation(ctx)
	a.runCascade(ctx, "seats", a.cascades.Seats)
	a.runCascade(ctx, "assets", a.cascades.Assets)
	a.runCascade(ctx, "documents", a.cascades.Documents)
	return nil
}

// checkReferences verifies that manager and team references point at records
// of the given organization.
func (a *Accessor) checkReferences(ctx context.Context, orgID primitive.ObjectID, reportsTo, teamID *primitive.ObjectID) error {
	if reportsTo != nil {
		manager, err := a.store.GetByID(ctx, *reportsTo)
		if err != nil {
			return err
		}
		if manager.OrganizationID != orgID {
			return peoplestore.ErrPersonNotFound
		}
	}
	if teamID != nil {
		team, err := a.teams.GetByID(ctx, *teamID)
		if err != nil {
			return err
		}
		if team.OrganizationID != orgID {
			return teamstore.ErrTeamNotFound
		}
	}
	return nil
}

// checkNoCycle walks the manager chain upward from the proposed manager and
// rejects the change if it reaches the person being updated.
func (a *Accessor) checkNoCycle(ctx context.Context, personID, managerID primitive.ObjectID) error {
	seen := map[primitive.ObjectID]bool{}
	current := managerID
	for {
		if current == personID {
			return ErrReportsToCycle
		}
		if seen[current] {
			// Pre-existing loop above us; the proposed edge does not pass
			// through personID, so adding it is safe.
			return nil
		}
		seen[current] = true

		manager, err := a.store.GetByID(ctx, current)
		if err != nil {
			if err == peoplestore.ErrPersonNotFound {
				return nil
			}
			return err
		}
		if manager.ReportsTo == nil {
			return nil
		}
		current = *manager.ReportsTo
	}
}

func (a *Accessor) afterMutation(ctx context.Context) {
	a.sub.InvalidateCache(ctx)
	if _, err := a.sub.Refresh(ctx); err != nil {
		a.log.Warn("people feed refresh after mutation failed", zap.Error(err))
	}
}

func (a *Accessor) runCascade(ctx context.Context, name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}
	if err := fn(ctx); err != nil {
		a.log.Warn("cascade reload failed", zap.String("feed", name), zap.Error(err))
	}
}
