// internal/app/data/teams/teamsdata.go

// Package teamsdata serves and mutates the active organization's teams.
// Deleting a team clears the team reference from its members first.
package teamsdata

import (
	"context"
	"time"

	"github.com/dalemusser/assethub/internal/app/data/datacache"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	teamstore "github.com/dalemusser/assethub/internal/app/store/teams"
	"github.com/dalemusser/assethub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/normalize"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"github.com/dalemusser/assethub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const entity = "teams"

// Accessor owns the team feed for the active organization.
type Accessor struct {
	store  *teamstore.Store
	people *peoplestore.Store
	scope  *orgscope.Scope
	cache  *cachestore.Store
	sub    *datacache.Subscription[[]models.Team]
	log    *zap.Logger

	// reloadPeople refreshes the people feed after a team delete clears
	// member references. Nil skips the cascade.
	reloadPeople func(ctx context.Context) error
}

func New(store *teamstore.Store, people *peoplestore.Store, scope *orgscope.Scope, cache *cachestore.Store, ttl time.Duration, reloadPeople func(ctx context.Context) error, logger *zap.Logger) *Accessor {
	a := &Accessor{
		store:        store,
		people:       people,
		scope:        scope,
		cache:        cache,
		reloadPeople: reloadPeople,
		log:          logger,
	}
	a.sub = datacache.New(cache, ttl, a.cacheKey, a.fetch, logger)
	scope.OnChange(func(models.Organization, bool) { a.reloadOnScopeChange() })
	return a
}

func (a *Accessor) cacheKey() string {
	org, _ := a.scope.Current()
	return cachestore.Key(entity, org.ID)
}

func (a *Accessor) fetch(ctx context.Context) ([]models.Team, error) {
	org, ok := a.scope.Current()
	if !ok {
		return []models.Team{}, nil
	}
	return a.store.ListByOrganization(ctx, org.ID)
}

func (a *Accessor) reloadOnScopeChange() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()
	if _, err := a.sub.Refresh(ctx); err != nil {
		a.log.Warn("team feed reload failed", zap.Error(err))
	}
}

// List returns the organization's teams, cache-first.
func (a *Accessor) List(ctx context.Context) ([]models.Team, error) {
	return a.sub.Load(ctx)
}

// Refresh re-reads the teams from the store, bypassing the cache.
func (a *Accessor) Refresh(ctx context.Context) ([]models.Team, error) {
	return a.sub.Refresh(ctx)
}

// Snapshot returns the feed state without touching cache or store.
func (a *Accessor) Snapshot() datacache.Snapshot[[]models.Team] {
	return a.sub.Snapshot()
}

// Close tears down the feed.
func (a *Accessor) Close() {
	a.sub.Close()
}

// AddTeamInput carries the fields for a new team.
type AddTeamInput struct {
	Name        string
	Description *string
}

func (a *Accessor) Add(ctx context.Context, in AddTeamInput) (models.Team, error) {
	org, ok := a.scope.Current()
	if !ok {
		return models.Team{}, orgscope.ErrNoOrganization
	}
	if err := inputval.Required("name", in.Name); err != nil {
		return models.Team{}, err
	}

	team, err := a.store.Create(ctx, teamstore.NewTeam{
		Name:           htmlsanitize.Clean(normalize.Name(in.Name)),
		Description:    htmlsanitize.CleanOptional(normalize.OptionalFrom(in.Description)),
		OrganizationID: org.ID,
	})
	if err != nil {
		return models.Team{}, err
	}
	a.afterMutation(ctx)
	return team, nil
}

// UpdateTeamInput carries team changes. Nil Name leaves the name unchanged;
// Description is always applied (nil clears it).
type UpdateTeamInput struct {
	Name        *string
	Description *string
}

func (a *Accessor) Update(ctx context.Context, id primitive.ObjectID, in UpdateTeamInput) (models.Team, error) {
	if in.Name != nil {
		if err := inputval.Required("name", *in.Name); err != nil {
			return models.Team{}, err
		}
	}

	u := teamstore.Update{
		Description: htmlsanitize.CleanOptional(normalize.OptionalFrom(in.Description)),
	}
	if in.Name != nil {
		cleaned := htmlsanitize.Clean(normalize.Name(*in.Name))
		u.Name = &cleaned
	}

	team, err := a.store.Update(ctx, id, u)
	if err != nil {
		return models.Team{}, err
	}
	a.afterMutation(ctx)
	return team, nil
}

// Delete removes a team, clearing the team reference from its members first.
func (a *Accessor) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := a.store.GetByID(ctx, id); err != nil {
		return err
	}
	cleared, err := a.people.ClearTeam(ctx, id)
	if err != nil {
		return err
	}
	n, err := a.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return teamstore.ErrTeamNotFound
	}

	a.afterMutation(ctx)
	if cleared > 0 && a.reloadPeople != nil {
		if err := a.reloadPeople(ctx); err != nil {
			a.log.Warn("people feed reload after team delete failed", zap.Error(err))
		}
	}
	return nil
}

func (a *Accessor) afterMutation(ctx context.Context) {
	a.sub.InvalidateCache(ctx)
	if _, err := a.sub.Refresh(ctx); err != nil {
		a.log.Warn("team feed refresh after mutation failed", zap.Error(err))
	}
}
