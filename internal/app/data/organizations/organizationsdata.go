// internal/app/data/organizations/organizationsdata.go

// Package organizationsdata serves and mutates the organization list.
// The list is global (not scoped), so its cache key carries no organization.
// Deleting an organization removes everything under it and re-resolves the
// active scope.
package organizationsdata

import (
	"context"
	"time"

	"github.com/dalemusser/assethub/internal/app/data/datacache"
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
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/normalize"
	"github.com/dalemusser/assethub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const entity = "organizations"

// scopedEntities lists the per-organization cache key namespaces that must be
// invalidated when an organization is deleted.
var scopedEntities = []string{"people", "teams", "licenses", "seats", "assets", "documents"}

// Stores bundles the collection stores an organization delete cascades over.
type Stores struct {
	People    *peoplestore.Store
	Teams     *teamstore.Store
	Licenses  *licensestore.Store
	Seats     *seatstore.Store
	Assets    *assetstore.Store
	Documents *documentstore.Store
}

// Accessor owns the organization list feed.
type Accessor struct {
	store *organizationstore.Store
	prefs *prefsstore.Store
	child Stores
	scope *orgscope.Scope
	cache *cachestore.Store
	sub   *datacache.Subscription[[]models.Organization]
	log   *zap.Logger
}

func New(store *organizationstore.Store, prefs *prefsstore.Store, child Stores, scope *orgscope.Scope, cache *cachestore.Store, ttl time.Duration, logger *zap.Logger) *Accessor {
	a := &Accessor{
		store: store,
		prefs: prefs,
		child: child,
		scope: scope,
		cache: cache,
		log:   logger,
	}
	a.sub = datacache.New(cache, ttl,
		func() string { return cachestore.Key(entity, primitive.NilObjectID) },
		func(ctx context.Context) ([]models.Organization, error) { return store.List(ctx) },
		logger)
	return a
}

// List returns every organization in creation order, cache-first.
func (a *Accessor) List(ctx context.Context) ([]models.Organization, error) {
	return a.sub.Load(ctx)
}

// Refresh re-reads the organizations from the store, bypassing the cache.
func (a *Accessor) Refresh(ctx context.Context) ([]models.Organization, error) {
	return a.sub.Refresh(ctx)
}

// Snapshot returns the feed state without touching cache or store.
func (a *Accessor) Snapshot() datacache.Snapshot[[]models.Organization] {
	return a.sub.Snapshot()
}

// Close tears down the feed.
func (a *Accessor) Close() {
	a.sub.Close()
}

// Add creates an organization. When none was active before, the scope
// re-resolves so the new organization becomes current.
func (a *Accessor) Add(ctx context.Context, name string) (models.Organization, error) {
	if err := inputval.Required("name", name); err != nil {
		return models.Organization{}, err
	}

	org, err := a.store.Create(ctx, normalize.Name(name))
	if err != nil {
		return models.Organization{}, err
	}
	a.afterMutation(ctx)
	if _, ok := a.scope.Current(); !ok {
		if err := a.scope.Resolve(ctx); err != nil {
			a.log.Warn("scope resolve after organization create failed", zap.Error(err))
		}
	}
	return org, nil
}

// Rename changes an organization's name. The scope refreshes so observers
// see the new name when the renamed organization is active.
func (a *Accessor) Rename(ctx context.Context, id primitive.ObjectID, name string) (models.Organization, error) {
	if err := inputval.Required("name", name); err != nil {
		return models.Organization{}, err
	}

	org, err := a.store.UpdateName(ctx, id, normalize.Name(name))
	if err != nil {
		return models.Organization{}, err
	}
	a.scope.Forget(id)
	a.afterMutation(ctx)
	if err := a.scope.Refresh(ctx); err != nil {
		a.log.Warn("scope refresh after organization rename failed", zap.Error(err))
	}
	return org, nil
}

// Delete removes an organization and everything under it: seats first (they
// hang off licenses), then the per-collection rows, then the organization.
// Persisted selections pointing at it are cleared and the scope re-resolves.
func (a *Accessor) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := a.store.GetByID(ctx, id); err != nil {
		return err
	}

	licenseIDs, err := a.child.Licenses.IDsByOrganization(ctx, id)
	if err != nil {
		return err
	}
	if _, err := a.child.Seats.DeleteByLicenses(ctx, licenseIDs); err != nil {
		return err
	}
	if _, err := a.child.Licenses.DeleteByOrganization(ctx, id); err != nil {
		return err
	}
	if _, err := a.child.People.DeleteByOrganization(ctx, id); err != nil {
		return err
	}
	if _, err := a.child.Teams.DeleteByOrganization(ctx, id); err != nil {
		return err
	}
	if _, err := a.child.Assets.DeleteByOrganization(ctx, id); err != nil {
		return err
	}
	if _, err := a.child.Documents.DeleteByOrganization(ctx, id); err != nil {
		return err
	}
	if _, err := a.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := a.prefs.ClearIfSelected(ctx, id); err != nil {
		return err
	}
	a.scope.Forget(id)
	for _, e := range scopedEntities {
		a.cache.Invalidate(ctx, cachestore.Key(e, id))
	}
	a.afterMutation(ctx)
	if err := a.scope.Refresh(ctx); err != nil {
		a.log.Warn("scope refresh after organization delete failed", zap.Error(err))
	}
	return nil
}

func (a *Accessor) afterMutation(ctx context.Context) {
	a.sub.InvalidateCache(ctx)
	if _, err := a.sub.Refresh(ctx); err != nil {
		a.log.Warn("organization feed refresh after mutation failed", zap.Error(err))
	}
}
