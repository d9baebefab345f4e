// internal/app/data/assets/assetsdata.go

// Package assetsdata serves and mutates the active organization's assets.
// Reads go through a cache-first subscription; every mutation invalidates
// the feed's cache key and refreshes it before returning.
package assetsdata

import (
	"context"
	"time"

	"github.com/dalemusser/assethub/internal/app/data/datacache"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	assetstore "github.com/dalemusser/assethub/internal/app/store/assets"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	"github.com/dalemusser/assethub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/normalize"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"github.com/dalemusser/assethub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const entity = "assets"

// Accessor owns the asset feed for the active organization.
type Accessor struct {
	store  *assetstore.Store
	people *peoplestore.Store
	scope  *orgscope.Scope
	cache  *cachestore.Store
	sub    *datacache.Subscription[[]models.Asset]
	log    *zap.Logger
}

func New(store *assetstore.Store, people *peoplestore.Store, scope *orgscope.Scope, cache *cachestore.Store, ttl time.Duration, logger *zap.Logger) *Accessor {
	a := &Accessor{
		store:  store,
		people: people,
		scope:  scope,
		cache:  cache,
		log:    logger,
	}
	a.sub = datacache.New(cache, ttl, a.cacheKey, a.fetch, logger)
	scope.OnChange(func(models.Organization, bool) { a.reloadOnScopeChange() })
	return a
}

func (a *Accessor) cacheKey() string {
	org, _ := a.scope.Current()
	return cachestore.Key(entity, org.ID)
}

func (a *Accessor) fetch(ctx context.Context) ([]models.Asset, error) {
	org, ok := a.scope.Current()
	if !ok {
		return []models.Asset{}, nil
	}
	return a.store.ListByOrganization(ctx, org.ID)
}

func (a *Accessor) reloadOnScopeChange() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()
	if _, err := a.sub.Refresh(ctx); err != nil {
		a.log.Warn("asset feed reload failed", zap.Error(err))
	}
}

// List returns the organization's assets, cache-first.
func (a *Accessor) List(ctx context.Context) ([]models.Asset, error) {
	return a.sub.Load(ctx)
}

// Refresh re-reads the assets from the store, bypassing the cache.
func (a *Accessor) Refresh(ctx context.Context) ([]models.Asset, error) {
	return a.sub.Refresh(ctx)
}

// Snapshot returns the feed state without touching cache or store.
func (a *Accessor) Snapshot() datacache.Snapshot[[]models.Asset] {
	return a.sub.Snapshot()
}

// InvalidateCache drops the feed's cache entry without re-fetching.
func (a *Accessor) InvalidateCache(ctx context.Context) {
	a.sub.InvalidateCache(ctx)
}

// Reload invalidates the cache entry and refreshes the feed. Cross-entity
// cascades call this when their mutation touched assets.
func (a *Accessor) Reload(ctx context.Context) error {
	a.sub.InvalidateCache(ctx)
	_, err := a.sub.Refresh(ctx)
	return err
}

// Close tears down the feed.
func (a *Accessor) Close() {
	a.sub.Close()
}

// AddAssetInput carries the fields for a new asset.
type AddAssetInput struct {
	Name         string
	SerialNumber *string
	Brand        string
	Value        float64
}

// Add validates and creates an asset in the active organization.
func (a *Accessor) Add(ctx context.Context, in AddAssetInput) (models.Asset, error) {
	org, ok := a.scope.Current()
	if !ok {
		return models.Asset{}, orgscope.ErrNoOrganization
	}
	if err := inputval.Required("name", in.Name); err != nil {
		return models.Asset{}, err
	}
	if err := inputval.Required("brand", in.Brand); err != nil {
		return models.Asset{}, err
	}
	if err := inputval.NonNegative("value", in.Value); err != nil {
		return models.Asset{}, err
	}

	asset, err := a.store.Create(ctx, assetstore.NewAsset{
		Name:           htmlsanitize.Clean(normalize.Name(in.Name)),
		SerialNumber:   htmlsanitize.CleanOptional(normalize.OptionalFrom(in.SerialNumber)),
		Brand:          htmlsanitize.Clean(normalize.Name(in.Brand)),
		Value:          in.Value,
		OrganizationID: org.ID,
	})
	if err != nil {
		return models.Asset{}, err
	}
	a.afterMutation(ctx)
	return asset, nil
}

// UpdateAssetInput carries asset changes. Nil Name/Brand/Value leave the
// field unchanged; SerialNumber is always applied (nil clears it).
type UpdateAssetInput struct {
	Name         *string
	SerialNumber *string
	Brand        *string
	Value        *float64
}

func (a *Accessor) Update(ctx context.Context, id primitive.ObjectID, in UpdateAssetInput) (models.Asset, error) {
	if in.Name != nil {
		if err := inputval.Required("name", *in.Name); err != nil {
			return models.Asset{}, err
		}
	}
	if in.Brand != nil {
		if err := inputval.Required("brand", *in.Brand); err != nil {
			return models.Asset{}, err
		}
	}
	if in.Value != nil {
		if err := inputval.NonNegative("value", *in.Value); err != nil {
			return models.Asset{}, err
		}
	}

	u := assetstore.Update{
		SerialNumber: htmlsanitize.CleanOptional(normalize.OptionalFrom(in.SerialNumber)),
		Value:        in.Value,
	}
	if in.Name != nil {
		cleaned := htmlsanitize.Clean(normalize.Name(*in.Name))
		u.Name = &cleaned
	}
	if in.Brand != nil {
		cleaned := htmlsanitize.Clean(normalize.Name(*in.Brand))
		u.Brand = &cleaned
	}

	asset, err := a.store.Update(ctx, id, u)
	if err != nil {
		return models.Asset{}, err
	}
	a.afterMutation(ctx)
	return asset, nil
}

func (a *Accessor) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := a.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return assetstore.ErrAssetNotFound
	}
	a.afterMutation(ctx)
	return nil
}

// Assign hands the asset to a person in the same organization.
func (a *Accessor) Assign(ctx context.Context, assetID, personID primitive.ObjectID) (models.Asset, error) {
	asset, err := a.store.GetByID(ctx, assetID)
	if err != nil {
		return models.Asset{}, err
	}
	person, err := a.people.GetByID(ctx, personID)
	if err != nil {
		return models.Asset{}, err
	}
	if person.OrganizationID != asset.OrganizationID {
		return models.Asset{}, peoplestore.ErrPersonNotFound
	}

	assigned, err := a.store.Assign(ctx, assetID, personID)
	if err != nil {
		return models.Asset{}, err
	}
	a.afterMutation(ctx)
	return assigned, nil
}

// Unassign takes the asset back.
func (a *Accessor) Unassign(ctx context.Context, assetID primitive.ObjectID) (models.Asset, error) {
	asset, err := a.store.Unassign(ctx, assetID)
	if err != nil {
		return models.Asset{}, err
	}
	a.afterMutation(ctx)
	return asset, nil
}

// afterMutation invalidates the feed's cache key and refreshes it. A refresh
// failure does not undo the store write; it is logged and the invalidated
// cache guarantees the next read is consistent.
func (a *Accessor) afterMutation(ctx context.Context) {
	a.sub.InvalidateCache(ctx)
	if _, err := a.sub.Refresh(ctx); err != nil {
		a.log.Warn("asset feed refresh after mutation failed", zap.Error(err))
	}
}
