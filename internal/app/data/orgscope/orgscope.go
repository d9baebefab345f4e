// internal/app/data/orgscope/orgscope.go

// Package orgscope tracks which organization the dashboard is working in.
// Every entity feed derives its cache key from the scope, so switching
// organizations re-points all of them at once.
package orgscope

import (
	"context"
	"errors"
	"sync"
	"time"

	organizationstore "github.com/dalemusser/assethub/internal/app/store/organizations"
	prefsstore "github.com/dalemusser/assethub/internal/app/store/prefs"
	"github.com/dalemusser/assethub/internal/domain/models"
	"github.com/jellydator/ttlcache/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrNoOrganization is returned by operations that need an active
// organization when none is selected.
var ErrNoOrganization = errors.New("no active organization")

// ChangeFunc observes scope changes. ok is false when no organization is
// active (none exist).
type ChangeFunc func(org models.Organization, ok bool)

// Scope holds the active organization and a registered observer list.
// Observers are notified in registration order, so delivery is deterministic.
type Scope struct {
	orgs    *organizationstore.Store
	prefs   *prefsstore.Store
	profile string
	log     *zap.Logger

	memo *ttlcache.Cache[primitive.ObjectID, models.Organization]

	mu        sync.Mutex
	current   models.Organization
	hasOrg    bool
	loading   bool
	observers []ChangeFunc
}

// New builds a Scope persisting its selection under the given prefs profile.
// memoTTL bounds how long organization lookups are memoized.
func New(orgs *organizationstore.Store, prefs *prefsstore.Store, profile string, memoTTL time.Duration, logger *zap.Logger) *Scope {
	s := &Scope{
		orgs:    orgs,
		prefs:   prefs,
		profile: profile,
		log:     logger,
		memo: ttlcache.New(
			ttlcache.WithTTL[primitive.ObjectID, models.Organization](memoTTL),
		),
	}
	go s.memo.Start()
	return s
}

// Stop halts the memo's expiry loop.
func (s *Scope) Stop() {
	s.memo.Stop()
}

// Current returns the active organization. ok is false when none is active.
func (s *Scope) Current() (models.Organization, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.hasOrg
}

// Loading reports whether a resolution is in progress.
func (s *Scope) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// OnChange registers an observer. Observers registered earlier are notified
// earlier.
func (s *Scope) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Resolve establishes the active organization: the persisted selection when
// it still names an existing organization, otherwise the earliest-created
// organization, otherwise none.
func (s *Scope) Resolve(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if id, found, err := s.prefs.SelectedOrganization(ctx, s.profile); err != nil {
		return err
	} else if found {
		org, err := s.getOrganization(ctx, id)
		if err == nil {
			s.setCurrent(org, true)
			return nil
		}
		if err != organizationstore.ErrOrganizationNotFound {
			return err
		}
		// The persisted selection points at a deleted organization; drop it
		// and fall through to the default.
		s.log.Info("persisted organization selection is gone, falling back",
			zap.String("organization_id", id.Hex()))
		if err := s.prefs.ClearSelectedOrganization(ctx, s.profile); err != nil {
			return err
		}
	}

	org, found, err := s.orgs.First(ctx)
	if err != nil {
		return err
	}
	if !found {
		s.setCurrent(models.Organization{}, false)
		return nil
	}
	s.setCurrent(org, true)
	return nil
}

// SwitchTo makes the given organization active and persists the selection.
// Any failure leaves the previous selection untouched.
func (s *Scope) SwitchTo(ctx context.Context, id primitive.ObjectID) error {
	org, err := s.getOrganization(ctx, id)
	if err != nil {
		return err
	}
	if err := s.prefs.SetSelectedOrganization(ctx, s.profile, id); err != nil {
		return err
	}
	s.setCurrent(org, true)
	s.log.Info("switched organization",
		zap.String("organization_id", id.Hex()), zap.String("name", org.Name))
	return nil
}

// Refresh re-reads the active organization from the store and re-runs
// resolution, bypassing the memo. Called after organization mutations.
func (s *Scope) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.hasOrg {
		s.memo.Delete(s.current.ID)
	}
	s.mu.Unlock()
	return s.Resolve(ctx)
}

// Forget drops the memoized lookup for an organization. Mutation paths call
// it so a rename or delete is visible immediately.
func (s *Scope) Forget(id primitive.ObjectID) {
	s.memo.Delete(id)
}

// getOrganization memoizes successful lookups; failures are re-fetched on
// the next call.
func (s *Scope) getOrganization(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var loadErr error
	loader := ttlcache.LoaderFunc[primitive.ObjectID, models.Organization](
		func(cache *ttlcache.Cache[primitive.ObjectID, models.Organization], key primitive.ObjectID) *ttlcache.Item[primitive.ObjectID, models.Organization] {
			org, err := s.orgs.GetByID(ctx, key)
			if err != nil {
				loadErr = err
				return nil
			}
			return cache.Set(key, org, ttlcache.DefaultTTL)
		},
	)
	item := s.memo.Get(id, ttlcache.WithLoader[primitive.ObjectID, models.Organization](loader))
	if item == nil {
		return models.Organization{}, loadErr
	}
	return item.Value(), nil
}

func (s *Scope) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// setCurrent applies the new selection and, when it differs from the old
// one, notifies observers in order outside the lock.
func (s *Scope) setCurrent(org models.Organization, ok bool) {
	s.mu.Lock()
	changed := ok != s.hasOrg || org != s.current
	s.current = org
	s.hasOrg = ok
	observers := make([]ChangeFunc, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range observers {
		fn(org, ok)
	}
}
