// internal/app/data/documents/documentsdata.go

// Package documentsdata serves and mutates the active organization's
// documents. Uploaded files are stored under generated names so two uploads
// of "contract.pdf" never collide; the original filename is kept for display.
package documentsdata

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/dalemusser/assethub/internal/app/data/datacache"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	documentstore "github.com/dalemusser/assethub/internal/app/store/documents"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	"github.com/dalemusser/assethub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/assethub/internal/app/system/inputval"
	"github.com/dalemusser/assethub/internal/app/system/normalize"
	"github.com/dalemusser/assethub/internal/app/system/timeouts"
	"github.com/dalemusser/assethub/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const entity = "documents"

// Accessor owns the document feed for the active organization.
type Accessor struct {
	store  *documentstore.Store
	people *peoplestore.Store
	scope  *orgscope.Scope
	cache  *cachestore.Store
	sub    *datacache.Subscription[[]models.Document]
	log    *zap.Logger

	// urlPrefix is prepended to stored names to form the file URL.
	urlPrefix string
}

func New(store *documentstore.Store, people *peoplestore.Store, scope *orgscope.Scope, cache *cachestore.Store, ttl time.Duration, urlPrefix string, logger *zap.Logger) *Accessor {
	a := &Accessor{
		store:     store,
		people:    people,
		scope:     scope,
		cache:     cache,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
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

func (a *Accessor) fetch(ctx context.Context) ([]models.Document, error) {
	org, ok := a.scope.Current()
	if !ok {
		return []models.Document{}, nil
	}
	return a.store.ListByOrganization(ctx, org.ID)
}

func (a *Accessor) reloadOnScopeChange() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()
	if _, err := a.sub.Refresh(ctx); err != nil {
		a.log.Warn("document feed reload failed", zap.Error(err))
	}
}

// List returns the organization's documents, cache-first.
func (a *Accessor) List(ctx context.Context) ([]models.Document, error) {
	return a.sub.Load(ctx)
}

// Refresh re-reads the documents from the store, bypassing the cache.
func (a *Accessor) Refresh(ctx context.Context) ([]models.Document, error) {
	return a.sub.Refresh(ctx)
}

// Snapshot returns the feed state without touching cache or store.
func (a *Accessor) Snapshot() datacache.Snapshot[[]models.Document] {
	return a.sub.Snapshot()
}

// Reload invalidates the cache entry and refreshes the feed. The person
// delete cascade calls this after detaching the person's documents.
func (a *Accessor) Reload(ctx context.Context) error {
	a.sub.InvalidateCache(ctx)
	_, err := a.sub.Refresh(ctx)
	return err
}

// Close tears down the feed.
func (a *Accessor) Close() {
	a.sub.Close()
}

// StoredName generates the storage name for an upload: a fresh uuid with
// the original extension kept so content types stay guessable.
func StoredName(filename string) string {
	return uuid.New().String() + strings.ToLower(path.Ext(filename))
}

// AddDocumentInput carries the fields for a new document record.
type AddDocumentInput struct {
	Name     string
	Filename string
	PersonID *primitive.ObjectID
}

// Add records a document in the active organization. The file URL is derived
// from a generated stored name, never from the user-supplied filename.
func (a *Accessor) Add(ctx context.Context, in AddDocumentInput) (models.Document, error) {
	org, ok := a.scope.Current()
	if !ok {
		return models.Document{}, orgscope.ErrNoOrganization
	}
	if err := inputval.Required("name", in.Name); err != nil {
		return models.Document{}, err
	}
	if err := inputval.Required("filename", in.Filename); err != nil {
		return models.Document{}, err
	}
	if in.PersonID != nil {
		person, err := a.people.GetByID(ctx, *in.PersonID)
		if err != nil {
			return models.Document{}, err
		}
		if person.OrganizationID != org.ID {
			return models.Document{}, peoplestore.ErrPersonNotFound
		}
	}

	stored := StoredName(in.Filename)
	doc, err := a.store.Create(ctx, documentstore.NewDocument{
		Name:           htmlsanitize.Clean(normalize.Name(in.Name)),
		Filename:       normalize.Name(in.Filename),
		FileURL:        a.urlPrefix + "/" + stored,
		PersonID:       in.PersonID,
		OrganizationID: org.ID,
	})
	if err != nil {
		return models.Document{}, err
	}
	a.afterMutation(ctx)
	return doc, nil
}

// AssignToPerson links a document to a person; a nil personID detaches it.
func (a *Accessor) AssignToPerson(ctx context.Context, id primitive.ObjectID, personID *primitive.ObjectID) (models.Document, error) {
	doc, err := a.store.GetByID(ctx, id)
	if err != nil {
		return models.Document{}, err
	}
	if personID != nil {
		person, err := a.people.GetByID(ctx, *personID)
		if err != nil {
			return models.Document{}, err
		}
		if person.OrganizationID != doc.OrganizationID {
			return models.Document{}, peoplestore.ErrPersonNotFound
		}
	}

	updated, err := a.store.AssignToPerson(ctx, id, personID)
	if err != nil {
		return models.Document{}, err
	}
	a.afterMutation(ctx)
	return updated, nil
}

func (a *Accessor) Delete(ctx context.Context, id primitive.ObjectID) error {
	n, err := a.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return documentstore.ErrDocumentNotFound
	}
	a.afterMutation(ctx)
	return nil
}

func (a *Accessor) afterMutation(ctx context.Context) {
	a.sub.InvalidateCache(ctx)
	if _, err := a.sub.Refresh(ctx); err != nil {
		a.log.Warn("document feed refresh after mutation failed", zap.Error(err))
	}
}
