package documentsdata_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	documentsdata "github.com/dalemusser/assethub/internal/app/data/documents"
	"github.com/dalemusser/assethub/internal/app/data/orgscope"
	cachestore "github.com/dalemusser/assethub/internal/app/store/cache"
	documentstore "github.com/dalemusser/assethub/internal/app/store/documents"
	organizationstore "github.com/dalemusser/assethub/internal/app/store/organizations"
	peoplestore "github.com/dalemusser/assethub/internal/app/store/people"
	prefsstore "github.com/dalemusser/assethub/internal/app/store/prefs"
	"github.com/dalemusser/assethub/internal/domain/models"
	"github.com/dalemusser/assethub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newAccessor(t *testing.T) (*documentsdata.Accessor, *testutil.Fixtures, models.Organization) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	org := fx.CreateOrganization(ctx, "Acme Corp")
	scope := newResolvedScope(t, db)
	cache := cachestore.New(cachestore.NewMemoryKV(), zap.NewNop())
	acc := documentsdata.New(documentstore.New(db), peoplestore.New(db), scope, cache,
		10*time.Minute, "/files/documents", zap.NewNop())
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

func TestStoredName_KeepsExtensionLowercased(t *testing.T) {
	got := documentsdata.StoredName("Employment Contract.PDF")
	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("stored name %q should end in .pdf", got)
	}
	if strings.Contains(got, "Employment") {
		t.Errorf("stored name %q must not leak the original filename", got)
	}
	if got == documentsdata.StoredName("Employment Contract.PDF") {
		t.Error("two stored names for the same filename should differ")
	}
}

func TestAdd_DerivesFileURLFromStoredName(t *testing.T) {
	acc, _, _ := newAccessor(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	doc, err := acc.Add(ctx, documentsdata.AddDocumentInput{
		Name:     "Employment Contract",
		Filename: "contract v2.PDF",
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if doc.Filename != "contract v2.PDF" {
		t.Errorf("filename = %q", doc.Filename)
	}
	if !strings.HasPrefix(doc.FileURL, "/files/documents/") {
		t.Errorf("file URL %q should carry the configured prefix", doc.FileURL)
	}
	if !strings.HasSuffix(doc.FileURL, ".pdf") {
		t.Errorf("file URL %q should keep the lowercased extension", doc.FileURL)
	}
	if strings.Contains(doc.FileURL, "contract v2") {
		t.Errorf("file URL %q must not embed the user-supplied filename", doc.FileURL)
	}
}

func TestAdd_RejectsPersonFromOtherOrganization(t *testing.T) {
	acc, fx, _ := newAccessor(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	other := fx.CreateOrganization(ctx, "Globex")
	outsider := fx.CreatePerson(ctx, other.ID, "Eve", "eve@globex.test")

	_, err := acc.Add(ctx, documentsdata.AddDocumentInput{
		Name:     "Contract",
		Filename: "contract.pdf",
		PersonID: &outsider.ID,
	})
	if !errors.Is(err, peoplestore.ErrPersonNotFound) {
		t.Errorf("err = %v, want ErrPersonNotFound for cross-organization person", err)
	}
}

func TestAssignToPerson_NilDetaches(t *testing.T) {
	acc, fx, org := newAccessor(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	person := fx.CreatePerson(ctx, org.ID, "Ana", "ana@acme.test")
	doc, err := acc.Add(ctx, documentsdata.AddDocumentInput{
		Name:     "Contract",
		Filename: "contract.pdf",
		PersonID: &person.ID,
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if doc.PersonID == nil || *doc.PersonID != person.ID {
		t.Fatal("expected document attached to the person")
	}

	detached, err := acc.AssignToPerson(ctx, doc.ID, nil)
	if err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	if detached.PersonID != nil {
		t.Error("expected the document detached")
	}
}

func TestDelete_RemovesDocument(t *testing.T) {
	acc, _, _ := newAccessor(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	doc, err := acc.Add(ctx, documentsdata.AddDocumentInput{Name: "Contract", Filename: "contract.pdf"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := acc.Delete(ctx, doc.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := acc.Delete(ctx, doc.ID); !errors.Is(err, documentstore.ErrDocumentNotFound) {
		t.Errorf("second delete err = %v, want ErrDocumentNotFound", err)
	}

	docs, err := acc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("got %d documents after delete, want 0", len(docs))
	}
}
