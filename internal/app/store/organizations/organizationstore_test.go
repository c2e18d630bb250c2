package organizationstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	organizationstore "github.com/flowdesk/flowdesk/internal/app/store/organizations"
	"github.com/flowdesk/flowdesk/internal/domain/models"
	"github.com/flowdesk/flowdesk/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{
		Name:      "Acme Corp",
		Slug:      "Acme Corp",
		CreatedBy: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Slug != "acme-corp" {
		t.Errorf("Slug = %q, want acme-corp", created.Slug)
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.Plan != models.PlanFree {
		t.Errorf("Plan = %q, want FREE default", created.Plan)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	if _, err := store.Create(ctx, models.Organization{Name: "First", Slug: "acme"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Organization{Name: "Second", Slug: "ACME"})
	if err != organizationstore.ErrDuplicateSlug {
		t.Errorf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestStore_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Organization{Name: "No Slug"}); err == nil {
		t.Error("expected error for empty slug")
	}
	if _, err := store.Create(ctx, models.Organization{Name: "Bad Plan", Slug: "bad-plan", Plan: "PLATINUM"}); err == nil {
		t.Error("expected error for unknown plan")
	}
}

func TestStore_GetBySlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{Name: "Acme", Slug: "acme"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.GetBySlug(ctx, "ACME")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got %s, want %s", got.ID.Hex(), created.ID.Hex())
	}

	if _, err := store.GetBySlug(ctx, "nothere"); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{Name: "Acme", Slug: "acme"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Update(ctx, created.ID, organizationstore.Update{Name: "Acme Inc", Plan: models.PlanPro}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Acme Inc" || got.Plan != models.PlanPro {
		t.Errorf("got name=%q plan=%q", got.Name, got.Plan)
	}
	if got.Slug != "acme" {
		t.Errorf("slug changed to %q", got.Slug)
	}

	if err := store.Update(ctx, primitive.NewObjectID(), organizationstore.Update{Name: "X"}); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := organizationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Organization{Name: "Acme", Slug: "acme"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, created.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected org gone, got %v", err)
	}
	if err := store.Delete(ctx, created.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments on double delete, got %v", err)
	}
}
