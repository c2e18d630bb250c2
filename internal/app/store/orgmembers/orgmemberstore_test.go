package orgmemberstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	"github.com/flowdesk/flowdesk/internal/app/system/authz"
	"github.com/flowdesk/flowdesk/internal/testutil"
)

func TestStore_AddAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orgmemberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	added, err := store.Add(ctx, orgID, userID, "OWNER", nil)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if added.JoinedAt.IsZero() {
		t.Error("expected JoinedAt to be set")
	}

	got, err := store.Get(ctx, orgID, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Role != "OWNER" {
		t.Errorf("Role = %q", got.Role)
	}
}

func TestStore_Add_BadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orgmemberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Add(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "SUPERADMIN", nil); err == nil {
		t.Error("expected error for unknown role")
	}
	// Lowercase tokens are rejected; normalization happens above the store.
	if _, err := store.Add(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "owner", nil); err == nil {
		t.Error("expected error for lowercase role token")
	}
}

func TestStore_Add_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orgmemberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	orgID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if _, err := store.Add(ctx, orgID, userID, "MEMBER", nil); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}
	if _, err := store.Add(ctx, orgID, userID, "ADMIN", nil); err != orgmemberstore.ErrDuplicateMembership {
		t.Errorf("expected ErrDuplicateMembership, got %v", err)
	}
}

func TestStore_ListMemberships(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orgmemberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	orgA := primitive.NewObjectID()
	orgB := primitive.NewObjectID()

	if _, err := store.Add(ctx, orgA, userID, "OWNER", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, orgB, userID, "VIEWER", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	memberships, err := store.ListMemberships(ctx, userID.Hex())
	if err != nil {
		t.Fatalf("ListMemberships failed: %v", err)
	}
	if len(memberships) != 2 {
		t.Fatalf("got %d memberships, want 2", len(memberships))
	}
	byOrg := map[string]authz.Role{}
	for _, m := range memberships {
		byOrg[m.OrgID] = m.Role
	}
	if byOrg[orgA.Hex()] != authz.RoleOwner || byOrg[orgB.Hex()] != authz.RoleViewer {
		t.Errorf("memberships = %v", byOrg)
	}

	// Unparseable session ids yield no memberships, not an error.
	memberships, err = store.ListMemberships(ctx, "garbage")
	if err != nil || memberships != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", memberships, err)
	}
}

func TestStore_UpdateRole_LastOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orgmemberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	member := primitive.NewObjectID()

	if _, err := store.Add(ctx, orgID, owner, "OWNER", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, orgID, member, "MEMBER", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// Demoting the only owner is refused.
	if err := store.UpdateRole(ctx, orgID, owner, "ADMIN"); err != orgmemberstore.ErrLastOwner {
		t.Errorf("expected ErrLastOwner, got %v", err)
	}

	// Promote a second owner, then the demotion is allowed.
	if err := store.UpdateRole(ctx, orgID, member, "OWNER"); err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}
	if err := store.UpdateRole(ctx, orgID, owner, "ADMIN"); err != nil {
		t.Errorf("UpdateRole after second owner failed: %v", err)
	}

	got, err := store.Get(ctx, orgID, owner)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Role != "ADMIN" {
		t.Errorf("Role = %q", got.Role)
	}
}

func TestStore_Remove_LastOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orgmemberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	owner := primitive.NewObjectID()

	if _, err := store.Add(ctx, orgID, owner, "OWNER", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Remove(ctx, orgID, owner); err != orgmemberstore.ErrLastOwner {
		t.Errorf("expected ErrLastOwner, got %v", err)
	}

	second := primitive.NewObjectID()
	if _, err := store.Add(ctx, orgID, second, "OWNER", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := store.Remove(ctx, orgID, owner); err != nil {
		t.Errorf("Remove with second owner failed: %v", err)
	}
	if _, err := store.Get(ctx, orgID, owner); err != mongo.ErrNoDocuments {
		t.Errorf("expected membership gone, got %v", err)
	}
}

func TestStore_Remove_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orgmemberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Remove(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_CountByOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := orgmemberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orgID := primitive.NewObjectID()
	if _, err := store.Add(ctx, orgID, primitive.NewObjectID(), "OWNER", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, orgID, primitive.NewObjectID(), "MEMBER", nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	total, err := store.CountByOrg(ctx, orgID, "")
	if err != nil || total != 2 {
		t.Errorf("CountByOrg all = %d, %v", total, err)
	}
	owners, err := store.CountByOrg(ctx, orgID, "OWNER")
	if err != nil || owners != 1 {
		t.Errorf("CountByOrg owners = %d, %v", owners, err)
	}
}
