// internal/app/features/organizations/handler_test.go
package organizations_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/features/organizations"
	activitystore "github.com/flowdesk/flowdesk/internal/app/store/activity"
	organizationstore "github.com/flowdesk/flowdesk/internal/app/store/organizations"
	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	taskstore "github.com/flowdesk/flowdesk/internal/app/store/tasks"
	"github.com/flowdesk/flowdesk/internal/app/system/auditlog"
	sessionauth "github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/authz"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/testutil"
)

func newRouter(t *testing.T) (chi.Router, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	sm, err := sessionauth.NewSessionManager("0123456789abcdef0123456789abcdef", "flowdesk_session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	g := guard.New(orgmemberstore.New(db), zap.NewNop())
	audit := auditlog.New(activitystore.New(db), zap.NewNop(), auditlog.Config{Board: "db", Org: "db"})

	h := organizations.NewHandler(db, zap.NewNop(), sm, g, audit)
	r := chi.NewRouter()
	r.Mount("/orgs", organizations.Routes(h))
	return r, db
}

func do(t *testing.T, router http.Handler, user testutil.TestUser, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req = testutil.WithUser(req, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrganization(t *testing.T) {
	router, db := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := testutil.NewTestUser("Founder", "founder@example.com")
	rec := do(t, router, user, "POST", "/orgs", `{"name":"Acme Corp"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID   string `json:"id"`
		Slug string `json:"slug"`
		Plan string `json:"plan"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Slug != "acme-corp" {
		t.Errorf("slug = %q, want derived acme-corp", resp.Slug)
	}
	if resp.Plan != "FREE" {
		t.Errorf("plan = %q, want default FREE", resp.Plan)
	}

	// Creator holds OWNER.
	orgID, _ := primitive.ObjectIDFromHex(resp.ID)
	m, err := orgmemberstore.New(db).Get(ctx, orgID, user.ID)
	if err != nil {
		t.Fatalf("creator membership: %v", err)
	}
	if m.Role != string(authz.RoleOwner) {
		t.Errorf("creator role = %q, want OWNER", m.Role)
	}

	// Slug collision.
	rec = do(t, router, user, "POST", "/orgs", `{"name":"Other","slug":"acme-corp"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate slug status = %d, want 409", rec.Code)
	}
}

func TestListOrganizations(t *testing.T) {
	router, db := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)

	user := testutil.NewTestUser("Member", "member@example.com")
	orgA := f.CreateOrganization(ctx, "Alpha", "alpha", user.ID)
	orgB := f.CreateOrganization(ctx, "Beta", "beta", user.ID)
	f.CreateOrgMember(ctx, orgA.ID, user.ID, "OWNER")
	f.CreateOrgMember(ctx, orgB.ID, user.ID, "VIEWER")
	// An unrelated org the caller is not in.
	f.CreateOrganization(ctx, "Gamma", "gamma", primitive.NewObjectID())

	rec := do(t, router, user, "GET", "/orgs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var items []struct {
		Slug string `json:"slug"`
		Role string `json:"role"`
	}
	testutil.DecodeJSON(t, rec, &items)
	if len(items) != 2 {
		t.Fatalf("got %d orgs, want 2", len(items))
	}
	roles := map[string]string{}
	for _, it := range items {
		roles[it.Slug] = it.Role
	}
	if roles["alpha"] != "OWNER" || roles["beta"] != "VIEWER" {
		t.Errorf("roles = %v", roles)
	}
}

func TestViewRequiresMembership(t *testing.T) {
	router, db := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)

	member := testutil.NewTestUser("Viewer", "viewer@example.com")
	stranger := testutil.NewTestUser("Stranger", "stranger@example.com")
	org := f.CreateOrganization(ctx, "Guarded", "guarded", member.ID)
	f.CreateOrgMember(ctx, org.ID, member.ID, "VIEWER")

	rec := do(t, router, member, "GET", "/orgs/"+org.ID.Hex(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("member view status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, stranger, "GET", "/orgs/"+org.ID.Hex(), "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("stranger view status = %d, want 403", rec.Code)
	}
}

func TestUpdateRequiresAdmin(t *testing.T) {
	router, db := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)

	admin := testutil.NewTestUser("Admin", "admin@example.com")
	member := testutil.NewTestUser("Member", "plain@example.com")
	org := f.CreateOrganization(ctx, "Renameable", "renameable", admin.ID)
	f.CreateOrgMember(ctx, org.ID, admin.ID, "ADMIN")
	f.CreateOrgMember(ctx, org.ID, member.ID, "MEMBER")

	rec := do(t, router, member, "PATCH", "/orgs/"+org.ID.Hex(), `{"name":"Nope"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member update status = %d, want 403", rec.Code)
	}

	rec = do(t, router, admin, "PATCH", "/orgs/"+org.ID.Hex(), `{"name":"Renamed","plan":"PRO"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
		Plan string `json:"plan"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.Name != "Renamed" || resp.Plan != "PRO" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Slug != "renameable" {
		t.Errorf("slug changed to %q, want immutable", resp.Slug)
	}
}

func TestDeleteCascades(t *testing.T) {
	router, db := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	f := testutil.NewFixtures(t, db)

	owner := testutil.NewTestUser("Owner", "owner@example.com")
	admin := testutil.NewTestUser("JustAdmin", "justadmin@example.com")
	org := f.CreateOrganization(ctx, "Doomed", "doomed", owner.ID)
	f.CreateOrgMember(ctx, org.ID, owner.ID, "OWNER")
	f.CreateOrgMember(ctx, org.ID, admin.ID, "ADMIN")
	ws := f.CreateWorkspace(ctx, org.ID, "Eng")
	project := f.CreateProject(ctx, org.ID, ws.ID, "Board")
	f.CreateTask(ctx, org.ID, project.ID, "Orphan-to-be", "TODO", 0)

	// ADMIN is not enough.
	rec := do(t, router, admin, "DELETE", "/orgs/"+org.ID.Hex(), "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin delete status = %d, want 403", rec.Code)
	}

	rec = do(t, router, owner, "DELETE", "/orgs/"+org.ID.Hex(), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if _, err := organizationstore.New(db).GetByID(ctx, org.ID); err != mongo.ErrNoDocuments {
		t.Errorf("org still resolvable: %v", err)
	}
	tasks, err := taskstore.New(db, zap.NewNop()).ListByProject(ctx, org.ID, project.ID)
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("%d tasks survived the cascade", len(tasks))
	}
	members, err := orgmemberstore.New(db).ListByOrg(ctx, org.ID)
	if err != nil {
		t.Fatalf("ListByOrg: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("%d memberships survived the cascade", len(members))
	}
}
