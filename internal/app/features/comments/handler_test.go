// internal/app/features/comments/handler_test.go
package comments_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/features/comments"
	activitystore "github.com/flowdesk/flowdesk/internal/app/store/activity"
	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	"github.com/flowdesk/flowdesk/internal/app/system/auditlog"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/domain/models"
	"github.com/flowdesk/flowdesk/internal/testutil"
)

type seeded struct {
	router chi.Router
	db     *mongo.Database
	hub    *realtime.Hub
	f      *testutil.Fixtures
}

func newRouter(t *testing.T) seeded {
	t.Helper()
	db := testutil.SetupTestDB(t)

	g := guard.New(orgmemberstore.New(db), zap.NewNop())
	audit := auditlog.New(activitystore.New(db), zap.NewNop(), auditlog.Config{Board: "db"})
	hub := realtime.NewHub(zap.NewNop())
	h := comments.NewHandler(db, zap.NewNop(), g, audit, hub)

	r := chi.NewRouter()
	r.Route("/orgs/{orgID}", func(or chi.Router) {
		or.Mount("/tasks/{taskID}/comments", comments.Routes(h))
	})
	return seeded{router: r, db: db, hub: hub, f: testutil.NewFixtures(t, db)}
}

func asTestUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID, Name: u.FullName, Email: u.Email}
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

func TestCommentThread(t *testing.T) {
	s := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := s.f.CreateUser(ctx, "Member", "cm@example.com")
	viewer := s.f.CreateUser(ctx, "Viewer", "cv@example.com")
	org := s.f.CreateOrganization(ctx, "Threads", "threads", member.ID)
	s.f.CreateOrgMember(ctx, org.ID, member.ID, "MEMBER")
	s.f.CreateOrgMember(ctx, org.ID, viewer.ID, "VIEWER")
	ws := s.f.CreateWorkspace(ctx, org.ID, "Dev")
	project := s.f.CreateProject(ctx, org.ID, ws.ID, "Talk")
	task := s.f.CreateTask(ctx, org.ID, project.ID, "Discussed", "TODO", 0)

	base := "/orgs/" + org.ID.Hex() + "/tasks/" + task.ID.Hex() + "/comments"

	// Viewers read but do not write.
	rec := do(t, s.router, asTestUser(viewer), "POST", base, `{"body":"first!"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("viewer post status = %d, want 403", rec.Code)
	}

	rec = do(t, s.router, asTestUser(member), "POST", base, `{"body":"plain <script>x()</script> text"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("post status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID   string `json:"id"`
		Body string `json:"body"`
	}
	testutil.DecodeJSON(t, rec, &created)
	if strings.Contains(created.Body, "script") {
		t.Errorf("body not sanitized: %q", created.Body)
	}

	rec = do(t, s.router, asTestUser(member), "POST", base, `{"body":"second"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("second post status = %d", rec.Code)
	}

	rec = do(t, s.router, asTestUser(viewer), "GET", base, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var thread []struct {
		ID string `json:"id"`
	}
	testutil.DecodeJSON(t, rec, &thread)
	if len(thread) != 2 || thread[0].ID != created.ID {
		t.Errorf("thread order = %v", thread)
	}

	rec = do(t, s.router, asTestUser(member), "POST", base, `{"body":"   "}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}

	// Unknown task is a 404, not an empty thread.
	rec = do(t, s.router, asTestUser(member), "POST",
		"/orgs/"+org.ID.Hex()+"/tasks/"+member.ID.Hex()+"/comments", `{"body":"lost"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown task status = %d, want 404", rec.Code)
	}
}

func TestCommentEditAndDelete(t *testing.T) {
	s := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := s.f.CreateUser(ctx, "Author", "ca@example.com")
	other := s.f.CreateUser(ctx, "Other", "co@example.com")
	admin := s.f.CreateUser(ctx, "Admin", "cadm@example.com")
	org := s.f.CreateOrganization(ctx, "Moderated", "moderated", author.ID)
	s.f.CreateOrgMember(ctx, org.ID, author.ID, "MEMBER")
	s.f.CreateOrgMember(ctx, org.ID, other.ID, "MEMBER")
	s.f.CreateOrgMember(ctx, org.ID, admin.ID, "ADMIN")
	ws := s.f.CreateWorkspace(ctx, org.ID, "Dev")
	project := s.f.CreateProject(ctx, org.ID, ws.ID, "Rules")
	task := s.f.CreateTask(ctx, org.ID, project.ID, "Contested", "TODO", 0)

	base := "/orgs/" + org.ID.Hex() + "/tasks/" + task.ID.Hex() + "/comments"

	rec := do(t, s.router, asTestUser(author), "POST", base, `{"body":"draft"}`)
	var c struct {
		ID string `json:"id"`
	}
	testutil.DecodeJSON(t, rec, &c)

	// Only the author edits.
	rec = do(t, s.router, asTestUser(other), "PATCH", base+"/"+c.ID, `{"body":"hijacked"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign edit status = %d, want 404", rec.Code)
	}
	rec = do(t, s.router, asTestUser(author), "PATCH", base+"/"+c.ID, `{"body":"final"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("author edit status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var edited struct {
		Body string `json:"body"`
	}
	testutil.DecodeJSON(t, rec, &edited)
	if edited.Body != "final" {
		t.Errorf("body = %q", edited.Body)
	}

	// A fellow member cannot delete someone else's comment; an admin can.
	rec = do(t, s.router, asTestUser(other), "DELETE", base+"/"+c.ID, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign delete status = %d, want 403", rec.Code)
	}
	rec = do(t, s.router, asTestUser(admin), "DELETE", base+"/"+c.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("admin delete status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = do(t, s.router, asTestUser(admin), "DELETE", base+"/"+c.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete twice status = %d, want 404", rec.Code)
	}
}

func TestCommentAddedEvent(t *testing.T) {
	s := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := s.f.CreateUser(ctx, "Member", "ce@example.com")
	org := s.f.CreateOrganization(ctx, "Live", "live", member.ID)
	s.f.CreateOrgMember(ctx, org.ID, member.ID, "MEMBER")
	ws := s.f.CreateWorkspace(ctx, org.ID, "Dev")
	project := s.f.CreateProject(ctx, org.ID, ws.ID, "Feed")
	task := s.f.CreateTask(ctx, org.ID, project.ID, "Watched", "TODO", 0)

	events, unsubscribe := s.hub.Subscribe(realtime.OrgRoom(org.ID.Hex()))
	defer unsubscribe()

	rec := do(t, s.router, asTestUser(member), "POST",
		"/orgs/"+org.ID.Hex()+"/tasks/"+task.ID.Hex()+"/comments", `{"body":"ping"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("post status = %d", rec.Code)
	}

	select {
	case ev := <-events:
		if ev.Name != realtime.EventCommentAdded {
			t.Errorf("event = %q, want comment.added", ev.Name)
		}
	case <-time.After(2 * time.Second):
		t.Error("no comment.added event")
	}
}
