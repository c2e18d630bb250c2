// internal/app/system/guard/guard_test.go

package guard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/authz"
)

type fakeMembers struct {
	memberships []authz.Membership
	err         error
}

func (f fakeMembers) ListMemberships(ctx context.Context, userID string) ([]authz.Membership, error) {
	return f.memberships, f.err
}

func errBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v (%s)", err, rec.Body.String())
	}
	return body["error"]
}

func signedIn(r *http.Request) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{ID: "u1", Name: "Ada"})
}

func TestRequireOrg_Unauthenticated(t *testing.T) {
	g := New(fakeMembers{}, zap.NewNop())
	h := g.RequireOrg(authz.RoleMember)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"orgId":"o1"}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := errBody(t, rec); got != "please sign in" {
		t.Errorf("error = %q", got)
	}
}

func TestRequireOrg_AuthBeforeOrgContext(t *testing.T) {
	// A request missing both a session and an org id fails on auth first.
	g := New(fakeMembers{}, zap.NewNop())
	h := g.RequireOrg(authz.RoleMember)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{}`)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireOrg_MissingOrgContext(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o1", Role: authz.RoleOwner}}}, zap.NewNop())
	h := g.RequireOrg(authz.RoleMember)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached")
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"x"}`)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := errBody(t, rec); got != "organization context required" {
		t.Errorf("error = %q", got)
	}
}

func TestRequireOrg_NotMember(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "other", Role: authz.RoleOwner}}}, zap.NewNop())
	h := g.RequireOrg(authz.RoleViewer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached")
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"orgId":"o1"}`)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := errBody(t, rec); got != "forbidden" {
		t.Errorf("error = %q", got)
	}
}

func TestRequireOrg_InsufficientRole(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o1", Role: authz.RoleViewer}}}, zap.NewNop())
	h := g.RequireOrg(authz.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached")
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"orgId":"o1"}`)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if got := errBody(t, rec); got != "forbidden" {
		t.Errorf("error = %q", got)
	}
}

func TestRequireOrg_NotMemberAndInsufficientLookAlike(t *testing.T) {
	// Membership and role failures must be indistinguishable on the wire.
	run := func(memberships []authz.Membership) *httptest.ResponseRecorder {
		g := New(fakeMembers{memberships: memberships}, zap.NewNop())
		h := g.RequireOrg(authz.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		rec := httptest.NewRecorder()
		req := signedIn(httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"orgId":"o1"}`)))
		h.ServeHTTP(rec, req)
		return rec
	}

	notMember := run(nil)
	lowRole := run([]authz.Membership{{OrgID: "o1", Role: authz.RoleViewer}})

	if notMember.Code != lowRole.Code {
		t.Errorf("status differs: %d vs %d", notMember.Code, lowRole.Code)
	}
	if notMember.Body.String() != lowRole.Body.String() {
		t.Errorf("body differs: %q vs %q", notMember.Body.String(), lowRole.Body.String())
	}
}

func TestRequireOrg_Success(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o1", Role: authz.RoleAdmin}}}, zap.NewNop())

	var got Context
	h := g.RequireOrg(authz.RoleMember)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromRequest(r)
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"orgId":"o1","title":"x"}`)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.CallerID != "u1" || got.OrgID != "o1" || got.Role != authz.RoleAdmin {
		t.Errorf("context = %+v", got)
	}
}

func TestRequireOrg_BodyIsReplayable(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o1", Role: authz.RoleMember}}}, zap.NewNop())

	var title string
	h := g.RequireOrg(authz.RoleMember)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("handler could not decode body: %v", err)
		}
		title = in.Title
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"orgId":"o1","title":"replay me"}`)))
	h.ServeHTTP(rec, req)

	if title != "replay me" {
		t.Errorf("title = %q, body was consumed by the guard", title)
	}
}

func TestRequireOrg_EnvelopeOrg(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o1", Role: authz.RoleMember}}}, zap.NewNop())

	var got Context
	h := g.RequireOrg(authz.RoleMember)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromRequest(r)
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"json":{"orgId":"o1"}}`)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.OrgID != "o1" {
		t.Errorf("org = %q", got.OrgID)
	}
}

func TestRequireOrg_QueryParamOrg(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o1", Role: authz.RoleViewer}}}, zap.NewNop())

	var got Context
	h := g.RequireOrg(authz.RoleViewer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromRequest(r)
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodGet, "/tasks?orgId=o1", nil))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.OrgID != "o1" {
		t.Errorf("org = %q", got.OrgID)
	}
}

func TestRequireOrg_BoundSessionFallback(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o9", Role: authz.RoleMember}}}, zap.NewNop())

	var got Context
	h := g.RequireOrg(authz.RoleMember)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromRequest(r)
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodGet, "/tasks", nil))
	req = auth.WithTestBoundOrg(req, "o9")
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.OrgID != "o9" {
		t.Errorf("org = %q", got.OrgID)
	}
}

func TestRequireOrg_PayloadWinsOverBoundSession(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{
		{OrgID: "payload-org", Role: authz.RoleMember},
		{OrgID: "bound-org", Role: authz.RoleOwner},
	}}, zap.NewNop())

	var got Context
	h := g.RequireOrg(authz.RoleMember)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromRequest(r)
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"orgId":"payload-org"}`)))
	req = auth.WithTestBoundOrg(req, "bound-org")
	h.ServeHTTP(rec, req)

	if got.OrgID != "payload-org" {
		t.Errorf("org = %q, want payload-org", got.OrgID)
	}
}

func TestRequireOrg_StoreError(t *testing.T) {
	g := New(fakeMembers{err: errors.New("mongo down")}, zap.NewNop())
	h := g.RequireOrg(authz.RoleMember)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached")
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"orgId":"o1"}`)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRequireOrg_NonJSONBodyIgnored(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o1", Role: authz.RoleMember}}}, zap.NewNop())

	h := g.RequireOrg(authz.RoleMember)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if string(b) != "not json at all" {
			t.Errorf("body = %q", b)
		}
	}))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/upload?orgId=o1", strings.NewReader("not json at all")))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRequireOrg_RouteParamOrg(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o1", Role: authz.RoleAdmin}}}, zap.NewNop())

	var got Context
	r := chi.NewRouter()
	r.Route("/orgs/{orgID}", func(r chi.Router) {
		r.Use(g.RequireOrg(authz.RoleViewer))
		r.Get("/members", func(w http.ResponseWriter, r *http.Request) {
			got, _ = FromRequest(r)
		})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, signedIn(httptest.NewRequest(http.MethodGet, "/orgs/o1/members", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got.OrgID != "o1" || got.Role != authz.RoleAdmin {
		t.Errorf("context = %+v", got)
	}
}

func TestRequireOrg_RouteParamWinsOverBody(t *testing.T) {
	// The path names the resource; a mismatched body org id cannot
	// redirect the check to another org.
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o2", Role: authz.RoleOwner}}}, zap.NewNop())

	r := chi.NewRouter()
	r.Route("/orgs/{orgID}", func(r chi.Router) {
		r.Use(g.RequireOrg(authz.RoleViewer))
		r.Post("/projects", func(w http.ResponseWriter, r *http.Request) {})
	})

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/orgs/o1/projects", strings.NewReader(`{"orgId":"o2"}`)))
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (checked against path org)", rec.Code)
	}
}

func TestAuthorize_Direct(t *testing.T) {
	g := New(fakeMembers{memberships: []authz.Membership{{OrgID: "o1", Role: authz.RoleAdmin}}}, zap.NewNop())

	req := signedIn(httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"orgId":"o1","title":"t"}`)))
	c, err := g.Authorize(req, authz.RoleMember)
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if c.CallerID != "u1" || c.OrgID != "o1" || c.Role != authz.RoleAdmin {
		t.Errorf("context = %+v", c)
	}

	// The body was buffered for resolution but must still decode.
	var body map[string]string
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		t.Fatalf("body not replayable: %v", err)
	}
	if body["title"] != "t" {
		t.Errorf("body = %v", body)
	}

	_, err = g.Authorize(signedIn(httptest.NewRequest(http.MethodGet, "/x?orgId=o1", nil)), authz.RoleOwner)
	if !errors.Is(err, authz.ErrInsufficientRole) {
		t.Errorf("err = %v, want ErrInsufficientRole", err)
	}
	_, err = g.Authorize(httptest.NewRequest(http.MethodGet, "/x?orgId=o1", nil), authz.RoleViewer)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("err = %v, want ErrUnauthenticated", err)
	}
}
