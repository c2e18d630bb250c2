// internal/app/system/auth/auth_test.go

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func newTestSM(t *testing.T) *SessionManager {
	t.Helper()
	sm, err := NewSessionManager("0123456789abcdef0123456789abcdef", "flowdesk_test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return sm
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := NewSessionManager("", "s", "", false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestSignInThenLoad(t *testing.T) {
	sm := newTestSM(t)

	// Sign in and capture the Set-Cookie.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	u := &SessionUser{ID: "u1", Name: "Ada", Email: "ada@example.com"}
	if err := sm.SignIn(rec, req, u); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}

	// Replay the cookie through the middleware.
	var got *SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("no user in context after sign-in")
	}
	if got.ID != "u1" || got.Email != "ada@example.com" {
		t.Errorf("got %+v", got)
	}
}

func TestSignOutClearsSession(t *testing.T) {
	sm := newTestSM(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	if err := sm.SignIn(rec, req, &SessionUser{ID: "u1"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/signout", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	if err := sm.SignOut(rec2, req2); err != nil {
		t.Fatalf("SignOut: %v", err)
	}

	var found bool
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = CurrentUser(r)
	}))
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec2.Result().Cookies() {
		req3.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req3)

	if found {
		t.Error("user still present after sign-out")
	}
}

func TestRequireSignedIn_Unauthenticated(t *testing.T) {
	sm := newTestSM(t)

	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without a session")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not JSON: %v", err)
	}
	if body["error"] != "please sign in" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestRequireSignedIn_PassesWithUser(t *testing.T) {
	sm := newTestSM(t)

	var called bool
	h := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	req := WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil), &SessionUser{ID: "u1"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("handler not reached with user in context")
	}
}

type staticFetcher struct {
	user *SessionUser
	err  error
}

func (f staticFetcher) FetchUser(ctx context.Context, id string) (*SessionUser, error) {
	return f.user, f.err
}

func TestLoadSessionUser_FetcherRefresh(t *testing.T) {
	sm := newTestSM(t)
	sm.SetUserFetcher(staticFetcher{user: &SessionUser{ID: "u1", Name: "Renamed"}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	if err := sm.SignIn(rec, req, &SessionUser{ID: "u1", Name: "Stale"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	var got *SessionUser
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = CurrentUser(r)
	}))
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil || got.Name != "Renamed" {
		t.Errorf("got %+v, want refreshed name", got)
	}
}

func TestLoadSessionUser_FetcherGone(t *testing.T) {
	sm := newTestSM(t)
	sm.SetUserFetcher(staticFetcher{user: nil}) // account deleted

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	if err := sm.SignIn(rec, req, &SessionUser{ID: "u1"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	var found bool
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = CurrentUser(r)
	}))
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req2)

	if found {
		t.Error("deleted account still resolves to a user")
	}
}

func TestLoadSessionUser_FetcherError(t *testing.T) {
	sm := newTestSM(t)
	sm.SetUserFetcher(staticFetcher{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	if err := sm.SignIn(rec, req, &SessionUser{ID: "u1"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	var found bool
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = CurrentUser(r)
	}))
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req2)

	if found {
		t.Error("fetch error should fail closed")
	}
}

func TestBindOrg(t *testing.T) {
	sm := newTestSM(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	if err := sm.SignIn(rec, req, &SessionUser{ID: "u1"}); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	rec2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/orgs/o1/activate", nil)
	for _, c := range rec.Result().Cookies() {
		req2.AddCookie(c)
	}
	if err := sm.BindOrg(rec2, req2, "o1"); err != nil {
		t.Fatalf("BindOrg: %v", err)
	}

	var bound string
	h := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bound = BoundOrg(r)
	}))
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec2.Result().Cookies() {
		req3.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req3)

	if bound != "o1" {
		t.Errorf("bound org = %q, want o1", bound)
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
