// internal/testutil/http.go

package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/authz"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
)

// TestUser describes an authenticated caller for handler tests.
type TestUser struct {
	ID    primitive.ObjectID
	Name  string
	Email string
}

func NewTestUser(name, email string) TestUser {
	return TestUser{ID: primitive.NewObjectID(), Name: name, Email: email}
}

// WithUser injects the user into the request context the way the session
// middleware would.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
	})
}

// WithOrgContext injects both the session user and a verified guard
// context, as if the request had passed RequireOrg.
func WithOrgContext(r *http.Request, user TestUser, orgID primitive.ObjectID, role authz.Role) *http.Request {
	r = WithUser(r, user)
	return guard.WithTestContext(r, guard.Context{
		CallerID: user.ID.Hex(),
		OrgID:    orgID.Hex(),
		Role:     role,
	})
}

// NewJSONRequest builds a request with a JSON body and content type.
func NewJSONRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// DecodeJSON unmarshals a recorded response body into v.
func DecodeJSON(t interface{ Fatalf(string, ...any) }, rec *httptest.ResponseRecorder, v any) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("response body not JSON: %v (%s)", err, rec.Body.String())
	}
}
