// internal/app/system/guard/guard.go

// Package guard provides the org-scoped authorization middleware. It runs
// after the session middleware and performs, in order: authentication
// check, tenant resolution from the request payload, membership lookup,
// and role authorization. Handlers behind it read the verified caller,
// org, and role from the request context via FromRequest.
//
// Resource-specific checks that need database lookups (for example
// "may this member delete that comment") run inside handlers, after
// the guard has established org context.
package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/authz"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
	"github.com/flowdesk/flowdesk/internal/app/system/tenant"
)

// maxPayloadBytes bounds how much of a request body the guard will buffer
// while looking for an org id. Requests larger than this still pass
// through; only the org extraction sees the truncated prefix.
const maxPayloadBytes = 1 << 20

// Context is the verified authorization context the guard attaches to
// requests that pass all checks.
type Context struct {
	CallerID string
	OrgID    string
	Role     authz.Role
}

type ctxKey struct{}

// FromRequest returns the authorization context set by RequireOrg.
func FromRequest(r *http.Request) (Context, bool) {
	c, ok := r.Context().Value(ctxKey{}).(Context)
	return c, ok
}

// WithTestContext injects an authorization context, bypassing the
// middleware. For handler tests only.
func WithTestContext(r *http.Request, c Context) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, c))
}

// MembershipSource loads the caller's org memberships. Implemented by
// the org_members store.
type MembershipSource interface {
	ListMemberships(ctx context.Context, userID string) ([]authz.Membership, error)
}

// ErrUnauthenticated is returned by Authorize when the request carries
// no session user.
var ErrUnauthenticated = errors.New("not signed in")

// Guard builds org-scoped authorization middleware.
type Guard struct {
	members MembershipSource
	log     *zap.Logger
}

func New(members MembershipSource, logger *zap.Logger) *Guard {
	return &Guard{members: members, log: logger}
}

// RequireOrg returns middleware that admits only callers who are signed
// in, carry a resolvable org id, and hold at least min in that org.
// Pass min == "" to require membership of any role.
//
// The checks always run in the same order, so a request missing several
// prerequisites is reported by the first failing one: authentication,
// then org context, then membership, then role. Membership and role
// failures produce the same response body; only the server log
// distinguishes them, so probing cannot reveal whether an org exists.
func (g *Guard) RequireOrg(min authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := g.Authorize(r, min)
			if err != nil {
				switch {
				case errors.Is(err, ErrUnauthenticated):
					respond.Error(w, http.StatusUnauthorized, "please sign in")
				case errors.Is(err, tenant.ErrMissingOrgContext):
					respond.Error(w, http.StatusBadRequest, "organization context required")
				case errors.Is(err, authz.ErrNotMember), errors.Is(err, authz.ErrInsufficientRole):
					g.log.Warn("org access denied", zap.Error(err))
					respond.Error(w, http.StatusForbidden, "forbidden")
				default:
					g.log.Error("authorization failed", zap.Error(err))
					respond.Error(w, http.StatusInternalServerError, "internal error")
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, c)))
		})
	}
}

// Authorize runs the full check chain directly, for callers outside the
// middleware path. The request body, when present, is buffered and
// restored so the caller can still decode it. Returned errors wrap
// ErrUnauthenticated, tenant.ErrMissingOrgContext, authz.ErrNotMember,
// or authz.ErrInsufficientRole.
func (g *Guard) Authorize(r *http.Request, min authz.Role) (Context, error) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return Context{}, ErrUnauthenticated
	}

	payload, restore := extractPayload(r)
	if restore != nil {
		r.Body = restore
	}

	orgID, err := tenant.Resolve(payload, auth.BoundOrg(r))
	if err != nil {
		return Context{}, err
	}

	memberships, err := g.members.ListMemberships(r.Context(), user.ID)
	if err != nil {
		return Context{}, fmt.Errorf("membership lookup for %s in %s: %w", user.ID, orgID, err)
	}

	m, err := authz.Authorize(memberships, orgID, min)
	if err != nil {
		return Context{}, fmt.Errorf("user %s in org %s (need %s): %w", user.ID, orgID, min, err)
	}

	return Context{CallerID: user.ID, OrgID: orgID, Role: m.Role}, nil
}

// extractPayload gathers the fields the tenant resolver inspects. A
// chi route param {orgID} names the resource itself and wins over
// everything; query parameters stand in for top-level fields, which
// lets GET requests carry an org id without a body. For requests with
// a JSON body the body is buffered and a replacement reader is
// returned so the handler can still decode it.
func extractPayload(r *http.Request) (map[string]any, io.ReadCloser) {
	payload := map[string]any{}
	if v := chi.URLParam(r, "orgID"); v != "" {
		payload[tenant.FieldOrgID] = v
	}
	if v := r.URL.Query().Get(tenant.FieldOrgID); v != "" {
		if _, exists := payload[tenant.FieldOrgID]; !exists {
			payload[tenant.FieldOrgID] = v
		}
	}

	if r.Body == nil || r.Body == http.NoBody {
		return payload, nil
	}

	buf, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		return payload, io.NopCloser(bytes.NewReader(buf))
	}
	restore := io.NopCloser(io.MultiReader(bytes.NewReader(buf), r.Body))

	var body map[string]any
	if json.Unmarshal(buf, &body) == nil {
		for k, v := range body {
			// Query parameters win over body fields of the same name.
			if _, exists := payload[k]; !exists {
				payload[k] = v
			}
		}
	}
	return payload, restore
}
