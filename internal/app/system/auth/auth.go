// internal/app/system/auth/auth.go

// Package auth manages cookie sessions and the current-user request
// context. Handlers never touch the cookie store directly; they go
// through the SessionManager and the CurrentUser / BoundOrg accessors.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/respond"
)

const (
	isAuthKey   = "is_authenticated"
	userIDKey   = "user_id"
	userNameKey = "user_name"
	userEmail   = "user_email"
	activeOrg   = "active_org"
)

// SessionUser is what we cache in the session and inject into r.Context().
// Org roles are deliberately absent: they are loaded per request from the
// org_members collection so role changes take effect immediately.
type SessionUser struct {
	ID    string
	Name  string
	Email string
}

// UserFetcher loads fresh user data for the id stored in the session.
// Returning (nil, nil) means the user no longer exists or is disabled;
// the session is then treated as signed out.
type UserFetcher interface {
	FetchUser(ctx context.Context, id string) (*SessionUser, error)
}

type ctxKey string

const (
	currentUserKey ctxKey = "currentUser"
	boundOrgKey    ctxKey = "boundOrg"
)

// CurrentUser returns the user from the request context and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// BoundOrg returns the org id bound to the session, if any. The tenant
// resolver uses it as the last extraction strategy.
func BoundOrg(r *http.Request) string {
	s, _ := r.Context().Value(boundOrgKey).(string)
	return s
}

// SessionManager owns the cookie store and the session middleware.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	log     *zap.Logger
}

// NewSessionManager builds a SessionManager with a signed cookie store.
// The secure flag controls Secure cookies and SameSite mode: None for
// production over HTTPS, Lax for local dev over http.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// SetUserFetcher makes LoadSessionUser re-fetch the user on each request
// so disabled accounts and profile changes take effect immediately.
// Without a fetcher the cached session values are used as-is.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// SignIn stores the user in the session cookie.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmail] = u.Email
	return sess.Save(r, w)
}

// SignOut clears the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// BindOrg records the caller's active organization in the session. The
// tenant resolver falls back to it when a payload carries no org id.
func (sm *SessionManager) BindOrg(w http.ResponseWriter, r *http.Request, orgID string) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[activeOrg] = orgID
	return sess.Save(r, w)
}

// LoadSessionUser injects the signed-in user (and any bound org) into the
// request context. It never rejects a request; gating is RequireSignedIn's
// job.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sm.store.Get(r, sm.name)

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				ID:    getString(sess, userIDKey),
				Name:  getString(sess, userNameKey),
				Email: getString(sess, userEmail),
			}
			if sm.fetcher != nil && u.ID != "" {
				fresh, err := sm.fetcher.FetchUser(r.Context(), u.ID)
				if err != nil {
					sm.log.Error("session user fetch failed", zap.Error(err), zap.String("user_id", u.ID))
					u = nil
				} else {
					u = fresh // nil when the account is gone or disabled
				}
			}
			if u != nil {
				r = withUser(r, u)
				if org := getString(sess, activeOrg); org != "" {
					r = r.WithContext(context.WithValue(r.Context(), boundOrgKey, org))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by
// LoadSessionUser). API callers get a plain 401; the message never names
// the resource that was requested.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			respond.Error(w, http.StatusUnauthorized, "please sign in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithTestUser injects a user into the request context, bypassing the
// session middleware. For handler tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// WithTestBoundOrg injects a bound org id into the request context.
// For tests of the tenant fallback path.
func WithTestBoundOrg(r *http.Request, orgID string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), boundOrgKey, orgID))
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
