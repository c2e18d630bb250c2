// internal/app/features/members/routes.go
package members

import (
	"github.com/go-chi/chi/v5"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
)

// Routes mounts the member endpoints, expected under
// "/orgs/{orgID}/members" so the guard can resolve the org from the path.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleViewer))
		pr.Get("/", h.ServeList)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleAdmin))
		pr.Patch("/{userID}/role", h.HandleChangeRole)
		pr.Delete("/{userID}", h.HandleRemove)
	})

	return r
}
