// internal/app/features/activity/routes.go
package activity

import (
	"github.com/go-chi/chi/v5"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
)

// Routes mounts the feed endpoint, expected under "/orgs/{orgID}/activity".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleViewer))
		pr.Get("/", h.ServeFeed)
	})

	return r
}
