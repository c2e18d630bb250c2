// internal/app/features/workspaces/routes.go
package workspaces

import (
	"github.com/go-chi/chi/v5"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
)

// Routes mounts the workspace endpoints, expected under
// "/orgs/{orgID}/workspaces".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleViewer))
		pr.Get("/", h.ServeList)
		pr.Get("/{workspaceID}", h.ServeView)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleAdmin))
		pr.Post("/", h.HandleCreate)
		pr.Patch("/{workspaceID}", h.HandleUpdate)
		pr.Delete("/{workspaceID}", h.HandleDelete)
	})

	return r
}
