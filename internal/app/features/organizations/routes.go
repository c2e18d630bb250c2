// internal/app/features/organizations/routes.go
package organizations

import (
	"github.com/go-chi/chi/v5"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
)

// Routes mounts the organization endpoints (typically under "/orgs"
// from bootstrap). Creating and listing need only a session; everything
// keyed by {orgID} goes through the org guard.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Sessions.RequireSignedIn)
		pr.Post("/", h.HandleCreate)
		pr.Get("/", h.ServeList)
	})

	r.Route("/{orgID}", func(or chi.Router) {
		or.Group(func(pr chi.Router) {
			pr.Use(h.Guard.RequireOrg(authz.RoleViewer))
			pr.Get("/", h.ServeView)
		})
		or.Group(func(pr chi.Router) {
			pr.Use(h.Guard.RequireOrg(authz.RoleAdmin))
			pr.Patch("/", h.HandleUpdate)
		})
		or.Group(func(pr chi.Router) {
			pr.Use(h.Guard.RequireOrg(authz.RoleOwner))
			pr.Delete("/", h.HandleDelete)
		})
	})

	return r
}
