// internal/app/features/invitations/routes.go
package invitations

import (
	"github.com/go-chi/chi/v5"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
)

// OrgRoutes mounts the admin-side endpoints, expected under
// "/orgs/{orgID}/invitations".
func OrgRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleAdmin))
		pr.Post("/", h.HandleCreate)
		pr.Get("/", h.ServeList)
		pr.Delete("/{inviteID}", h.HandleRevoke)
	})

	return r
}

// AcceptRoutes mounts the invitee-side endpoint, expected under
// "/invitations". The caller needs a session but no org membership yet.
func AcceptRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Sessions.RequireSignedIn)
		pr.Post("/accept", h.HandleAccept)
	})

	return r
}
