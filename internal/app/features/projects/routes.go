// internal/app/features/projects/routes.go
package projects

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
)

func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, name))
}

// WorkspaceRoutes mounts creation and listing, expected under
// "/orgs/{orgID}/workspaces/{workspaceID}/projects".
func WorkspaceRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleViewer))
		pr.Get("/", h.ServeList)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleMember))
		pr.Post("/", h.HandleCreate)
	})

	return r
}

// Routes mounts the item endpoints, expected under "/orgs/{orgID}/projects".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/{projectID}", func(ir chi.Router) {
		ir.Group(func(pr chi.Router) {
			pr.Use(h.Guard.RequireOrg(authz.RoleViewer))
			pr.Get("/", h.ServeView)
		})
		ir.Group(func(pr chi.Router) {
			pr.Use(h.Guard.RequireOrg(authz.RoleMember))
			pr.Patch("/", h.HandleUpdate)
		})
		ir.Group(func(pr chi.Router) {
			pr.Use(h.Guard.RequireOrg(authz.RoleAdmin))
			pr.Post("/archive", h.HandleArchive)
			pr.Post("/restore", h.HandleRestore)
			pr.Delete("/", h.HandleDelete)
		})
	})

	return r
}
