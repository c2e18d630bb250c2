// internal/app/features/tasks/routes.go
package tasks

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
)

func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, name))
}

// ProjectRoutes mounts creation and the flat listing, expected under
// "/orgs/{orgID}/projects/{projectID}/tasks".
func ProjectRoutes(h *Handler) chi.Router {
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

// BoardRoutes mounts the grouped board query, expected under
// "/orgs/{orgID}/projects/{projectID}/board".
func BoardRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleViewer))
		pr.Get("/", h.ServeBoard)
	})

	return r
}

// Routes mounts the item endpoints, expected under "/orgs/{orgID}/tasks".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/{taskID}", func(ir chi.Router) {
		ir.Group(func(pr chi.Router) {
			pr.Use(h.Guard.RequireOrg(authz.RoleViewer))
			pr.Get("/", h.ServeView)
		})
		ir.Group(func(pr chi.Router) {
			pr.Use(h.Guard.RequireOrg(authz.RoleMember))
			pr.Patch("/", h.HandleUpdate)
			pr.Delete("/", h.HandleDelete)
			pr.Post("/move", h.HandleMove)
			pr.Post("/assign", h.HandleAssign)
			pr.Delete("/assign", h.HandleUnassign)
		})
	})

	return r
}
