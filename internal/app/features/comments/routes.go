// internal/app/features/comments/routes.go
package comments

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
)

func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, name))
}

// Routes mounts the thread endpoints, expected under
// "/orgs/{orgID}/tasks/{taskID}/comments".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleViewer))
		pr.Get("/", h.ServeList)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleMember))
		pr.Post("/", h.HandleCreate)
		pr.Patch("/{commentID}", h.HandleUpdate)
		pr.Delete("/{commentID}", h.HandleDelete)
	})

	return r
}
