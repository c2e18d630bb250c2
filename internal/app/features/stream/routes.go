// internal/app/features/stream/routes.go
package stream

import (
	"github.com/go-chi/chi/v5"

	"github.com/flowdesk/flowdesk/internal/app/system/authz"
)

// Routes mounts the SSE endpoint. The organization comes from the
// orgId query parameter, so this mounts at the API root rather than
// under /orgs.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Guard.RequireOrg(authz.RoleViewer))
		pr.Get("/", h.ServeStream)
	})

	return r
}
