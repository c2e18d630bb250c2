// internal/app/features/notifications/routes.go
package notifications

import "github.com/go-chi/chi/v5"

// Routes mounts the inbox endpoints, expected under "/notifications".
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(h.Sessions.RequireSignedIn)
		pr.Get("/", h.ServeList)
		pr.Post("/{notificationID}/read", h.HandleMarkRead)
		pr.Post("/read-all", h.HandleMarkAllRead)
	})

	return r
}
