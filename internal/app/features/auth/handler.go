// internal/app/features/auth/handler.go
package auth

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	sessionauth "github.com/flowdesk/flowdesk/internal/app/system/auth"
)

// Handler is the feature-level entry point for authentication.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Sessions *sessionauth.SessionManager
}

// NewHandler constructs an auth handler bound to a DB, logger, and
// session manager.
func NewHandler(db *mongo.Database, logger *zap.Logger, sessions *sessionauth.SessionManager) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Sessions: sessions,
	}
}
