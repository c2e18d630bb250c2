// internal/app/features/organizations/handler.go
package organizations

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/auditlog"
	sessionauth "github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
)

// Handler is the feature-level entry point for organizations.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Sessions *sessionauth.SessionManager
	Guard    *guard.Guard
	Audit    *auditlog.Logger
}

// NewHandler constructs an organizations handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, sessions *sessionauth.SessionManager, g *guard.Guard, audit *auditlog.Logger) *Handler {
	return &Handler{
		DB:       db,
		Log:      logger,
		Sessions: sessions,
		Guard:    g,
		Audit:    audit,
	}
}
