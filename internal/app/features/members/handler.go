// internal/app/features/members/handler.go
package members

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/auditlog"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
)

// Handler serves the membership roster of a single organization.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	Guard *guard.Guard
	Audit *auditlog.Logger
}

// NewHandler constructs a members handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, g *guard.Guard, audit *auditlog.Logger) *Handler {
	return &Handler{DB: db, Log: logger, Guard: g, Audit: audit}
}
