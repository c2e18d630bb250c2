// internal/app/features/workspaces/handler.go
package workspaces

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/guard"
)

// Handler serves workspace CRUD inside one organization.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	Guard *guard.Guard
}

// NewHandler constructs a workspaces handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, g *guard.Guard) *Handler {
	return &Handler{DB: db, Log: logger, Guard: g}
}
