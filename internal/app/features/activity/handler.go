// internal/app/features/activity/handler.go
package activity

import (
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/guard"
)

// Handler serves the organization's activity feed.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	Guard *guard.Guard
}

// NewHandler constructs an activity handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, g *guard.Guard) *Handler {
	return &Handler{DB: db, Log: logger, Guard: g}
}
