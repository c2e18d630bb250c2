// internal/app/features/comments/handler.go
package comments

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/auditlog"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// Handler serves task comment threads.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	Guard *guard.Guard
	Audit *auditlog.Logger
	Hub   realtime.Publisher
}

// NewHandler constructs a comments handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, g *guard.Guard, audit *auditlog.Logger, hub realtime.Publisher) *Handler {
	return &Handler{DB: db, Log: logger, Guard: g, Audit: audit, Hub: hub}
}

// publishComment fans the comment out to the org room, best effort.
func (h *Handler) publishComment(name string, c models.Comment) {
	if h.Hub == nil {
		return
	}
	payload, err := json.Marshal(c)
	if err != nil {
		h.Log.Warn("marshal comment event", zap.Error(err), zap.String("event", name))
		return
	}
	go h.Hub.Publish(realtime.Event{
		Room:    realtime.OrgRoom(c.OrgID.Hex()),
		Name:    name,
		Payload: payload,
	})
}
