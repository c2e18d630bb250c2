// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifyTaskAssigned  = "TASK_ASSIGNED"
	NotifyTaskUpdated   = "TASK_UPDATED"
	NotifyCommentAdded  = "COMMENT_ADDED"
	NotifyInviteReceive = "INVITE_RECEIVED"
)

// Notification is a per-user inbox entry. Realtime delivery via the
// user's personal room is best-effort; the inbox is the durable record.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	OrgID     primitive.ObjectID `bson:"org_id" json:"org_id"`
	Type      string             `bson:"type" json:"type"`
	Payload   map[string]string  `bson:"payload,omitempty" json:"payload,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
