// internal/domain/models/activity.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityEntry records who did what inside an organization. Entries are
// append-only; task_id and project_id are kept when the referenced entity
// is deleted so history stays readable.
type ActivityEntry struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrgID     primitive.ObjectID  `bson:"org_id" json:"org_id"`
	TaskID    *primitive.ObjectID `bson:"task_id,omitempty" json:"task_id,omitempty"`
	ProjectID *primitive.ObjectID `bson:"project_id,omitempty" json:"project_id,omitempty"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Action    string              `bson:"action" json:"action"` // e.g. "task.moved", "member.role_changed"
	Details   map[string]string   `bson:"details,omitempty" json:"details,omitempty"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
