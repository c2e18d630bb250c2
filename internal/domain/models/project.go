// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project status values.
const (
	ProjectActive   = "ACTIVE"
	ProjectArchived = "ARCHIVED"
	ProjectDeleted  = "DELETED"
)

// Project owns a kanban board of tasks. It belongs to exactly one
// workspace and carries a redundant org_id so task queries and
// authorization checks never need a join.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkspaceID primitive.ObjectID `bson:"workspace_id" json:"workspace_id"`
	OrgID       primitive.ObjectID `bson:"org_id" json:"org_id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Slug        string             `bson:"slug" json:"slug"` // unique per org
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Icon        string             `bson:"icon,omitempty" json:"icon,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
