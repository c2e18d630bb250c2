// internal/domain/models/orgmember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrgMember is the authoritative join between users and organizations.
// Exactly one document per (org_id, user_id); role is an uppercase token
// from the authz package (OWNER | ADMIN | MEMBER | VIEWER).
type OrgMember struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrgID     primitive.ObjectID  `bson:"org_id" json:"org_id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Role      string              `bson:"role" json:"role"`
	InvitedBy *primitive.ObjectID `bson:"invited_by,omitempty" json:"invited_by,omitempty"`
	JoinedAt  time.Time           `bson:"joined_at" json:"joined_at"`
}
