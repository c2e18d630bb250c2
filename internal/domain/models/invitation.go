// internal/domain/models/invitation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation grants a named email the right to join an organization with a
// preset role. Email delivery is out of scope for this service; the token
// is returned to the inviter, who distributes it out of band.
type Invitation struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrgID      primitive.ObjectID `bson:"org_id" json:"org_id"`
	Email      string             `bson:"email" json:"email"` // folded on write
	Role       string             `bson:"role" json:"role"`
	Token      string             `bson:"token" json:"token"` // uuid, unique
	InvitedBy  primitive.ObjectID `bson:"invited_by" json:"invited_by"`
	ExpiresAt  time.Time          `bson:"expires_at" json:"expires_at"`
	AcceptedAt *time.Time         `bson:"accepted_at,omitempty" json:"accepted_at,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// Accepted reports whether the invitation has already been redeemed.
func (i Invitation) Accepted() bool { return i.AcceptedAt != nil }

// Expired reports whether the invitation can no longer be redeemed.
func (i Invitation) Expired(now time.Time) bool { return now.After(i.ExpiresAt) }
