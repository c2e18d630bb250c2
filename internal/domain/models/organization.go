// internal/domain/models/organization.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan tiers. The plan is informational in this service; billing and
// checkout live outside this repository.
const (
	PlanFree = "FREE"
	PlanPro  = "PRO"
	PlanTeam = "TEAM"
)

// Organization is the top-level tenancy boundary. All workspace, project,
// and task data is isolated by org_id.
type Organization struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameCI    string             `bson:"name_ci" json:"-"`
	Slug      string             `bson:"slug" json:"slug"` // globally unique
	LogoURL   string             `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	Plan      string             `bson:"plan" json:"plan"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
