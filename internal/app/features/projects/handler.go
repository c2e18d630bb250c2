// internal/app/features/projects/handler.go
package projects

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/auditlog"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
)

// Handler serves project CRUD. Projects nest under workspaces for
// creation and listing; item operations address them directly.
type Handler struct {
	DB    *mongo.Database
	Log   *zap.Logger
	Guard *guard.Guard
	Audit *auditlog.Logger
}

// NewHandler constructs a projects handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, g *guard.Guard, audit *auditlog.Logger) *Handler {
	return &Handler{DB: db, Log: logger, Guard: g, Audit: audit}
}

// requestIDs resolves the guard org id plus one route param object id.
func requestIDs(w http.ResponseWriter, r *http.Request, gc guard.Context, param, what string) (primitive.ObjectID, primitive.ObjectID, bool) {
	orgID, err := primitive.ObjectIDFromHex(gc.OrgID)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "organization context required")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	id, err := objectIDParam(r, param)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid "+what+" id")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return orgID, id, true
}
