// internal/app/features/notifications/handler.go
package notifications

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	sessionauth "github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/respond"
)

// Handler serves the caller's personal notification inbox. No org guard
// here; the inbox spans organizations.
type Handler struct {
	DB       *mongo.Database
	Log      *zap.Logger
	Sessions *sessionauth.SessionManager
}

// NewHandler constructs a notifications handler.
func NewHandler(db *mongo.Database, logger *zap.Logger, sessions *sessionauth.SessionManager) *Handler {
	return &Handler{DB: db, Log: logger, Sessions: sessions}
}

func callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	user, ok := sessionauth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "please sign in")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "please sign in")
		return primitive.NilObjectID, false
	}
	return id, true
}
