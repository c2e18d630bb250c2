// internal/app/features/invitations/handler.go
package invitations

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/flowdesk/flowdesk/internal/app/system/auditlog"
	sessionauth "github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
)

// DefaultInviteTTL is used when bootstrap does not configure one.
const DefaultInviteTTL = 7 * 24 * time.Hour

// Handler issues, lists, revokes, and redeems organization invitations.
// Email delivery is out of scope; tokens travel back to the inviter.
type Handler struct {
	DB        *mongo.Database
	Log       *zap.Logger
	Sessions  *sessionauth.SessionManager
	Guard     *guard.Guard
	Audit     *auditlog.Logger
	Hub       realtime.Publisher
	InviteTTL time.Duration
}

// NewHandler constructs an invitations handler. ttl <= 0 falls back to
// DefaultInviteTTL.
func NewHandler(db *mongo.Database, logger *zap.Logger, sessions *sessionauth.SessionManager, g *guard.Guard, audit *auditlog.Logger, hub realtime.Publisher, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	return &Handler{
		DB:        db,
		Log:       logger,
		Sessions:  sessions,
		Guard:     g,
		Audit:     audit,
		Hub:       hub,
		InviteTTL: ttl,
	}
}
