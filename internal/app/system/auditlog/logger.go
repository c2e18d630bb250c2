// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	activitystore "github.com/flowdesk/flowdesk/internal/app/store/activity"
	"github.com/flowdesk/flowdesk/internal/domain/models"
)

// Config holds activity recording configuration.
type Config struct {
	// Board controls recording for board events (task and comment actions).
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Board string
	// Org controls recording for organization events (project, member, and
	// invitation actions). Same values as Board.
	Org string
}

// Logger records activity entries to both the org feed (via
// activitystore.Store) and structured logs (via zap).
type Logger struct {
	store  *activitystore.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new activity Logger.
func New(store *activitystore.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// getClientIP extracts the client IP from the request, preferring proxy
// headers over the socket address.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// boardActions are recorded under the Board config setting; everything
// else falls under Org.
func isBoardAction(action string) bool {
	return strings.HasPrefix(action, "task.") || strings.HasPrefix(action, "comment.")
}

func (l *Logger) logToZap(entry models.ActivityEntry, ip string) {
	fields := []zap.Field{
		zap.Bool("activity", true),
		zap.String("action", entry.Action),
		zap.String("org_id", entry.OrgID.Hex()),
		zap.String("user_id", entry.UserID.Hex()),
		zap.String("ip", ip),
	}
	if entry.TaskID != nil {
		fields = append(fields, zap.String("task_id", entry.TaskID.Hex()))
	}
	if entry.ProjectID != nil {
		fields = append(fields, zap.String("project_id", entry.ProjectID.Hex()))
	}
	for k, v := range entry.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}
	l.zapLog.Info("activity", fields...)
}

// Log records an activity entry based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil logger).
func (l *Logger) Log(ctx context.Context, r *http.Request, entry models.ActivityEntry) {
	if l == nil {
		return
	}

	setting := l.config.Org
	if isBoardAction(entry.Action) {
		setting = l.config.Board
	}
	if setting == "off" {
		return
	}

	ip := ""
	if r != nil {
		ip = getClientIP(r)
	}

	if setting == "all" || setting == "log" {
		l.logToZap(entry, ip)
	}
	if setting == "all" || setting == "db" || setting == "" {
		if err := l.store.Log(ctx, entry); err != nil {
			l.zapLog.Error("failed to store activity entry",
				zap.Error(err),
				zap.String("action", entry.Action),
			)
		}
	}
}

// --- Board events ---

func (l *Logger) TaskCreated(ctx context.Context, r *http.Request, orgID, userID, taskID, projectID primitive.ObjectID, title string) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, TaskID: &taskID, ProjectID: &projectID,
		Action:  activitystore.ActionTaskCreated,
		Details: map[string]string{"title": title},
	})
}

func (l *Logger) TaskUpdated(ctx context.Context, r *http.Request, orgID, userID, taskID primitive.ObjectID) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, TaskID: &taskID,
		Action: activitystore.ActionTaskUpdated,
	})
}

func (l *Logger) TaskMoved(ctx context.Context, r *http.Request, orgID, userID, taskID primitive.ObjectID, fromStatus, toStatus string) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, TaskID: &taskID,
		Action:  activitystore.ActionTaskMoved,
		Details: map[string]string{"from": fromStatus, "to": toStatus},
	})
}

func (l *Logger) TaskAssigned(ctx context.Context, r *http.Request, orgID, userID, taskID primitive.ObjectID, assignee *primitive.ObjectID) {
	details := map[string]string{}
	if assignee != nil {
		details["assignee_id"] = assignee.Hex()
	}
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, TaskID: &taskID,
		Action:  activitystore.ActionTaskAssigned,
		Details: details,
	})
}

func (l *Logger) TaskDeleted(ctx context.Context, r *http.Request, orgID, userID, taskID primitive.ObjectID, title string) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, TaskID: &taskID,
		Action:  activitystore.ActionTaskDeleted,
		Details: map[string]string{"title": title},
	})
}

func (l *Logger) CommentAdded(ctx context.Context, r *http.Request, orgID, userID, taskID primitive.ObjectID) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, TaskID: &taskID,
		Action: activitystore.ActionCommentAdded,
	})
}

func (l *Logger) CommentDeleted(ctx context.Context, r *http.Request, orgID, userID, taskID primitive.ObjectID) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, TaskID: &taskID,
		Action: activitystore.ActionCommentDeleted,
	})
}

// --- Organization events ---

func (l *Logger) ProjectCreated(ctx context.Context, r *http.Request, orgID, userID, projectID primitive.ObjectID, name string) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, ProjectID: &projectID,
		Action:  activitystore.ActionProjectCreated,
		Details: map[string]string{"name": name},
	})
}

func (l *Logger) ProjectUpdated(ctx context.Context, r *http.Request, orgID, userID, projectID primitive.ObjectID) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, ProjectID: &projectID,
		Action: activitystore.ActionProjectUpdated,
	})
}

func (l *Logger) ProjectArchived(ctx context.Context, r *http.Request, orgID, userID, projectID primitive.ObjectID) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, ProjectID: &projectID,
		Action: activitystore.ActionProjectArchived,
	})
}

func (l *Logger) ProjectDeleted(ctx context.Context, r *http.Request, orgID, userID, projectID primitive.ObjectID, name string) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID, ProjectID: &projectID,
		Action:  activitystore.ActionProjectDeleted,
		Details: map[string]string{"name": name},
	})
}

func (l *Logger) MemberJoined(ctx context.Context, r *http.Request, orgID, userID primitive.ObjectID, role string) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: userID,
		Action:  activitystore.ActionMemberJoined,
		Details: map[string]string{"role": role},
	})
}

// MemberRemoved records actorID removing memberID from the org.
func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, orgID, actorID, memberID primitive.ObjectID) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: actorID,
		Action:  activitystore.ActionMemberRemoved,
		Details: map[string]string{"member_id": memberID.Hex()},
	})
}

func (l *Logger) MemberRoleChanged(ctx context.Context, r *http.Request, orgID, actorID, memberID primitive.ObjectID, oldRole, newRole string) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: actorID,
		Action: activitystore.ActionMemberRoleChanged,
		Details: map[string]string{
			"member_id": memberID.Hex(),
			"old_role":  oldRole,
			"new_role":  newRole,
		},
	})
}

func (l *Logger) InviteSent(ctx context.Context, r *http.Request, orgID, actorID primitive.ObjectID, email, role string) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: actorID,
		Action:  activitystore.ActionInviteSent,
		Details: map[string]string{"email": email, "role": role},
	})
}

func (l *Logger) InviteRevoked(ctx context.Context, r *http.Request, orgID, actorID primitive.ObjectID, email string) {
	l.Log(ctx, r, models.ActivityEntry{
		OrgID: orgID, UserID: actorID,
		Action:  activitystore.ActionInviteRevoked,
		Details: map[string]string{"email": email},
	})
}
