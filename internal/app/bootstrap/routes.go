// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	activityfeature "github.com/flowdesk/flowdesk/internal/app/features/activity"
	authfeature "github.com/flowdesk/flowdesk/internal/app/features/auth"
	commentsfeature "github.com/flowdesk/flowdesk/internal/app/features/comments"
	healthfeature "github.com/flowdesk/flowdesk/internal/app/features/health"
	invitationsfeature "github.com/flowdesk/flowdesk/internal/app/features/invitations"
	membersfeature "github.com/flowdesk/flowdesk/internal/app/features/members"
	notificationsfeature "github.com/flowdesk/flowdesk/internal/app/features/notifications"
	organizationsfeature "github.com/flowdesk/flowdesk/internal/app/features/organizations"
	projectsfeature "github.com/flowdesk/flowdesk/internal/app/features/projects"
	streamfeature "github.com/flowdesk/flowdesk/internal/app/features/stream"
	tasksfeature "github.com/flowdesk/flowdesk/internal/app/features/tasks"
	workspacesfeature "github.com/flowdesk/flowdesk/internal/app/features/workspaces"
	activitystore "github.com/flowdesk/flowdesk/internal/app/store/activity"
	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	userstore "github.com/flowdesk/flowdesk/internal/app/store/users"
	"github.com/flowdesk/flowdesk/internal/app/system/auditlog"
	"github.com/flowdesk/flowdesk/internal/app/system/auth"
	"github.com/flowdesk/flowdesk/internal/app/system/guard"
	"github.com/flowdesk/flowdesk/internal/app/system/realtime"
)

// bridgeCancel stops the redis subscribe loop; set in BuildHandler,
// called from Shutdown.
var bridgeCancel context.CancelFunc

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. It builds the shared plumbing
// (sessions, guard, hub, activity recorder) and mounts every feature
// router of the JSON API:
//
//	/auth                      register, login, logout, me
//	/orgs                      organization CRUD
//	/orgs/{orgID}/members      roster and role management
//	/orgs/{orgID}/invitations  admin-side invitations
//	/orgs/{orgID}/workspaces   workspaces and their projects
//	/orgs/{orgID}/projects     project lifecycle, tasks, board
//	/orgs/{orgID}/tasks        task detail, move, assign, comments
//	/orgs/{orgID}/activity     the org feed
//	/invitations/accept        invitee-side redemption
//	/notifications             the caller's inbox
//	/stream                    SSE event feed
//	/health                    liveness probe
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so profile updates and
	// deleted accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	g := guard.New(orgmemberstore.New(db), logger)
	audit := auditlog.New(activitystore.New(db), logger, auditlog.Config{
		Board: appCfg.AuditLogBoard,
		Org:   appCfg.AuditLogOrg,
	})

	// Events always fan out through the local hub. With Redis
	// configured, publishes route through the bridge instead so every
	// instance's hub sees them.
	hub := realtime.NewHub(logger)
	var publisher realtime.Publisher = hub
	if deps.Redis != nil {
		bridge := realtime.NewBridge(hub, deps.Redis, appCfg.RedisChannel, logger)
		var ctx context.Context
		ctx, bridgeCancel = context.WithCancel(context.Background())
		go bridge.Run(ctx)
		publisher = bridge
	}

	authHandler := authfeature.NewHandler(db, logger, sessionMgr)
	orgHandler := organizationsfeature.NewHandler(db, logger, sessionMgr, g, audit)
	membersHandler := membersfeature.NewHandler(db, logger, g, audit)
	invitationsHandler := invitationsfeature.NewHandler(db, logger, sessionMgr, g, audit, publisher, appCfg.InviteExpiry)
	workspacesHandler := workspacesfeature.NewHandler(db, logger, g)
	projectsHandler := projectsfeature.NewHandler(db, logger, g, audit)
	tasksHandler := tasksfeature.NewHandler(db, logger, g, audit, publisher)
	commentsHandler := commentsfeature.NewHandler(db, logger, g, audit, publisher)
	notificationsHandler := notificationsfeature.NewHandler(db, logger, sessionMgr)
	activityHandler := activityfeature.NewHandler(db, logger, g)
	streamHandler := streamfeature.NewHandler(logger, g, hub)
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged
	// in, making the current user available via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Mount("/auth", authfeature.Routes(authHandler))

	r.Mount("/orgs", organizationsfeature.Routes(orgHandler))
	r.Route("/orgs/{orgID}", func(or chi.Router) {
		or.Mount("/members", membersfeature.Routes(membersHandler))
		or.Mount("/invitations", invitationsfeature.OrgRoutes(invitationsHandler))
		or.Mount("/workspaces", workspacesfeature.Routes(workspacesHandler))
		or.Mount("/workspaces/{workspaceID}/projects", projectsfeature.WorkspaceRoutes(projectsHandler))
		or.Mount("/projects", projectsfeature.Routes(projectsHandler))
		or.Mount("/projects/{projectID}/tasks", tasksfeature.ProjectRoutes(tasksHandler))
		or.Mount("/projects/{projectID}/board", tasksfeature.BoardRoutes(tasksHandler))
		or.Mount("/tasks", tasksfeature.Routes(tasksHandler))
		or.Mount("/tasks/{taskID}/comments", commentsfeature.Routes(commentsHandler))
		or.Mount("/activity", activityfeature.Routes(activityHandler))
	})

	r.Mount("/invitations", invitationsfeature.AcceptRoutes(invitationsHandler))
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))
	r.Mount("/stream", streamfeature.Routes(streamHandler))

	return r, nil
}
