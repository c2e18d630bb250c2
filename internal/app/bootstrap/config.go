// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for FlowDesk.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: FLOWDESK_MONGO_URI, FLOWDESK_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "flowdesk", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "flowdesk_session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Invitations
	{Name: "invite_expiry", Default: "168h", Desc: "Invitation token lifetime (e.g., 72h, 168h)"},

	// Realtime event bridge
	{Name: "redis_url", Default: "", Desc: "Redis URL for cross-instance event fan-out (blank disables)"},
	{Name: "redis_channel", Default: "flowdesk:events", Desc: "Redis pub/sub channel for realtime events"},

	// Activity recording
	{Name: "audit_log_board", Default: "all", Desc: "Board event recording: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_org", Default: "all", Desc: "Org event recording: 'all' (db+log), 'db', 'log', or 'off'"},

	// Handler timeouts (blank keeps defaults)
	{Name: "timeout_ping", Default: "", Desc: "Health check timeout (e.g., 2s)"},
	{Name: "timeout_short", Default: "", Desc: "Single-document operation timeout (e.g., 5s)"},
	{Name: "timeout_medium", Default: "", Desc: "List and moderate write timeout (e.g., 10s)"},
	{Name: "timeout_long", Default: "", Desc: "Multi-collection write timeout (e.g., 30s)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, FLOWDESK_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "FLOWDESK", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		InviteExpiry: appValues.Duration("invite_expiry", 7*24*time.Hour),

		RedisURL:     appValues.String("redis_url"),
		RedisChannel: appValues.String("redis_channel"),

		AuditLogBoard: appValues.String("audit_log_board"),
		AuditLogOrg:   appValues.String("audit_log_org"),

		TimeoutPing:   appValues.Duration("timeout_ping", 0),
		TimeoutShort:  appValues.Duration("timeout_short", 0),
		TimeoutMedium: appValues.Duration("timeout_medium", 0),
		TimeoutLong:   appValues.Duration("timeout_long", 0),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// FlowDesk validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.InviteExpiry <= 0 {
		return fmt.Errorf("invite_expiry must be positive, got %s", appCfg.InviteExpiry)
	}
	if appCfg.RedisURL != "" && appCfg.RedisChannel == "" {
		return fmt.Errorf("redis_channel must be set when redis_url is configured")
	}
	return nil
}
