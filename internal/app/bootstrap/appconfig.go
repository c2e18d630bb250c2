// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, CORS, and request body limits. AppConfig
// is everything specific to FlowDesk itself.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the pool

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: flowdesk_session)
	SessionDomain string // Cookie domain (blank means current host)

	// Invitation settings
	InviteExpiry time.Duration // How long an invitation token stays redeemable

	// Redis event bridge (blank URL disables it; single-instance
	// deployments work fine on the in-process hub alone)
	RedisURL     string // e.g., redis://localhost:6379/0
	RedisChannel string // Pub/sub channel carrying realtime events

	// Activity recording: "all" (db+log), "db", "log", or "off"
	AuditLogBoard string // Task and comment actions
	AuditLogOrg   string // Project, member, and invitation actions

	// Handler timeout overrides (zero keeps the built-in default)
	TimeoutPing   time.Duration
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
