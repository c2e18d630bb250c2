// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	activitystore "github.com/flowdesk/flowdesk/internal/app/store/activity"
	commentstore "github.com/flowdesk/flowdesk/internal/app/store/comments"
	invitationstore "github.com/flowdesk/flowdesk/internal/app/store/invitations"
	notificationstore "github.com/flowdesk/flowdesk/internal/app/store/notifications"
	organizationstore "github.com/flowdesk/flowdesk/internal/app/store/organizations"
	orgmemberstore "github.com/flowdesk/flowdesk/internal/app/store/orgmembers"
	projectstore "github.com/flowdesk/flowdesk/internal/app/store/projects"
	taskstore "github.com/flowdesk/flowdesk/internal/app/store/tasks"
	userstore "github.com/flowdesk/flowdesk/internal/app/store/users"
	workspacestore "github.com/flowdesk/flowdesk/internal/app/store/workspaces"
)

// ConnectDB establishes the MongoDB connection and, when configured,
// the Redis client for the realtime bridge.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	if appCfg.RedisURL != "" {
		ropts, err := redis.ParseURL(appCfg.RedisURL)
		if err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("redis url: %w", err)
		}
		rc := redis.NewClient(ropts)
		if err := rc.Ping(ctx).Err(); err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("connected to Redis", zap.String("channel", appCfg.RedisChannel))
		deps.Redis = rc
	}

	return deps, nil
}

// EnsureSchema creates the indexes every store relies on: unique slugs
// and emails, the (org_id, user_id) membership constraint, invitation
// tokens, and the board ordering keys.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	for name, ensure := range map[string]func(context.Context) error{
		"users":         userstore.New(db).EnsureIndexes,
		"organizations": organizationstore.New(db).EnsureIndexes,
		"org_members":   orgmemberstore.New(db).EnsureIndexes,
		"invitations":   invitationstore.New(db).EnsureIndexes,
		"workspaces":    workspacestore.New(db).EnsureIndexes,
		"projects":      projectstore.New(db).EnsureIndexes,
		"tasks":         taskstore.New(db, logger).EnsureIndexes,
		"comments":      commentstore.New(db).EnsureIndexes,
		"notifications": notificationstore.New(db).EnsureIndexes,
		"activity":      activitystore.New(db).EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", name, err)
		}
	}

	logger.Info("database indexes ensured")
	return nil
}
