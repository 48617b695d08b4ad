// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	loginstore "github.com/dalemusser/bubblemap/internal/app/store/logins"
	userstore "github.com/dalemusser/bubblemap/internal/app/store/users"
	"github.com/dalemusser/bubblemap/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and verifies the connection with a ping.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	// ConnectDB is the first hook that talks to MongoDB.
	applyTimeouts(appCfg)

	ctx, cancel := context.WithTimeout(ctx, timeouts.Connect())
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the indexes the stores rely on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := userstore.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		logger.Error("ensure user indexes failed", zap.Error(err))
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	if err := loginstore.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		logger.Error("ensure login record indexes failed", zap.Error(err))
		return fmt.Errorf("ensure login record indexes: %w", err)
	}
	return nil
}

// mongoPinger adapts a client to the health feature's Pinger.
type mongoPinger struct {
	c *mongo.Client
}

func (p mongoPinger) Ping(ctx context.Context) error {
	return p.c.Ping(ctx, readpref.Primary())
}
