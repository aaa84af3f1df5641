package app

import (
	"context"
	"fmt"
	"time"

	"paperbuilder/internal/cache"
	"paperbuilder/internal/config"
	"paperbuilder/internal/confirm"
	"paperbuilder/internal/idgen"
	"paperbuilder/internal/persist"
	"paperbuilder/internal/repository"
	"paperbuilder/internal/service"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// App is the wired paper editor shared by the server and the CLI
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Storage persist.Storage
	Editor  *service.Editor
	Gate    *confirm.Gate

	mongoClient *mongo.Client
	redisClient *redis.Client
}

// New connects the configured backends and loads the autosaved paper.
// Editor options are applied after the configured ones.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...service.EditorOption) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	ids, err := idgen.New(idgen.Scheme(cfg.IDScheme))
	if err != nil {
		return nil, err
	}

	if cfg.NeedsRedis() {
		a.redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := a.redisClient.Ping(pingCtx).Err(); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	switch cfg.Storage.Backend {
	case config.StorageFile:
		a.Storage = persist.NewFileStorage(cfg.Storage.File)
	case config.StorageMemory:
		a.Storage = persist.NewMemoryStorage()
	case config.StorageRedis:
		a.Storage = cache.NewPaperCache(a.redisClient, cfg.Storage.Key)
	case config.StorageMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.mongoClient = client
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := client.Ping(pingCtx, nil); err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		logger.Info("connected to mongo", zap.String("database", cfg.Mongo.Database))
		a.Storage = repository.NewPaperRepo(client.Database(cfg.Mongo.Database), cfg.Storage.Key)
	default:
		a.Close(ctx)
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	editorOpts := append([]service.EditorOption{
		service.WithLogger(logger),
		service.WithStrictImport(cfg.StrictImport),
	}, opts...)
	a.Editor = service.NewEditor(a.Storage, ids, editorOpts...)
	if err := a.Editor.Load(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	var store confirm.PendingStore = confirm.NewMemoryStore()
	if cfg.Confirm.Store == "redis" {
		store = cache.NewPendingCache(a.redisClient, cfg.Confirm.TTL)
	}
	a.Gate = confirm.NewGate(store, a.Editor, logger)

	logger.Info("paper editor ready",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("confirm_store", cfg.Confirm.Store),
		zap.String("id_scheme", cfg.IDScheme))
	return a, nil
}

// Close releases backend connections
func (a *App) Close(ctx context.Context) {
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.Logger.Warn("mongo disconnect failed", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.Logger.Warn("redis close failed", zap.Error(err))
		}
	}
}
