// Package container builds the process-wide infrastructure once at startup
// and hands it to the router explicitly. Nothing here is global.
package container

import (
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-identity/config"
	repo "github.com/oksasatya/go-user-identity/internal/domain/repository"
	"github.com/oksasatya/go-user-identity/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-user-identity/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-identity/pkg/helpers"
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Store  repo.IdentityStore
	PGPool *pgxpool.Pool

	JWT    *helpers.JWTManager
	Hasher *helpers.PasswordHasher

	// optional; nil when not configured or unreachable
	Redis     *redis.Client
	ES        *elasticsearch.Client
	RabbitPub *helpers.RabbitPublisher
}

// Build connects the configured store and the optional backends. Only the
// store is mandatory: redis, elasticsearch and rabbitmq failures are logged
// and the feature they back is switched off.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: logger,
		JWT:    helpers.NewJWTManager(cfg.SigningKey()),
		Hasher: helpers.NewPasswordHasher(cfg.BcryptCost),
	}

	switch cfg.Store {
	case "memory":
		logger.Warn("using in-memory identity store; data is lost on restart")
		c.Store = memory.NewIdentityStore()
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
			PingTimeout: cfg.DBPingTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		c.PGPool = pool
		c.Store = pginfra.NewIdentityStore(pool)
	default:
		return nil, fmt.Errorf("unknown APP_STORE %q", cfg.Store)
	}

	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			helpers.LogError(logger, "redis unavailable, profile cache disabled", err, logrus.Fields{"addr": cfg.RedisAddr})
			_ = rdb.Close()
		} else {
			c.Redis = rdb
		}
	}

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		helpers.LogError(logger, "elasticsearch client init failed, user directory disabled", err, nil)
	} else {
		c.ES = es
	}

	if cfg.MailSendEnabled && cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			helpers.LogError(logger, "rabbitmq unavailable, email notifications disabled", err, nil)
		} else {
			c.RabbitPub = pub
		}
	}
	return c, nil
}

// Close releases every connection Build opened.
func (c *Container) Close() {
	if c.RabbitPub != nil {
		c.RabbitPub.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.PGPool != nil {
		c.PGPool.Close()
	}
}
