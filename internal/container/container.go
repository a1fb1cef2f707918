package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"marketplace/matcher/internal/client"
	"marketplace/matcher/internal/config"
	"marketplace/matcher/internal/engine"
	"marketplace/matcher/internal/keywords"
	"marketplace/matcher/internal/repository"
	"marketplace/matcher/internal/score"
	"marketplace/matcher/internal/server"
	"marketplace/matcher/internal/state"
)

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Service *engine.Service
	Server  *server.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized. Postgres
// and Redis are optional; when disabled the engine runs purely in memory.
func New(cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	var snapshots repository.SnapshotRepository
	if cfg.Database.Enabled {
		db, err := pgxpool.New(context.Background(),
			fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
				cfg.Database.Host,
				cfg.Database.Port,
				cfg.Database.User,
				cfg.Database.Password,
				cfg.Database.Name,
			))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		c.db = db
		snapshots = repository.NewSnapshotRepository(db)
		log.Info("snapshot repository enabled")
	}

	var journal state.RefreshJournal
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.redis = rdb
		journal = state.NewRedisRefreshJournal(rdb)
		log.Info("refresh journal enabled")
	}

	engines := make(map[string]*engine.Engine, len(cfg.Marketplaces))
	for id, mpCfg := range cfg.Marketplaces {
		var mpClient client.MarketplaceClient
		switch mpCfg.Transport {
		case config.TransportHTML:
			mpClient = client.NewHTMLClient(id, mpCfg)
		case config.TransportREST:
			mpClient = client.NewRESTClient(id, mpCfg)
		default:
			return nil, fmt.Errorf("marketplace %s: unknown transport %q", id, mpCfg.Transport)
		}

		vocab := keywords.BaseVocabulary().Merge(mpCfg.Vocabulary)
		extractor := keywords.NewExtractor(vocab)
		scorer := score.NewScorer(score.DefaultWeights().Merge(mpCfg.Weights), vocab)

		engines[id] = engine.New(id, mpCfg, mpClient, extractor, scorer, snapshots, journal)
		log.Infof("engine ready for marketplace %s (%s transport)", id, mpCfg.Transport)
	}

	c.Service = engine.NewService(engines)
	c.Server = server.New(cfg.Server, c.Service, journal)
	return c, nil
}

// Run warms the taxonomies in the background and serves the HTTP API.
func (c *Container) Run(ctx context.Context) error {
	go func() {
		if err := c.Service.WarmAll(ctx); err != nil {
			log.Warnf("taxonomy warm-up incomplete: %v", err)
		}
	}()

	return c.Server.Listen()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if err := c.Server.Shutdown(); err != nil {
		log.Warnf("server shutdown: %v", err)
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("redis close: %v", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
