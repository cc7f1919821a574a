package cmd

import (
	"context"
	"fmt"
	"time"

	"smi-los/internal/ai"
	"smi-los/internal/archive"
	"smi-los/internal/config"
	"smi-los/internal/pipeline"
	"smi-los/internal/ratelimit"
	"smi-los/internal/redisclient"
	"smi-los/internal/social"
	"smi-los/internal/stagelock"
	"smi-los/internal/store"
	"smi-los/internal/wordpress"
)

// Stage names used for lock scoping and scheduler jobs.
const (
	stageSearch    = "search"
	stageBlog      = "blog"
	stageFacebook  = "facebook"
	stageInstagram = "instagram"
)

func openStore(cfg config.Config) (*store.Store, func(), error) {
	db, err := store.OpenSQLite(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	st, err := store.New(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return st, func() { db.Close() }, nil
}

func newEngine(cfg config.Config) (ai.Engine, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai config missing: set openai.api_key in config.yaml")
	}
	return ai.NewOpenAI(ai.Config{
		APIKey:   cfg.OpenAI.APIKey,
		Model:    cfg.OpenAI.Model,
		BaseURL:  cfg.OpenAI.BaseURL,
		Services: cfg.Services,
	}), nil
}

// newLocker returns the stage locker: redis-backed when redis is configured
// (so manual CLI triggers exclude a concurrently running serve process),
// in-process otherwise.
func newLocker(cfg config.Config) (stagelock.Locker, func()) {
	if cfg.Redis.Addr == "" {
		return stagelock.NewLocal(), func() {}
	}
	rdb := redisclient.New(cfg.Redis)
	return stagelock.NewRedis(rdb, 2*time.Hour), func() { rdb.Close() }
}

func newDiscovery(cfg config.Config, st *store.Store, engine ai.Engine) (*pipeline.Discovery, error) {
	delay, err := time.ParseDuration(cfg.Publishing.SearchDelay)
	if err != nil {
		return nil, fmt.Errorf("invalid publishing.search_delay: %w", err)
	}
	return &pipeline.Discovery{
		Store:    st,
		Engine:   engine,
		Keywords: cfg.Keywords,
		Limiter:  ratelimit.New(delay),
	}, nil
}

func newPublication(cfg config.Config, st *store.Store, engine ai.Engine) (*pipeline.Publication, error) {
	if cfg.WordPress.BaseURL == "" || cfg.WordPress.Username == "" || cfg.WordPress.Password == "" {
		return nil, fmt.Errorf("wordpress config missing: set wordpress.base_url, wordpress.username and wordpress.password in config.yaml")
	}
	delay, err := time.ParseDuration(cfg.Publishing.PublishDelay)
	if err != nil {
		return nil, fmt.Errorf("invalid publishing.publish_delay: %w", err)
	}
	wp := wordpress.New(cfg.WordPress.BaseURL, cfg.WordPress.Username, cfg.WordPress.Password, 20*time.Second)

	var channels []social.Publisher
	if cfg.Facebook.AccessToken != "" && cfg.Facebook.PageID != "" {
		channels = append(channels, social.NewFacebook(cfg.Facebook.AccessToken, cfg.Facebook.PageID, cfg.Facebook.APIVersion, 15*time.Second))
	}
	if cfg.Instagram.AccessToken != "" && cfg.Instagram.AccountID != "" {
		channels = append(channels, social.NewInstagram(cfg.Instagram.AccessToken, cfg.Instagram.AccountID, cfg.Instagram.APIVersion, 15*time.Second))
	}

	return &pipeline.Publication{
		Store:     st,
		Engine:    engine,
		Blog:      wp,
		Channels:  channels,
		SiteURL:   cfg.WordPress.BaseURL,
		MinScore:  cfg.Publishing.MinScore,
		MaxPerDay: cfg.Publishing.MaxPerDay,
		Limiter:   ratelimit.New(delay),
		Archive:   archive.NewWriter(cfg.Publishing.ArchiveDir),
	}, nil
}

// withLock wraps a stage function so it holds the stage lock for its full
// duration.
func withLock(locker stagelock.Locker, stage string, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		release, err := locker.Acquire(ctx, stage)
		if err != nil {
			return err
		}
		defer release()
		return fn(ctx)
	}
}
