package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"scribbles/internal/avatar"
	"scribbles/internal/cache"
	"scribbles/internal/clock"
	"scribbles/internal/config"
	"scribbles/internal/handler"
	"scribbles/internal/queue"
	"scribbles/internal/repository"
	"scribbles/internal/service"
	"scribbles/internal/storage"
	"scribbles/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// App is the wired application: the two stores, their HTTP surface and the
// optional activity workers.
type App struct {
	Handler  stdhttp.Handler
	Accounts *service.AccountService
	Posts    *service.PostService

	workers *worker.Manager
	closers []func() error
	log     *zap.Logger
}

// NewApp opens storage and builds every service and handler from cfg.
// Redis, when configured, carries the activity stream; R2, when configured,
// stores uploaded images.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{log: log.Named("App")}

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	app.closers = append(app.closers, store.Close)

	hasher, err := service.NewPasswordHasher(cfg.PasswordMode)
	if err != nil {
		app.Close()
		return nil, err
	}
	avatars := avatar.NewDiceBear(cfg.AvatarBaseURL)
	clk := clock.NewRealClock()

	var publisher queue.Publisher = queue.NoopPublisher{}
	var activity cache.ActivityCache
	if cfg.RedisURL != "" {
		client, err := storage.NewRedisClient(cfg.RedisURL)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, client.Close)

		if err := client.Ping(ctx).Err(); err != nil {
			app.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		publisher = queue.NewPublisher(client, cfg.EventStreamMax, log)
		activityCache := cache.NewActivityCache(client, cfg.StorageKeyPrefix, log)
		activity = activityCache

		if cfg.ActivityWorkers > 0 {
			mcfg := worker.DefaultManagerConfig()
			mcfg.WorkerCount = cfg.ActivityWorkers
			app.workers = worker.NewManager(
				queue.NewConsumer(client, log),
				worker.NewHandler(activityCache, log),
				mcfg,
				log,
			)
		}
		app.log.Info("Activity stream enabled", zap.Int("workers", cfg.ActivityWorkers))
	} else {
		app.log.Info("REDIS_URL not set; activity events are dropped")
	}

	accounts, err := service.NewAccountService(ctx,
		repository.NewAccountRepository(store),
		repository.NewSessionRepository(store),
		hasher, avatars, log,
	)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	posts, err := service.NewPostService(ctx,
		repository.NewPostRepository(store),
		accounts, avatars, clk, publisher, log,
	)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	var objects service.ObjectStore
	if cfg.R2Enabled() {
		bucket, err := service.NewR2Bucket(ctx, cfg)
		if err != nil {
			app.Close()
			return nil, err
		}
		objects = bucket
		app.log.Info("Image uploads go to R2", zap.String("bucket", cfg.R2BucketName))
	}
	media := service.NewMediaService(objects, cfg.MaxImageSizeBytes, cfg.ImageMaxWidth, log)

	secret := cfg.JWTSecret
	if secret == "" {
		secret, err = randomSecret()
		if err != nil {
			app.Close()
			return nil, err
		}
		app.log.Warn("JWT_SECRET not set; using a random secret, tokens will not survive a restart")
	}
	tokens := service.NewTokenService(secret, cfg.AccessTokenMaxAge, clk)

	app.Accounts = accounts
	app.Posts = posts
	app.Handler = NewRouter(RouterConfig{
		AuthHandler:     handler.NewAuthHandler(accounts, tokens, log),
		UserHandler:     handler.NewUserHandler(accounts, posts, log),
		PostHandler:     handler.NewPostHandler(posts, accounts, log),
		CommentHandler:  handler.NewCommentHandler(posts, log),
		MediaHandler:    handler.NewMediaHandler(media, log),
		ActivityHandler: handler.NewActivityHandler(activity, log),
		Tokens:          tokens,
		Sessions:        accounts,
		Logger:          log,
	})

	return app, nil
}

// Start launches the activity workers, if any.
func (a *App) Start(ctx context.Context) error {
	if a.workers == nil {
		return nil
	}
	return a.workers.Start(ctx)
}

// Close stops the workers and releases connections in reverse order.
func (a *App) Close() error {
	if a.workers != nil {
		a.workers.Stop()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Run serves the API on cfg.ServerPort until ctx is cancelled, then shuts the
// server down gracefully.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("failed to start activity workers: %w", err)
	}

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, stdhttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
