// Package server initializes and runs the authgate server: it wires the
// credential store, the counter store, and the HTTP surface, and handles
// graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/authgate/internal/logging"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"github.com/dmitrijs2005/authgate/internal/server/httpapi"
	"github.com/dmitrijs2005/authgate/internal/server/ratelimit"
	"github.com/dmitrijs2005/authgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/authgate/internal/server/services"
)

// shutdownTimeout bounds how long in-flight requests may delay shutdown.
const shutdownTimeout = 10 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	repoManager repomanager.RepositoryManager
	redisClient *redis.Client
	httpServer  *httpapi.Server
}

// NewApp constructs the application from cfg. The repository manager and the
// Redis client are the process-wide shared handles; both are explicitly
// constructed here and passed down so tests can substitute fakes.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rm, err := repomanager.NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN, repomanager.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		ConnectTimeout:  cfg.DBConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	redisClient, err := newRedisClient(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}

	issuer := auth.NewIssuer(
		[]byte(cfg.AccessTokenSecret), []byte(cfg.RefreshTokenSecret),
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)

	authService, err := services.NewAuthService(rm.Users(), issuer, logger)
	if err != nil {
		return nil, fmt.Errorf("auth service init error: %w", err)
	}

	var counter ratelimit.CounterStore
	if redisClient != nil {
		counter = ratelimit.NewRedisCounterStore(redisClient)
	}

	httpServer := httpapi.NewServer(cfg, logger, authService, issuer, counter)

	return &App{
		config:      cfg,
		logger:      logger,
		repoManager: rm,
		redisClient: redisClient,
		httpServer:  httpServer,
	}, nil
}

// newRedisClient connects the shared counter-store client, pinging it with a
// bounded exponential backoff. If Redis stays unreachable the app still
// starts: the rate limiter degrades to fail-open, so availability is not
// held hostage to the cache.
func newRedisClient(ctx context.Context, cfg *config.Config, logger logging.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	backoff := retry.WithMaxRetries(5, retry.WithCappedDuration(3*time.Second, retry.NewExponential(100*time.Millisecond)))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		logger.Warn(ctx, "redis unreachable, rate limiting degrades to fail-open", "error", err)
	}

	return client, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a signal arrives, then shuts
// down gracefully within shutdownTimeout and releases the shared handles.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.EndpointAddrHTTP, "env", app.config.Env)

	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: app.httpServer.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "forced shutdown", "error", err)
	}

	if app.redisClient != nil {
		if err := app.redisClient.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
	if err := app.repoManager.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	return nil
}
