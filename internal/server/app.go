// Package server assembles the blog API: it opens the database, applies
// migrations, builds the mailer, broadcaster, services and HTTP router, and
// runs the HTTP server until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/blogapi/internal/logging"
	"github.com/dmitrijs2005/blogapi/internal/server/auth"
	"github.com/dmitrijs2005/blogapi/internal/server/broadcast"
	"github.com/dmitrijs2005/blogapi/internal/server/config"
	"github.com/dmitrijs2005/blogapi/internal/server/mailer"
	"github.com/dmitrijs2005/blogapi/internal/server/metrics"
	"github.com/dmitrijs2005/blogapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/blogapi/internal/server/rest"
	"github.com/dmitrijs2005/blogapi/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	publisher   broadcast.Publisher
	metrics     *metrics.Metrics
	userService *services.UserService
	blogService *services.BlogService
}

// NewLogger builds the process logger from config.
func NewLogger(c *config.Config) logging.Logger {
	return logging.New(logging.Options{
		Production: c.IsProduction(),
		Level:      c.EffectiveLogLevel(),
		File:       c.LogFile,
	})
}

// OpenDB opens the pgx-backed pool and checks connectivity.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// Migrate applies pending migrations and checks that every entity has a table.
func Migrate(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) error {
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	if err := rm.CheckEntities(ctx, db); err != nil {
		return fmt.Errorf("schema check error: %w", err)
	}
	return nil
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := Migrate(ctx, db, rm); err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenService(c.SecretKey, c.AccessTokenValidityDuration)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("token service error: %w", err)
	}

	mail, err := newMailer(c, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	publisher, err := newPublisher(c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	met := metrics.New()

	us := services.NewUserService(db, rm, tokens, mail, logger, met, services.UserServiceOptions{
		PublicURL:  c.PublicURL,
		SessionTTL: c.SessionValidityDuration,
	})
	bs := services.NewBlogService(db, rm, publisher, logger, met, c.PublishTimeout)

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		publisher:   publisher,
		metrics:     met,
		userService: us,
		blogService: bs,
	}, nil
}

// newMailer returns an SMTP mailer, or a logging one when no relay is configured.
func newMailer(c *config.Config, logger logging.Logger) (mailer.Mailer, error) {
	if c.MailHost == "" {
		logger.Warn(context.Background(), "MAIL_HOST not set, verification emails will only be logged")
		return mailer.NewLogMailer(logger), nil
	}
	m, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     c.MailHost,
		Port:     c.MailPort,
		User:     c.MailUser,
		Password: c.MailPassword,
		From:     c.MailFrom,
		Timeout:  c.MailTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}
	return m, nil
}

func newPublisher(c *config.Config) (broadcast.Publisher, error) {
	switch c.BroadcastDriver {
	case config.BroadcastNATS:
		p, err := broadcast.NewNATSPublisher(c.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("nats connect error: %w", err)
		}
		return p, nil
	case config.BroadcastPusher:
		return broadcast.NewPusherPublisher(broadcast.PusherConfig{
			AppID:   c.PusherAppID,
			Key:     c.PusherKey,
			Secret:  c.PusherSecret,
			Cluster: c.PusherCluster,
			Timeout: c.PublishTimeout,
		}), nil
	case config.BroadcastNone, "":
		return broadcast.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown broadcast driver %q", c.BroadcastDriver)
	}
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

func (app *App) router() *rest.Server {
	h := rest.NewRouter(app.userService, app.blogService, app.logger, app.metrics, rest.Options{
		AllowedOrigins:  app.config.CorsAllowedOrigins,
		GuardBlogCreate: app.config.GuardBlogCreate,
		LoginRateLimit:  app.config.LoginRateLimit,
		TrustProxy:      app.config.TrustProxy,
		SecureCookies:   app.config.IsProduction(),
		SessionTTL:      app.config.SessionValidityDuration,
		DebugSessions:   app.config.IsDevelopment(),
	})
	return rest.NewServer(app.config.EndpointAddrHTTP, h, app.logger)
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives,
// then releases the database and broadcaster.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "env", app.config.Environment, "broadcast", app.config.BroadcastDriver)

	app.initSignalHandler(cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.userService.RunSessionPruner(ctx, app.config.SessionPruneInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.router().Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err)
			runErr = err
			cancelFunc()
		}
	}()

	wg.Wait()

	app.logger.Info(ctx, "Stopping app...")
	return errors.Join(runErr, app.Close())
}

func (app *App) Close() error {
	return errors.Join(app.publisher.Close(), app.db.Close())
}
