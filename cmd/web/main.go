package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/detachd/portal/internal/ai"
	"github.com/detachd/portal/internal/broker"
	"github.com/detachd/portal/internal/envstruct"
	"github.com/detachd/portal/internal/errors"
	"github.com/detachd/portal/internal/logging"
	"github.com/detachd/portal/internal/pprofserver"
	"github.com/detachd/portal/internal/repositories"
	"github.com/detachd/portal/internal/sqlite"
	"github.com/detachd/portal/internal/views"
	"github.com/joho/godotenv"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	users          *repositories.UserRepository
	claims         *repositories.ClaimRepository
	loginAttempts  *repositories.LoginAttemptRepository
	composer       *views.Composer
	analyzer       ai.Analyzer
	analysisBroker *broker.ChannelBroker[string, string]
}

type configuration struct {
	// Addr with port 0 picks an ephemeral port, which the e2e tests rely on.
	Addr      string `env:"DETACHD_ADDR" envDefault:"localhost:4000"`
	PprofAddr string `env:"DETACHD_PPROF_ADDR" envDefault:"localhost:6060"`
	SqliteURL string `env:"DETACHD_SQLITE_URL" envDefault:"./detachd.sqlite"`
	// AIBackend is "openai" or "fixture". The fixture backend produces
	// deterministic assessments without network access.
	AIBackend string `env:"DETACHD_AI_BACKEND" envDefault:"fixture"`
	OpenAIKey string `env:"OPENAI_API_KEY" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cfg configuration
		err error
	)
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate configuration")
	}

	// Initialise pprof listening on localhost so that it's not open to the world.
	pprofserver.Launch(cfg.PprofAddr, logger)

	var dbs *sqlite.Database
	if dbs, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		_ = dbs.Close()
	}()
	go dbs.StartDatabaseOptimizer(ctx)

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	var analyzer ai.Analyzer
	switch cfg.AIBackend {
	case "openai":
		if cfg.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai backend")
		}
		analyzer = ai.NewOpenAIAnalyzer(cfg.OpenAIKey, logger)
	case "fixture":
		analyzer = ai.NewFixtureAnalyzer()
	default:
		return errors.New("unknown AI backend", slog.String("backend", cfg.AIBackend))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "analysis backend configured", slog.String("backend", cfg.AIBackend))

	claims := repositories.NewClaimRepository(dbs, logger)
	analysisBroker := broker.NewChannelBroker[string, string]()
	go analysisBroker.Start()
	defer analysisBroker.Stop()

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		users:          repositories.NewUserRepository(dbs, logger),
		claims:         claims,
		loginAttempts:  repositories.NewLoginAttemptRepository(dbs, logger),
		composer:       views.NewComposer(claims),
		analyzer:       analyzer,
		analysisBroker: analysisBroker,
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}

	return nil
}

func main() {
	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))

	// The .env file is a development convenience and optional in production.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Error("load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(context.Background(), logger, os.LookupEnv); err != nil {
		logger.Error("server exited", errors.SlogError(err))
		os.Exit(1)
	}
}
