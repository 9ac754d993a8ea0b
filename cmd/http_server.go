package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/invoice-approval/internal"
	"github.com/frahmantamala/invoice-approval/internal/auth"
	authPostgres "github.com/frahmantamala/invoice-approval/internal/auth/postgres"
	"github.com/frahmantamala/invoice-approval/internal/core/events"
	"github.com/frahmantamala/invoice-approval/internal/organization"
	orgPostgres "github.com/frahmantamala/invoice-approval/internal/organization/postgres"
	"github.com/frahmantamala/invoice-approval/internal/request"
	requestPostgres "github.com/frahmantamala/invoice-approval/internal/request/postgres"
	"github.com/frahmantamala/invoice-approval/internal/transport"
	"github.com/frahmantamala/invoice-approval/internal/transport/rest"
	"github.com/frahmantamala/invoice-approval/internal/user"
	userPostgres "github.com/frahmantamala/invoice-approval/internal/user/postgres"
	"github.com/frahmantamala/invoice-approval/pkg/idgen"
	"github.com/frahmantamala/invoice-approval/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	gormSqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if sqlDB, err := deps.GormDB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				deps.Logger.Error("database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.LoggerWrapper()

	gormDB, err := initGorm(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database pool: %w", err)
	}

	idGen, err := idgen.NewGenerator(config.Workflow.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize id generator: %w", err)
	}

	eventBus := events.NewEventBus(lg)

	// auth
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authRepo := authPostgres.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	// users
	userRepo := userPostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	// organization directory
	orgRepo := orgPostgres.NewOrganizationRepository(gormDB)
	orgService := organization.NewService(orgRepo, lg)
	orgHandler := organization.NewHandler(transport.NewBaseHandler(lg), orgService)

	// payment requests
	requestRepo := requestPostgres.NewRequestRepository(gormDB)
	historyRepo := requestPostgres.NewHistoryRepository(gormDB)
	actionLog := requestPostgres.NewActionLogRepository(gormDB)
	recorder := request.NewRecorder(userService)
	requestService := request.NewService(
		requestRepo,
		historyRepo,
		recorder,
		actionLog,
		eventBus,
		idGen,
		lg,
		config.Workflow.BatchConcurrency,
	)
	requestHandler := request.NewHandler(requestService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, sqlDB, authHandler, userHandler, requestHandler, orgHandler, lg)

	return &Dependencies{
		Config: config,
		GormDB: gormDB,
		Router: router,
		Logger: lg,
	}, nil
}

// initGorm opens the configured database. Postgres goes through the pgx
// stdlib driver with a sqlx-managed pool; sqlite serves local development
// and tests.
func initGorm(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(gormSqlite.Open(cfg.Source), &gorm.Config{})
	default:
		pool, err := initPostgresPool(cfg)
		if err != nil {
			return nil, err
		}
		return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: pool.DB}), &gorm.Config{})
	}
}

func initPostgresPool(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
