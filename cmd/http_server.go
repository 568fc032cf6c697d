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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	internal "github.com/mostafaSataki/LprParkingWeb-sub000/internal"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/auth"
	authPostgres "github.com/mostafaSataki/LprParkingWeb-sub000/internal/auth/postgres"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/core/events"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/payment"
	paymentPostgres "github.com/mostafaSataki/LprParkingWeb-sub000/internal/payment/postgres"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/paymentgateway"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/reservation"
	reservationPostgres "github.com/mostafaSataki/LprParkingWeb-sub000/internal/reservation/postgres"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/tariff"
	tariffPostgres "github.com/mostafaSataki/LprParkingWeb-sub000/internal/tariff/postgres"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/transport"
	"github.com/mostafaSataki/LprParkingWeb-sub000/internal/transport/rest"
	"github.com/mostafaSataki/LprParkingWeb-sub000/pkg/logger"
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
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Redis  *redis.Client
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

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

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if deps.Redis != nil {
			if err := deps.Redis.Close(); err != nil {
				deps.Logger.Error("redis close error", "error", err)
			}
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	log := deps.Logger
	base := transport.NewBaseHandler(log)
	eventBus := events.NewEventBus(log)
	payment.NewEventHandler(log).Register(eventBus)

	gatewayClient := paymentgateway.NewClient(paymentgateway.Config{
		BaseURL:        deps.Config.Gateway.BaseURL,
		MerchantID:     deps.Config.Gateway.MerchantID,
		RequestTimeout: deps.Config.Gateway.RequestTimeout,
	}, log)

	tariffRepo := tariffPostgres.NewTariffRepository(deps.Gorm)
	tariffService := tariff.NewService(tariffRepo, log)

	reservationRepo := reservationPostgres.NewReservationRepository(deps.Gorm)
	settlementService := reservation.NewService(
		reservationRepo,
		gatewayClient,
		tariffService,
		eventBus,
		deps.Config.Gateway.CallbackURL,
		log,
	)
	reservationHandler := reservation.NewHandler(base, settlementService)

	paymentRepo := paymentPostgres.NewPaymentRepository(deps.Gorm)
	paymentService := payment.NewService(paymentRepo, gatewayClient, settlementService, eventBus, log)
	webhookHandler := payment.NewWebhookHandler(base, paymentService)

	operatorRepo := authPostgres.NewOperatorRepository(deps.Gorm)
	tokenGen := auth.NewJWTTokenGenerator(
		deps.Config.Security.AccessTokenSecret,
		deps.Config.Security.RefreshTokenSecret,
		deps.Config.Security.AccessTokenDuration,
		deps.Config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(operatorRepo, tokenGen, deps.Config.Security.BCryptCost, log)
	authHandler := auth.NewHandler(base, authService)

	rest.RegisterAllRoutes(deps.Router, rest.RouterDeps{
		DB:                 deps.DB.DB,
		Redis:              deps.Redis,
		Config:             deps.Config,
		AuthHandler:        authHandler,
		ReservationHandler: reservationHandler,
		WebhookHandler:     webhookHandler,
	})
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.L(),
		DB:     db,
		Gorm:   gormDB,
		Redis:  initRedis(config.Redis),
		Router: chi.NewRouter(),
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the already-open pgx connection so the pool
// settings and health checks apply to every query path.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{})
}

func initRedis(cfg internal.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
