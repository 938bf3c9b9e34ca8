package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointment-scheduler/config"
	deliveryHttp "appointment-scheduler/internal/delivery/http"
	"appointment-scheduler/internal/delivery/http/handler"
	"appointment-scheduler/internal/delivery/http/middleware"
	"appointment-scheduler/internal/infrastructure/cache"
	"appointment-scheduler/internal/infrastructure/database"
	"appointment-scheduler/internal/repository"
	"appointment-scheduler/internal/service"
	"appointment-scheduler/internal/usecase"
	"appointment-scheduler/pkg/jwt"
	"appointment-scheduler/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Log         *logrus.Logger
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	log := SetupLogger(cfg)
	app := &App{Config: cfg, Log: log}

	db, err := database.NewConnection(cfg.DB, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Redis only backs the availability cache; run without it when not configured
	if cfg.RedisEnabled() {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
		log.Info("Redis connected successfully")
	} else {
		log.Warn("REDIS_HOST not set, availability cache disabled")
	}

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           NewHandler(cfg, db, app.RedisClient, log, time.Now),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// SetupLogger configures the logrus logger
func SetupLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)
	if cfg != nil && cfg.IsDev() {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// NewHandler wires repositories, services, usecases and handlers into the HTTP router.
// A nil redisClient disables the availability cache.
func NewHandler(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *logrus.Logger, clock usecase.Clock) http.Handler {
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	var availabilityCache service.AvailabilityCache = service.NoopAvailabilityCache{}
	if redisClient != nil {
		availabilityCache = service.NewRedisAvailabilityCache(redisClient, log, cfg.Cache.AvailabilityTTL)
	}
	auditService := service.NewAuditService(log, auditLogRepo)
	engine := service.NewStatusTransitionEngine()
	ledger := service.NewBookingLedger(db, log, appointmentRepo, auditService, engine)

	// Initialize usecases
	schedulingUsecase := usecase.NewSchedulingUsecase(db, log, userRepo, ledger, availabilityCache, cfg.Location(), clock)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, userRepo)

	// Initialize handlers
	appointmentHandler := handler.NewAppointmentHandler(schedulingUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase)
	auditLogHandler := handler.NewAuditLogHandler(schedulingUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)

	router := deliveryHttp.NewRouter(appointmentHandler, doctorHandler, auditLogHandler, authMiddleware, corsMiddleware)
	return router.Setup()
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() error {
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	return app.waitForShutdown(errCh)
}

// waitForShutdown blocks until an interrupt signal is received or the server fails
func (app *App) waitForShutdown(errCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		app.Close()
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
	return nil
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
