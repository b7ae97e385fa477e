package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go-clinic-management/config"
	deliveryHttp "go-clinic-management/internal/delivery/http"
	"go-clinic-management/internal/delivery/http/handler"
	"go-clinic-management/internal/delivery/http/middleware"
	domainRepo "go-clinic-management/internal/domain/repository"
	"go-clinic-management/internal/infrastructure/cache"
	"go-clinic-management/internal/infrastructure/database"
	"go-clinic-management/internal/infrastructure/messaging"
	"go-clinic-management/internal/repository"
	"go-clinic-management/internal/service"
	"go-clinic-management/internal/usecase"
	"go-clinic-management/pkg/jwt"
	"go-clinic-management/pkg/validator"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AMQPConn    *amqp.Connection
	Publisher   *messaging.RabbitMQPublisher
	Locker      *service.KeyLocker
	Seeder      *service.SeedService
	Server      *http.Server
}

// backend is the persistence chosen by STORE_BACKEND
type backend struct {
	store     domainRepo.Store
	auditRepo domainRepo.AuditLogRepository
	tokenRepo domainRepo.TokenRepository
}

// New creates a new App instance with all dependencies initialized
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app := &App{Config: cfg, Log: NewLogger(cfg.App.LogLevel)}
	app.Log.Info("Configuration loaded successfully")

	b, err := app.connectBackend(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	events, err := app.connectEvents()
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Server = app.initializeServer(b, events)
	return app, nil
}

// NewLogger configures a JSON logrus logger writing to stdout
func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

func (app *App) connectBackend(ctx context.Context) (*backend, error) {
	cfg := app.Config

	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, app.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = db

		// sessions live in redis next to the postgres store
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, app.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient

		return &backend{
			store:     repository.NewGormStore(db),
			auditRepo: repository.NewAuditLogRepository(db),
			tokenRepo: repository.NewRedisTokenRepository(redisClient),
		}, nil

	case config.BackendRedis:
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, app.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient

		return &backend{
			store:     repository.NewRedisStore(redisClient, cfg.Redis.KeyPrefix),
			auditRepo: repository.NewRedisAuditLogRepository(redisClient, cfg.Redis.KeyPrefix),
			tokenRepo: repository.NewRedisTokenRepository(redisClient),
		}, nil

	case config.BackendMemory:
		app.Log.Warn("Using in-memory store, data is lost on restart")
		return &backend{
			store:     repository.NewMemoryStore(),
			auditRepo: repository.NewMemoryAuditLogRepository(),
			tokenRepo: repository.NewMemoryTokenRepository(),
		}, nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// connectEvents publishes to RabbitMQ when configured, otherwise to the log
func (app *App) connectEvents() (service.EventPublisher, error) {
	cfg := app.Config.RabbitMQ
	if cfg.URL == "" {
		return service.NewLogEventPublisher(app.Log), nil
	}

	conn, err := messaging.NewRabbitMQConnection(cfg.URL, cfg.Exchange)
	if err != nil {
		return nil, err
	}
	app.AMQPConn = conn

	publisher, err := messaging.NewRabbitMQPublisher(conn, cfg.Exchange, app.Log)
	if err != nil {
		return nil, err
	}
	app.Publisher = publisher
	return publisher, nil
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(b *backend, events service.EventPublisher) *http.Server {
	cfg := app.Config
	log := app.Log

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize services
	app.Locker = service.NewKeyLocker(log)
	audit := service.NewAuditService(log, b.auditRepo)
	users := service.NewUserService(b.store, app.Locker, log, audit, events)
	records := service.NewMedicalRecordService(b.store, app.Locker, log, audit, events)
	schedules := service.NewScheduleService(b.store, app.Locker, log, audit, events, service.ScheduleTemplate{
		Days:      cfg.Schedule.Days,
		SlotTimes: cfg.Schedule.SlotTimes,
	})
	appointments := service.NewAppointmentService(b.store, app.Locker, log, audit, events)
	prescriptions := service.NewPrescriptionService(b.store, app.Locker, log, audit, events)
	inventory := service.NewInventoryService(b.store, app.Locker, log, audit, events)
	app.Seeder = service.NewSeedService(log, users, inventory, schedules)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, users, b.tokenRepo, jwtService, audit)
	patientUsecase := usecase.NewPatientUsecase(log, users, records, schedules, appointments)
	doctorUsecase := usecase.NewDoctorUsecase(log, users, records, schedules, appointments)
	pharmacistUsecase := usecase.NewPharmacistUsecase(log, prescriptions, inventory)
	adminUsecase := usecase.NewAdminUsecase(log, users, schedules, appointments, inventory, b.tokenRepo)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, b.auditRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	patientHandler := handler.NewPatientHandler(patientUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	pharmacistHandler := handler.NewPharmacistHandler(pharmacistUsecase, customValidator)
	adminHandler := handler.NewAdminHandler(adminUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authUsecase)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		patientHandler,
		doctorHandler,
		pharmacistHandler,
		adminHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		cfg.App.LoginRateLimit,
	)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Seed creates the demo accounts and inventory when they are absent
func (app *App) Seed(ctx context.Context) error {
	return app.Seeder.Seed(ctx)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (app *App) Run(ctx context.Context) error {
	if app.Config.App.SeedOnStart {
		if err := app.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s, store: %s", app.Config.App.Env, app.Config.Store.Backend)
		if err := app.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.Log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			app.Log.Errorf("Server forced to shutdown: %v", err)
			return err
		}
		return nil
	})

	err := g.Wait()
	app.Close()
	app.Log.Info("Server shutdown complete")
	return err
}

// Close releases every connection; safe on a partially built App
func (app *App) Close() {
	if app.Locker != nil {
		app.Locker.Stop()
	}

	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			app.Log.Warnf("Failed to close event publisher: %+v", err)
		}
	}
	if app.AMQPConn != nil {
		_ = app.AMQPConn.Close()
	}

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

// Migrate applies (steps == 0) or rolls back (steps > 0) the postgres schema
func Migrate(direction string, steps int) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := NewLogger(cfg.App.LogLevel)

	migrator, err := database.NewMigrator(cfg.DB.PostgresURL(), log)
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch direction {
	case "up":
		return migrator.Up()
	case "down":
		return migrator.Down(steps)
	}
	return fmt.Errorf("unknown migration direction %q", direction)
}
