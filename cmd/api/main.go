package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/handler"
	"github.com/johnquangdev/advisor-calendar-sync/internal/adapter/repository"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/cache"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/crypto"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/database"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/external/google"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/external/oauth"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/messaging"
	"github.com/johnquangdev/advisor-calendar-sync/internal/infrastructure/storage"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/calendarsync"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/cascade"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/clientstatus"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/connection"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/icsimport"
	"github.com/johnquangdev/advisor-calendar-sync/internal/usecase/scheduler"
	"github.com/johnquangdev/advisor-calendar-sync/pkg/config"
	"github.com/johnquangdev/advisor-calendar-sync/pkg/jwt"
	pkglogger "github.com/johnquangdev/advisor-calendar-sync/pkg/logger"
	pkgvalidator "github.com/johnquangdev/advisor-calendar-sync/pkg/validator"
)

// @title           Advisor Calendar Sync API
// @version         1.0
// @description     Keeps CRM meetings in step with the advisor's Google Calendar and cascades meeting deletion to client data

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// lockStore backs both OAuth states and the per-user sync lock
type lockStore interface {
	oauth.Store
	calendarsync.Locker
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := pkglogger.New(pkglogger.Options{
		FilePath:   cfg.Log.FilePath,
		Level:      cfg.Log.Level,
		Production: cfg.IsProduction(),
	})
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${id} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Cookie"},
		AllowCredentials: true,
	}))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", icsimport.MaxFileSize>>20+1)))

	log.Println("🔧 Initializing dependencies...")

	// Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	if cfg.Server.AutoMigrate {
		n, err := database.Migrate(db, database.MigrationsDir, migrate.Up, 0)
		if err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		log.Printf("🔄 Applied %d migration(s)", n)
	}

	// State and lock store: Redis when configured, in-process otherwise
	var store lockStore
	if cfg.RedisEnabled() {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(ctx, cfg.GetRedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		store = cache.NewRedisStore(redisClient, logger)
	} else {
		log.Println("⚠️  REDIS_HOST not set, keeping OAuth state and sync locks in memory")
		store = cache.NewMemoryStore()
	}

	cipher, err := crypto.NewTokenCipher(cfg.Encryption.Key)
	if err != nil {
		log.Fatalf("Failed to initialize token cipher: %v", err)
	}
	if !cipher.Enabled() {
		log.Println("⚠️  ENCRYPTION_KEY not set, calendar tokens are stored in plaintext")
	}

	// Repositories
	log.Println("⚙️  Initializing repositories...")
	meetingRepo := repository.NewMeetingRepository(db)
	clientRepo := repository.NewClientRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	connectionRepo := repository.NewCalendarConnectionRepository(db)

	// Client status propagation
	bus := messaging.NewInProcessBus(!cfg.IsProduction())
	defer bus.Close()

	var external clientstatus.EventPublisher
	if cfg.Messaging.NATSURL != "" {
		natsPublisher, err := messaging.NewNATSPublisher(cfg.Messaging.NATSURL, logger)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer natsPublisher.Close()
		external = natsPublisher
	}

	trigger := clientstatus.NewTrigger(clientRepo, bus, messaging.TopicClientStatus, external, logger)
	recomputer := clientstatus.NewRecomputer(bus, messaging.TopicClientStatus, clientRepo, logger)
	if err := recomputer.Run(ctx); err != nil {
		log.Fatalf("Failed to start client status recomputer: %v", err)
	}

	// Calendar sync
	log.Println("🔐 Initializing Google Calendar integration...")
	googleProvider := oauth.NewGoogleProvider(
		cfg.OAuth.Google.ClientID,
		cfg.OAuth.Google.ClientSecret,
		cfg.OAuth.Google.RedirectURL,
	)
	calendarClient := google.NewCalendarClient(logger)

	credentials := calendarsync.NewCredentialAdapter(connectionRepo, cipher, googleProvider, logger)
	reconciler := calendarsync.NewReconciler(meetingRepo, clientRepo, trigger, calendarClient, logger)
	syncService := calendarsync.NewLockingService(
		calendarsync.NewSyncService(
			credentials,
			calendarClient,
			meetingRepo,
			connectionRepo,
			reconciler,
			cfg.Sync.Lookback(),
			logger,
		),
		store,
		cfg.Sync.LockTTL,
		logger,
	)

	cascadeManager := cascade.NewManager(meetingRepo, threadRepo, trigger, logger)
	connectService := connection.NewGoogleConnectService(
		connectionRepo,
		googleProvider,
		oauth.NewStateManager(store),
		cipher,
		logger,
	)

	var archiver icsimport.Archiver
	if cfg.Storage.Enabled {
		log.Println("🗄️  Connecting to object storage...")
		minioClient, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		archiver = minioClient
	}
	importer := icsimport.NewImporter(meetingRepo, archiver, logger)

	if cfg.Sync.Enabled {
		sched := scheduler.NewScheduler(syncService, connectionRepo, scheduler.Options{
			Interval:    cfg.Sync.Interval,
			Workers:     cfg.Sync.Workers,
			PassTimeout: cfg.Sync.PassTimeout,
		}, logger)
		go func() {
			if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("calendar sync scheduler stopped", zap.Error(err))
			}
		}()
		log.Printf("⏱️  Calendar sync scheduler every %s with %d workers", cfg.Sync.Interval, cfg.Sync.Workers)
	}

	// Routes
	log.Println("🛣️  Setting up routes...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry, cfg.JWT.Issuer)
	router := handler.NewRouter(
		cfg,
		jwtManager,
		handler.NewCalendarHandler(syncService, importer, logger),
		handler.NewConnectionHandler(connectService, cfg.OAuth.Google.SuccessRedirectURL, logger),
		handler.NewMeetingHandler(cascadeManager, logger),
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
