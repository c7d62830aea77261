package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/certchain/backend/internal/api"
	"github.com/certchain/backend/internal/config"
	"github.com/certchain/backend/internal/db"
	"github.com/certchain/backend/internal/db/models"
	"github.com/certchain/backend/internal/services"
	"github.com/certchain/backend/internal/store"
	"github.com/certchain/backend/internal/utils"
	"github.com/certchain/backend/pkg/logger"
	"github.com/certchain/backend/pkg/metrics"
)

func main() {
	cfg, err := config.Load(os.Getenv("CERTCHAIN_CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.New(cfg.Logging.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(cfg, zapLogger)

	var (
		st     store.Store
		gormDB *gorm.DB
	)
	switch cfg.Database.Driver {
	case "memory":
		st = store.NewMemoryStore()
		zapLogger.Info("Using in-memory store")
	default:
		gormDB, err = db.Initialize(cfg)
		if err != nil {
			zapLogger.Fatal("Failed to initialize database", zap.Error(err))
		}
		st = store.NewGormStore(gormDB)
	}

	collector := metrics.NewCollector()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := seedSuperAdmin(ctx, cfg, st, zapLogger); err != nil {
		zapLogger.Fatal("Failed to seed super admin", zap.Error(err))
	}

	authService := services.NewAuthService(st, cfg.Security.SessionTTL, cfg.Security.PasswordMinLength, zapLogger, collector)
	defer authService.Close()
	certService := services.NewCertificateService(st, zapLogger, collector)
	verifyService := services.NewVerificationService(st, zapLogger, collector)
	institutionService := services.NewInstitutionService(st, zapLogger, collector)

	router := api.NewRouter(cfg, zapLogger, collector, authService, certService, verifyService, institutionService)
	router.SetupRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}
	go func() {
		if err := router.Run(":" + port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = ctxShutdown

	if gormDB != nil {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	zapLogger.Info("Server gracefully stopped")
}

// seedSuperAdmin creates the platform operator account on first boot. It is
// a no-op unless both seed credentials are configured and the account does
// not already exist.
func seedSuperAdmin(ctx context.Context, cfg *config.Configuration, st store.Store, logger *zap.Logger) error {
	email := cfg.Security.SeedAdminEmail
	password := cfg.Security.SeedAdminPassword
	if email == "" || password == "" {
		logger.Info("No seed admin configured, skipping")
		return nil
	}

	if _, err := st.UserByEmail(ctx, email); err == nil {
		logger.Info("Seed admin already exists, skipping", zap.String("email", email))
		return nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		FullName:     "Platform Administrator",
		PasswordHash: hash,
		UserType:     models.UserTypeSuperAdmin,
		Role:         models.RoleAdmin,
		ActiveStatus: true,
	}
	if err := st.CreateUser(ctx, admin); err != nil {
		return err
	}
	logger.Info("Seeded super admin", zap.String("email", email))
	return nil
}
