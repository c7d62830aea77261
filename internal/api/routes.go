package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/certchain/backend/internal/api/handlers"
	"github.com/certchain/backend/internal/api/middleware"
	"github.com/certchain/backend/internal/config"
	"github.com/certchain/backend/internal/services"
	"github.com/certchain/backend/pkg/metrics"
)

type Router struct {
	engine         *gin.Engine
	logger         *zap.Logger
	metrics        *metrics.Collector
	authHandler    *handlers.AuthHandler
	certHandler    *handlers.CertificateHandler
	verifyHandler  *handlers.VerificationHandler
	adminHandler   *handlers.AdminHandler
	authMiddleware *middleware.AuthMiddleware
	reqMiddleware  *middleware.RequestMiddleware
}

func NewRouter(
	cfg *config.Configuration,
	logger *zap.Logger,
	collector *metrics.Collector,
	auth *services.AuthService,
	certs *services.CertificateService,
	verifications *services.VerificationService,
	institutions *services.InstitutionService,
) *Router {
	if cfg.Logging.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()

	reqMiddleware := middleware.NewRequestMiddleware(logger, cfg.Security.MaxLoginAttempts)
	authMiddleware := middleware.NewAuthMiddleware(auth)

	engine.Use(reqMiddleware.ProcessRequest())
	engine.Use(reqMiddleware.RecoverPanic())
	engine.Use(reqMiddleware.LoginAttemptMiddleware())

	return &Router{
		engine:         engine,
		logger:         logger,
		metrics:        collector,
		authHandler:    handlers.NewAuthHandler(auth, int(cfg.Security.SessionTTL.Seconds()), logger),
		certHandler:    handlers.NewCertificateHandler(certs, verifications, cfg.Verify.PublicBaseURL, logger),
		verifyHandler:  handlers.NewVerificationHandler(verifications, logger),
		adminHandler:   handlers.NewAdminHandler(institutions, logger),
		authMiddleware: authMiddleware,
		reqMiddleware:  reqMiddleware,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "up", "name": "certchain"})
	})

	r.engine.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counters":  r.metrics.GetCounters(),
			"latencies": r.metrics.GetLatencies(),
		})
	})

	api := r.engine.Group("/api")

	// Public surface: verification by fingerprint and account bootstrap.
	api.GET("/verify/:fingerprint", r.verifyHandler.Verify)
	api.POST("/auth/signup", r.authHandler.Signup)
	api.POST("/auth/login", r.authHandler.Login)
	api.GET("/institutions/:id", r.adminHandler.GetInstitution)

	authorized := api.Group("/")
	authorized.Use(r.authMiddleware.RequireAuth())
	{
		authorized.POST("/auth/logout", r.authHandler.Logout)
		authorized.GET("/auth/me", r.authHandler.Me)
		authorized.POST("/auth/password", r.authHandler.UpdatePassword)

		authorized.POST("/certificates", r.certHandler.Issue)
		authorized.GET("/certificates", r.certHandler.List)
		authorized.GET("/certificates/stats", r.certHandler.Stats)
		authorized.GET("/certificates/:id", r.certHandler.Get)
		authorized.POST("/certificates/:id/revoke", r.certHandler.Revoke)
		authorized.GET("/certificates/:id/history", r.certHandler.History)
		authorized.GET("/certificates/:id/qr", r.certHandler.QR)
		authorized.GET("/holders/:email/certificates", r.certHandler.ByHolder)
	}

	admin := api.Group("/admin")
	admin.Use(r.authMiddleware.RequireAuth(), r.authMiddleware.RequireSuperAdmin())
	{
		admin.GET("/institutions", r.adminHandler.ListInstitutions)
		admin.POST("/institutions/:id/approve", r.adminHandler.Approve)
		admin.POST("/institutions/:id/reject", r.adminHandler.Reject)
		admin.POST("/institutions/:id/suspend", r.adminHandler.Suspend)
		admin.POST("/institutions/:id/reactivate", r.adminHandler.Reactivate)
		admin.POST("/institutions/:id/deactivate", r.adminHandler.Deactivate)
		admin.GET("/stats", r.adminHandler.Stats)
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) Run(addr string) error {
	r.logger.Info("Starting HTTP server", zap.String("address", addr))
	return r.engine.Run(addr)
}
