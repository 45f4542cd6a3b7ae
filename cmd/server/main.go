// Package main runs the event operations HTTP server with WebSocket push and
// graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/crowdpulse/backend/config"
	"github.com/crowdpulse/backend/internal/aggregate"
	"github.com/crowdpulse/backend/internal/assoc"
	"github.com/crowdpulse/backend/internal/auth"
	"github.com/crowdpulse/backend/internal/companies"
	"github.com/crowdpulse/backend/internal/departments"
	"github.com/crowdpulse/backend/internal/divisions"
	"github.com/crowdpulse/backend/internal/events"
	"github.com/crowdpulse/backend/internal/exports"
	"github.com/crowdpulse/backend/internal/incidents"
	"github.com/crowdpulse/backend/internal/incidenttypes"
	"github.com/crowdpulse/backend/internal/middleware"
	"github.com/crowdpulse/backend/internal/notify"
	"github.com/crowdpulse/backend/internal/realtime"
	"github.com/crowdpulse/backend/internal/reports"
	"github.com/crowdpulse/backend/internal/roles"
	"github.com/crowdpulse/backend/internal/scope"
	"github.com/crowdpulse/backend/internal/staffing"
	"github.com/crowdpulse/backend/internal/taxonomy"
	"github.com/crowdpulse/backend/internal/worker"
	"github.com/crowdpulse/backend/pkg/database"
	"github.com/crowdpulse/backend/pkg/queue"
	"github.com/crowdpulse/backend/pkg/redis"
	"github.com/crowdpulse/backend/pkg/response"
	"github.com/crowdpulse/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ReportsBucket:        cfg.AWS.ReportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	notifier := notify.NewNotifier(jobQueue, logger)

	// Core services shared by the feature packages.
	resolver := scope.NewResolver(pool)
	assocManager := assoc.NewManager(pool, logger)
	engine := aggregate.NewEngine(pool)
	taxonomySvc := taxonomy.NewService(pool, resolver, assocManager, engine, notifier, logger)

	// Reports / exports
	exportsRepo := exports.NewRepository(pool)
	exportsHandler := exports.NewHandler(exportsRepo, resolver)
	reportClient := reports.NewClient(cfg.Report.BaseURL, time.Duration(cfg.Report.TimeoutSec)*time.Second, logger)
	reportsSvc := reports.NewService(reportClient, s3Client, exportsRepo, jobQueue, logger)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Companies
	companyRepo := companies.NewRepository(pool)
	companyHandler := companies.NewHandler(companyRepo, resolver)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, resolver, notifier)

	// Taxonomies
	divisionRepo := divisions.NewRepository(pool)
	divisionHandler := divisions.NewHandler(
		taxonomy.NewHandler(assoc.KindDivision, taxonomySvc, reportsSvc), divisionRepo, resolver)

	typeRepo := incidenttypes.NewRepository(pool)
	typeHandler := incidenttypes.NewHandler(
		taxonomy.NewHandler(assoc.KindIncidentType, taxonomySvc, reportsSvc), typeRepo, resolver)

	departmentRepo := departments.NewRepository(pool)
	departmentHandler := departments.NewHandler(
		taxonomy.NewHandler(assoc.KindDepartment, taxonomySvc, reportsSvc), departmentRepo, resolver)

	// Incidents
	incidentRepo := incidents.NewRepository(pool)
	incidentHandler := incidents.NewHandler(incidentRepo, resolver, notifier)

	// Staffing
	staffingRepo := staffing.NewRepository(pool)
	staffingHandler := staffing.NewHandler(staffingRepo, resolver)

	// Background worker (publish jobs + queued exports) runs in-process too,
	// so a single binary deployment still delivers realtime pushes.
	processor := worker.NewProcessor(jobQueue, redisPubSub, reportsSvc, logger)

	jwtValidate := func(token string) (string, error) {
		claims, err := jwtService.Validate(token)
		if err != nil {
			return "", err
		}
		return claims.UserID.String(), nil
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		adminOnly := middleware.RequireTierAtMost(roles.TierGlobal)
		// Staff placement is a management action; field and workforce staff
		// (and the dotmap role) only appear in the listings.
		staffManagers := middleware.RequireRole(
			roles.RoleSuperAdmin, roles.RolePlatformManager,
			roles.RoleGlobalAdmin, roles.RoleGlobalManager, roles.RoleRegionalManager,
			roles.RoleAdmin, roles.RoleOperationsManager, roles.RoleTaskAdmin,
		)

		// Companies
		api.POST("/companies", adminOnly, companyHandler.Create)
		api.GET("/companies/:id", companyHandler.Get)
		api.GET("/companies/:id/sub-companies", companyHandler.ListSubCompanies)
		api.GET("/companies/:id/events", eventHandler.ListByCompany)

		// Events
		api.POST("/events", eventHandler.Create)
		api.GET("/events/:id", eventHandler.Get)
		api.PUT("/events/:id", eventHandler.Update)
		api.PATCH("/events/:id/status", eventHandler.UpdateStatus)
		api.DELETE("/events/:id", eventHandler.Delete)

		// Incident divisions
		api.POST("/divisions", divisionHandler.Create)
		api.PATCH("/divisions/:id/pin", divisionHandler.TogglePin)
		api.DELETE("/divisions/:id", divisionHandler.Delete)
		api.GET("/events/:id/divisions", divisionHandler.List)
		api.POST("/events/:id/divisions/link", divisionHandler.Link)
		api.POST("/events/:id/divisions/unlink", divisionHandler.Unlink)
		api.POST("/events/:id/divisions/clone", divisionHandler.Clone)

		// Incident types
		api.POST("/incident-types", typeHandler.Create)
		api.PATCH("/incident-types/:id/pin", typeHandler.TogglePin)
		api.DELETE("/incident-types/:id", typeHandler.Delete)
		api.GET("/events/:id/incident-types", typeHandler.List)
		api.POST("/events/:id/incident-types/link", typeHandler.Link)
		api.POST("/events/:id/incident-types/unlink", typeHandler.Unlink)
		api.POST("/events/:id/incident-types/clone", typeHandler.Clone)

		// Departments
		api.POST("/departments", departmentHandler.Create)
		api.POST("/departments/:id/users", departmentHandler.AddUser)
		api.DELETE("/departments/:id/users/:user_id", departmentHandler.RemoveUser)
		api.DELETE("/departments/:id", departmentHandler.Delete)
		api.GET("/events/:id/departments", departmentHandler.List)
		api.POST("/events/:id/departments/link", departmentHandler.Link)
		api.POST("/events/:id/departments/unlink", departmentHandler.Unlink)
		api.POST("/events/:id/departments/clone", departmentHandler.Clone)

		// Incidents
		api.POST("/events/:id/incidents", incidentHandler.Create)
		api.GET("/events/:id/incidents", incidentHandler.ListByEvent)
		api.PATCH("/incidents/:id/resolve", incidentHandler.Resolve)
		api.DELETE("/incidents/:id", incidentHandler.Delete)

		// Staffing
		api.POST("/events/:id/staff/divisions", staffManagers, staffingHandler.PlaceInDivision)
		api.DELETE("/events/:id/staff/divisions", staffManagers, staffingHandler.RemoveFromDivision)
		api.PUT("/events/:id/staff/assignment", staffManagers, staffingHandler.SetAssignment)

		// Exports
		api.GET("/events/:id/exports", exportsHandler.ListByEvent)
		api.GET("/exports/:id", exportsHandler.Get)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, logger, jwtValidate))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go processor.Run(workerCtx)
	logger.Info("background worker started")

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
