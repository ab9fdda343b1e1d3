package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/fets-ops/console-api/api/swagger"
	"github.com/fets-ops/console-api/internal/handler"
	"github.com/fets-ops/console-api/internal/middleware"
	"github.com/fets-ops/console-api/internal/models"
	"github.com/fets-ops/console-api/internal/permissions"
	"github.com/fets-ops/console-api/internal/repository"
	"github.com/fets-ops/console-api/internal/service"
	"github.com/fets-ops/console-api/pkg/cache"
	"github.com/fets-ops/console-api/pkg/config"
	"github.com/fets-ops/console-api/pkg/database"
	"github.com/fets-ops/console-api/pkg/logger"
	corsmiddleware "github.com/fets-ops/console-api/pkg/middleware/cors"
	reqidmiddleware "github.com/fets-ops/console-api/pkg/middleware/requestid"
	"github.com/fets-ops/console-api/pkg/storage"
)

// @title FETS Operations Console API
// @version 1.0.0
// @description Exam center operations console: sessions, candidates, rostering, requests, checklists, incidents and the staff wall
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	validate := validator.New()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	versionRepo := repository.NewRosterVersionRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	wallRepo := repository.NewWallRepository(db)
	exportRepo := repository.NewExportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services
	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "fets-console",
	})
	userService := service.NewUserService(userRepo, validate, logr)
	staffService := service.NewStaffService(staffRepo, validate, logr)
	sessionService := service.NewSessionService(sessionRepo, validate, logr)
	candidateService := service.NewCandidateService(candidateRepo, validate, logr)
	scheduleService := service.NewScheduleService(scheduleRepo, versionRepo, staffRepo, validate, logr,
		models.ShiftCode(cfg.Roster.DefaultShift), models.ShiftCode(cfg.Roster.RestShift))
	leaveService := service.NewLeaveService(leaveRepo, scheduleRepo, versionRepo, userRepo, validate, logr)
	checklistService := service.NewChecklistService(checklistRepo, validate, logr)
	incidentService := service.NewIncidentService(incidentRepo, validate, logr)
	wallService := service.NewWallService(wallRepo, validate, logr)
	dashboardService := service.NewDashboardService(service.DashboardServiceParams{
		Sessions:   sessionRepo,
		Candidates: candidateRepo,
		Leaves:     leaveRepo,
		Incidents:  incidentRepo,
		Staff:      staffRepo,
		Cache:      cacheRepo,
		Logger:     logr,
		CacheTTL:   cfg.Dashboard.CacheTTL,
	})
	exportService := service.NewExportService(service.ExportServiceParams{
		Repo:       exportRepo,
		Roster:     scheduleRepo,
		Staff:      staffRepo,
		Store:      store,
		Signer:     signer,
		Logger:     logr,
		FileTTL:    cfg.Exports.SignedURLTTL,
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
	})

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	staffHandler := handler.NewStaffHandler(staffService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	candidateHandler := handler.NewCandidateHandler(candidateService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	leaveHandler := handler.NewLeaveHandler(leaveService)
	checklistHandler := handler.NewChecklistHandler(checklistService)
	incidentHandler := handler.NewIncidentHandler(incidentService)
	wallHandler := handler.NewWallHandler(wallService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	exportHandler := handler.NewExportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
		auth.PUT("/password", middleware.JWT(authService), authHandler.ChangePassword)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	// Download links carry their own HMAC token, so no JWT here.
	api.GET("/exports/download", exportHandler.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))
	{
		users := protected.Group("/users", middleware.Permit(permissions.ActionManageUsers))
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.POST("", userHandler.Create)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Deactivate)
		}

		staff := protected.Group("/staff")
		{
			staff.GET("", middleware.Permit(permissions.ActionViewStaff), staffHandler.List)
			staff.GET("/:id", middleware.Permit(permissions.ActionViewStaff), staffHandler.Get)
			staff.POST("", middleware.Permit(permissions.ActionManageStaff), staffHandler.Create)
			staff.PUT("/:id", middleware.Permit(permissions.ActionManageStaff), staffHandler.Update)
			staff.PUT("/:id/status", middleware.Permit(permissions.ActionManageStaff), staffHandler.SetStatus)
		}

		sessions := protected.Group("/sessions")
		{
			sessions.GET("", middleware.Permit(permissions.ActionViewSessions), sessionHandler.List)
			sessions.GET("/capacity", middleware.Permit(permissions.ActionViewSessions), sessionHandler.CheckDate)
			sessions.GET("/:id", middleware.Permit(permissions.ActionViewSessions), sessionHandler.Get)
			sessions.POST("", middleware.Permit(permissions.ActionManageSessions), sessionHandler.Create)
			sessions.PUT("/:id", middleware.Permit(permissions.ActionManageSessions), sessionHandler.Update)
			sessions.DELETE("/:id", middleware.Permit(permissions.ActionManageSessions), sessionHandler.Delete)
		}

		candidates := protected.Group("/candidates", middleware.Permit(permissions.ActionManageCandidates))
		{
			candidates.GET("", candidateHandler.List)
			candidates.GET("/:id", candidateHandler.Get)
			candidates.POST("", candidateHandler.Create)
			candidates.PUT("/:id", candidateHandler.Update)
			candidates.PUT("/:id/status", candidateHandler.SetStatus)
			candidates.DELETE("/:id", candidateHandler.Delete)
			candidates.POST("/import", middleware.Permit(permissions.ActionImportCandidates), candidateHandler.Import)
		}

		roster := protected.Group("/roster")
		{
			roster.GET("", middleware.Permit(permissions.ActionViewRoster), scheduleHandler.Grid)
			roster.GET("/staff/:id", middleware.Permit(permissions.ActionViewRoster), scheduleHandler.StaffSchedule)
			roster.GET("/versions", middleware.Permit(permissions.ActionViewRoster), scheduleHandler.Versions)
			roster.PUT("/shifts", middleware.Permit(permissions.ActionEditRoster), scheduleHandler.UpsertShift)
			roster.DELETE("/shifts/:staffId/:date", middleware.Permit(permissions.ActionEditRoster), scheduleHandler.ClearShift)
			roster.POST("/quick-add", middleware.Permit(permissions.ActionEditRoster),
				middleware.Audit(userRepo, models.AuditActionRosterEdit, "roster"), scheduleHandler.QuickAdd)
		}

		requests := protected.Group("/requests")
		{
			requests.GET("", middleware.Permit(permissions.ActionSubmitRequests), leaveHandler.List)
			requests.GET("/:id", middleware.Permit(permissions.ActionSubmitRequests), leaveHandler.Get)
			requests.POST("", middleware.Permit(permissions.ActionSubmitRequests), leaveHandler.Submit)
			requests.POST("/:id/approve", middleware.Permit(permissions.ActionDecideRequests), leaveHandler.Approve)
			requests.POST("/:id/reject", middleware.Permit(permissions.ActionDecideRequests), leaveHandler.Reject)
		}

		checklists := protected.Group("/checklists")
		{
			checklists.GET("/templates", middleware.Permit(permissions.ActionUseChecklists), checklistHandler.ListTemplates)
			checklists.GET("/templates/:id", middleware.Permit(permissions.ActionUseChecklists), checklistHandler.GetTemplate)
			checklists.POST("/templates", middleware.Permit(permissions.ActionManageChecklists), checklistHandler.CreateTemplate)
			checklists.DELETE("/templates/:id", middleware.Permit(permissions.ActionManageChecklists), checklistHandler.DeleteTemplate)
			checklists.GET("/instances", middleware.Permit(permissions.ActionUseChecklists), checklistHandler.ListInstances)
			checklists.GET("/instances/:id", middleware.Permit(permissions.ActionUseChecklists), checklistHandler.GetInstance)
			checklists.POST("/instances", middleware.Permit(permissions.ActionManageChecklists), checklistHandler.Instantiate)
			checklists.PUT("/items/:itemId", middleware.Permit(permissions.ActionUseChecklists), checklistHandler.SetItemCompletion)
		}

		incidents := protected.Group("/incidents")
		{
			incidents.GET("", middleware.Permit(permissions.ActionReportIncidents), incidentHandler.List)
			incidents.GET("/:id", middleware.Permit(permissions.ActionReportIncidents), incidentHandler.Get)
			incidents.POST("", middleware.Permit(permissions.ActionReportIncidents), incidentHandler.Create)
			incidents.PUT("/:id", middleware.Permit(permissions.ActionManageIncidents), incidentHandler.Update)
			incidents.DELETE("/:id", middleware.Permit(permissions.ActionManageIncidents), incidentHandler.Delete)
		}

		wall := protected.Group("/wall", middleware.Permit(permissions.ActionPostToWall))
		{
			wall.GET("", wallHandler.Feed)
			wall.POST("", wallHandler.CreatePost)
			wall.DELETE("/:id", wallHandler.DeletePost)
			wall.GET("/:id/comments", wallHandler.Comments)
			wall.POST("/:id/comments", wallHandler.AddComment)
			wall.POST("/:id/like", wallHandler.Like)
			wall.DELETE("/:id/like", wallHandler.Unlike)
		}

		protected.GET("/dashboard", middleware.Permit(permissions.ActionViewDashboard), dashboardHandler.Summary)

		exports := protected.Group("/exports", middleware.Permit(permissions.ActionExportRoster))
		{
			exports.POST("", exportHandler.Request)
			exports.GET("/:id", exportHandler.Status)
			exports.GET("/:id/download", exportHandler.DownloadLink)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exportService.Start(ctx)
	defer exportService.Stop()
	go exportService.CleanupLoop(ctx, cfg.Exports.CleanupInterval)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}
