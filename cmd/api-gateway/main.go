package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vqdung71104/student-management-sub000/api/swagger"
	"github.com/vqdung71104/student-management-sub000/internal/handler"
	"github.com/vqdung71104/student-management-sub000/internal/middleware"
	"github.com/vqdung71104/student-management-sub000/internal/repository"
	"github.com/vqdung71104/student-management-sub000/internal/service"
	"github.com/vqdung71104/student-management-sub000/pkg/cache"
	"github.com/vqdung71104/student-management-sub000/pkg/config"
	"github.com/vqdung71104/student-management-sub000/pkg/database"
	"github.com/vqdung71104/student-management-sub000/pkg/jobs"
	"github.com/vqdung71104/student-management-sub000/pkg/logger"
	corsmiddleware "github.com/vqdung71104/student-management-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/vqdung71104/student-management-sub000/pkg/middleware/requestid"
	"github.com/vqdung71104/student-management-sub000/pkg/storage"
)

// @title Schedule Advisor API
// @version 1.0.0
// @description Conversational course-schedule suggestion backend
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	sectionRepo := repository.NewClassSectionRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)
	conversationRepo := repository.NewConversationRepository(redisClient, cfg.Conversation.StateTTL)

	authSvc := service.NewAuthService(studentRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "schedule-advisor",
	})
	conversationSvc := service.NewConversationService(conversationRepo, logr)
	generator := service.NewCombinationGenerator(metricsSvc, logr)
	scheduleSvc := service.NewScheduleService(sectionRepo, cacheRepo, conversationSvc, generator, metricsSvc, validate, logr, cfg.Scheduler)
	subjectSvc := service.NewSubjectService(subjectRepo, sectionRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	conversationHandler := handler.NewConversationHandler(conversationSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/subjects", subjectHandler.List)
	protected.GET("/subjects/:id", subjectHandler.Get)
	protected.GET("/subjects/:id/sections", subjectHandler.ListSections)

	protected.GET("/conversation/question", conversationHandler.Question)
	protected.POST("/conversation/answer", conversationHandler.Answer)
	protected.GET("/conversation/status", conversationHandler.Status)
	protected.DELETE("/conversation", conversationHandler.Reset)

	protected.POST("/schedule/suggest", scheduleHandler.Suggest)

	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportJobRepo := repository.NewExportJobRepository(db)
		exportSvc := service.NewExportService(sectionRepo, store, signer, service.ExportConfig{
			APIPrefix:    cfg.APIPrefix,
			ResultTTL:    cfg.Exports.SignedURLTTL,
			WeeksPerTerm: cfg.Scheduler.WeeksPerTerm,
		}, logr, nil, nil)

		worker := service.NewExportWorker(exportJobRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
		queue := jobs.NewQueue("timetable-exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		exportJobSvc := service.NewExportJobService(exportJobRepo, queue, exportSvc, logr, service.ExportJobServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportJobSvc.RecoverPendingJobs(ctx)
		exportJobSvc.StartCleanup(ctx)

		exportHandler := handler.NewExportHandler(exportJobSvc)
		protected.POST("/schedule/export", exportHandler.CreateExport)
		protected.GET("/schedule/export/:id", exportHandler.ExportStatus)
		api.GET("/schedule/export/download/:token", exportHandler.DownloadExport)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		logr.Sugar().Infow("shutting down")
		_ = server.Shutdown(context.Background())
	}()

	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
