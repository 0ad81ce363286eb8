package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mei-dev/tutor-center-api/api/swagger"
	"github.com/mei-dev/tutor-center-api/internal/handler"
	"github.com/mei-dev/tutor-center-api/internal/middleware"
	"github.com/mei-dev/tutor-center-api/internal/repository"
	"github.com/mei-dev/tutor-center-api/internal/service"
	"github.com/mei-dev/tutor-center-api/pkg/cache"
	"github.com/mei-dev/tutor-center-api/pkg/config"
	"github.com/mei-dev/tutor-center-api/pkg/database"
	"github.com/mei-dev/tutor-center-api/pkg/export"
	"github.com/mei-dev/tutor-center-api/pkg/logger"
	corsmiddleware "github.com/mei-dev/tutor-center-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mei-dev/tutor-center-api/pkg/middleware/requestid"
)

// @title Tutor Center API
// @version 1.0.0
// @description Management backend for a small tutoring center
// @BasePath /api/v1
// @schemes http

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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
	}

	subjectRepo := repository.NewSubjectRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, nil, logr)
	roleSvc := service.NewRoleService(roleRepo, nil, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, subjectRepo, cacheSvc, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, cacheSvc, nil, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, teacherRepo, cacheSvc, nil, logr)
	courseSvc := service.NewCourseService(courseRepo, scheduleRepo, studentRepo, cacheSvc, nil, logr)
	exportSvc := service.NewExportService(courseSvc, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	roleHandler := handler.NewRoleHandler(roleSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, courseSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		subjects := api.Group("/subjects")
		subjects.GET("", subjectHandler.List)
		subjects.POST("", subjectHandler.Create)
		subjects.GET("/:id", subjectHandler.Get)
		subjects.PUT("/:id", subjectHandler.Update)
		subjects.DELETE("/:id", subjectHandler.Delete)

		roles := api.Group("/roles")
		roles.GET("", roleHandler.List)
		roles.POST("", roleHandler.Create)
		roles.GET("/:id", roleHandler.Get)
		roles.PUT("/:id", roleHandler.Update)
		roles.DELETE("/:id", roleHandler.Delete)

		teachers := api.Group("/teachers")
		teachers.GET("", teacherHandler.List)
		teachers.POST("", teacherHandler.Create)
		teachers.GET("/:id", teacherHandler.Get)
		teachers.PUT("/:id", teacherHandler.Update)
		teachers.DELETE("/:id", teacherHandler.Delete)

		students := api.Group("/students")
		students.GET("", studentHandler.List)
		students.POST("", studentHandler.Create)
		students.GET("/:id", studentHandler.Get)
		students.PUT("/:id", studentHandler.Update)
		students.DELETE("/:id", studentHandler.Delete)
		students.GET("/:id/courses", studentHandler.ListCourses)

		schedules := api.Group("/schedules")
		schedules.GET("", scheduleHandler.List)
		schedules.POST("", scheduleHandler.Create)
		schedules.GET("/:id", scheduleHandler.Get)
		schedules.PUT("/:id", scheduleHandler.Update)
		schedules.DELETE("/:id", scheduleHandler.Delete)

		courses := api.Group("/courses")
		courses.GET("", courseHandler.List)
		courses.POST("", courseHandler.Create)
		courses.GET("/:id", courseHandler.Get)
		courses.PUT("/:id", courseHandler.Update)
		courses.DELETE("/:id", courseHandler.Delete)
		courses.GET("/:id/roster", courseHandler.DownloadRoster)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
