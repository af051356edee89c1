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

	_ "github.com/coronacion-creator/colegio-api/api/swagger"
	"github.com/coronacion-creator/colegio-api/internal/audit"
	"github.com/coronacion-creator/colegio-api/internal/handler"
	"github.com/coronacion-creator/colegio-api/internal/middleware"
	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/internal/repository"
	"github.com/coronacion-creator/colegio-api/internal/service"
	"github.com/coronacion-creator/colegio-api/pkg/cache"
	"github.com/coronacion-creator/colegio-api/pkg/config"
	"github.com/coronacion-creator/colegio-api/pkg/database"
	"github.com/coronacion-creator/colegio-api/pkg/logger"
	corsmiddleware "github.com/coronacion-creator/colegio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/coronacion-creator/colegio-api/pkg/middleware/requestid"
)

// @title Colegio API
// @version 1.0.0
// @description Transactional operations layer for multi-site school management
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

	// Repositories.
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	userRepo := repository.NewUserRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db, cfg.Locking)
	evaluationRepo := repository.NewEvaluationRepository(db, cfg.Locking)
	paymentRepo := repository.NewPaymentRepository(db, cfg.Locking)
	inventoryRepo := repository.NewInventoryRepository(db, cfg.Locking)
	classroomRepo := repository.NewClassroomRepository(db, cfg.Locking)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Async audit trail. Delivery failures are logged, never surfaced.
	recorder := audit.NewRecorder(auditRepo, cfg.Audit, logr)
	recorder.Start(ctx)
	defer recorder.Stop()

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, teacherRepo, validate, logr)
	siteSvc := service.NewSiteService(siteRepo, cacheRepo, cfg.Cache, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, validate, logr)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, enrollmentRepo, cfg.Grading, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, validate, logr)
	inventorySvc := service.NewInventoryService(inventoryRepo, studentRepo, validate, logr)
	classroomSvc := service.NewClassroomService(classroomRepo, courseRepo, validate, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	siteHandler := handler.NewSiteHandler(siteSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	evaluationHandler := handler.NewEvaluationHandler(evaluationSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	inventoryHandler := handler.NewInventoryHandler(inventorySvc)
	classroomHandler := handler.NewClassroomHandler(classroomSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/me", authHandler.Me)

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	cashier := middleware.RequireRoles(models.RoleAdmin, models.RoleCashier)

	authed.GET("/sites", siteHandler.List)
	authed.GET("/sites/:id", siteHandler.Get)
	authed.POST("/sites", admin, middleware.Audit(recorder, "create", "sites"), siteHandler.Create)

	authed.GET("/students", studentHandler.List)
	authed.GET("/students/:id", studentHandler.Get)
	authed.POST("/students", admin, middleware.Audit(recorder, "create", "students"), studentHandler.Create)
	authed.PUT("/students/:id", admin, middleware.Audit(recorder, "update", "students"), studentHandler.Update)
	authed.DELETE("/students/:id", admin, middleware.Audit(recorder, "deactivate", "students"), studentHandler.Deactivate)
	authed.POST("/students/:id/activate", admin, middleware.Audit(recorder, "activate", "students"), studentHandler.Activate)
	authed.GET("/students/:id/debt", cashier, paymentHandler.StudentDebt)

	authed.GET("/teachers", teacherHandler.List)
	authed.GET("/teachers/:id", teacherHandler.Get)
	authed.POST("/teachers", admin, middleware.Audit(recorder, "create", "teachers"), teacherHandler.Create)
	authed.PUT("/teachers/:id", admin, middleware.Audit(recorder, "update", "teachers"), teacherHandler.Update)
	authed.DELETE("/teachers/:id", admin, middleware.Audit(recorder, "deactivate", "teachers"), teacherHandler.Deactivate)

	authed.GET("/courses", courseHandler.List)
	authed.GET("/courses/:id", courseHandler.Get)
	authed.POST("/courses", admin, middleware.Audit(recorder, "create", "courses"), courseHandler.Create)
	authed.PUT("/courses/:id", admin, middleware.Audit(recorder, "update", "courses"), courseHandler.Update)
	authed.PUT("/courses/:id/teacher", admin, middleware.Operation(metricsSvc, "assign_teacher"), middleware.Audit(recorder, "assign-teacher", "courses"), courseHandler.AssignTeacher)

	authed.GET("/classrooms", classroomHandler.List)
	authed.GET("/classrooms/:id", classroomHandler.Get)
	authed.POST("/classrooms", admin, middleware.Audit(recorder, "create", "classrooms"), classroomHandler.Create)
	authed.GET("/classrooms/:id/courses", classroomHandler.Courses)
	authed.POST("/classrooms/:id/courses", admin, middleware.Operation(metricsSvc, "assign_course"), middleware.Audit(recorder, "assign-course", "classrooms"), classroomHandler.AssignCourse)
	authed.DELETE("/classrooms/:id/courses/:assignmentId", admin, middleware.Audit(recorder, "remove-course", "classrooms"), classroomHandler.RemoveCourse)

	authed.GET("/enrollments", enrollmentHandler.List)
	authed.GET("/enrollments/:id", enrollmentHandler.Get)
	authed.POST("/enrollments", staff, middleware.Operation(metricsSvc, "enroll"), middleware.Audit(recorder, "enroll", "enrollments"), enrollmentHandler.Enroll)
	authed.DELETE("/enrollments/:id", admin, middleware.Audit(recorder, "deactivate", "enrollments"), enrollmentHandler.Deactivate)
	authed.GET("/enrollments/:id/evaluations", evaluationHandler.ListByEnrollment)
	authed.GET("/enrollments/:id/status", evaluationHandler.AcademicStatus)

	authed.POST("/evaluations", staff, middleware.Operation(metricsSvc, "record_evaluation"), middleware.Audit(recorder, "record", "evaluations"), evaluationHandler.Record)

	authed.GET("/payments/plans", cashier, paymentHandler.ListPlans)
	authed.GET("/payments/plans/:id", cashier, paymentHandler.GetPlan)
	authed.POST("/payments/plans", admin, middleware.Audit(recorder, "create-plan", "payments"), paymentHandler.CreatePlan)
	authed.GET("/payments/installments", cashier, paymentHandler.ListInstallments)
	authed.POST("/payments/installments", admin, middleware.Audit(recorder, "create-installment", "payments"), paymentHandler.CreateInstallment)
	authed.POST("/payments", cashier, middleware.Operation(metricsSvc, "process_payment"), middleware.Audit(recorder, "process", "payments"), paymentHandler.Process)
	authed.POST("/payments/:id/reverse", cashier, middleware.Operation(metricsSvc, "reverse_payment"), middleware.Audit(recorder, "reverse", "payments"), paymentHandler.Reverse)
	authed.POST("/payments/installments/overdue", admin, middleware.Audit(recorder, "mark-overdue", "payments"), paymentHandler.MarkOverdue)

	authed.GET("/inventory", inventoryHandler.List)
	authed.GET("/inventory/:id", inventoryHandler.Get)
	authed.POST("/inventory", admin, middleware.Audit(recorder, "create", "inventory"), inventoryHandler.Create)
	authed.PUT("/inventory/:id", admin, middleware.Audit(recorder, "update", "inventory"), inventoryHandler.Update)
	authed.POST("/inventory/sell", cashier, middleware.Operation(metricsSvc, "sell_inventory"), middleware.Audit(recorder, "sell", "inventory"), inventoryHandler.Sell)
	authed.POST("/inventory/:id/restock", admin, middleware.Audit(recorder, "restock", "inventory"), inventoryHandler.Restock)
	authed.GET("/inventory/sales", cashier, inventoryHandler.Sales)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
