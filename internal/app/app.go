package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "taskflow/docs"
	"taskflow/internal/cache"
	"taskflow/internal/config"
	"taskflow/internal/handlers"
	"taskflow/internal/logging"
	"taskflow/internal/middleware"
	"taskflow/internal/pdf"
	"taskflow/internal/repositories"
	"taskflow/internal/routes"
	"taskflow/internal/scheduler"
	"taskflow/internal/services"
	"taskflow/internal/storage"
)

// Stack is the wired set of stores and services shared by the HTTP server
// and the command line tool.
type Stack struct {
	Config   *config.Config
	DB       *sql.DB
	Users    repositories.UserRepository
	Tasks    services.TaskService
	Subtasks services.SubtaskService
	Projects services.ProjectService
	Reports  *services.ReportService
	Exports  *services.ExportService

	cache *cache.ExportCache
}

// Build opens the database, applies migrations and wires the report stack.
func Build(ctx context.Context, cfg *config.Config) (*Stack, error) {
	if err := logging.Init(cfg.Logging); err != nil {
		return nil, err
	}
	log := logging.Component("app")

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := storage.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	taskRepo := repositories.NewTaskRepository(db)
	subtaskRepo := repositories.NewSubtaskRepository(db)

	reports := services.NewReportService(taskRepo, subtaskRepo, projectRepo, userRepo, cfg.Reports.Departments)

	s := &Stack{
		Config:   cfg,
		DB:       db,
		Users:    userRepo,
		Tasks:    services.NewTaskService(taskRepo),
		Subtasks: services.NewSubtaskService(subtaskRepo, taskRepo),
		Projects: services.NewProjectService(projectRepo, userRepo),
		Reports:  reports,
	}

	var store services.ExportStore
	if cfg.Cache.TTL > 0 && cfg.Redis.Addr != "" {
		c, err := cache.NewExportCache(ctx, cfg.Redis.Addr, cfg.Cache.TTL)
		if err != nil {
			// rendering still works without the cache
			log.Warn().Err(err).Msg("[app] export cache disabled")
		} else {
			s.cache = c
			store = c
		}
	}
	s.Exports = services.NewExportService(reports, pdf.NewRenderer(pdfLauncher(cfg.PDF)), store)
	return s, nil
}

func (s *Stack) Close() {
	log := logging.Component("app")
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			log.Warn().Err(err).Msg("[app] close cache")
		}
	}
	if err := s.DB.Close(); err != nil {
		log.Warn().Err(err).Msg("[app] close database")
	}
}

func pdfLauncher(cfg config.PDFConfig) pdf.Launcher {
	if cfg.Engine == "fpdf" {
		return pdf.FPDFLauncher{FontPath: cfg.FontPath}
	}
	return pdf.ChromeLauncher{ExecPath: cfg.ChromePath}
}

// Mailer picks the configured mail provider.
func Mailer(cfg *config.Config) services.Mailer {
	if cfg.Mail.Provider == "sendgrid" {
		return services.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	return services.NewSMTPMailer(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(s *Stack) *gin.Engine {
	cfg := s.Config
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		if err := s.DB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	secret := []byte(cfg.Auth.JWTSecret)
	routes.SetupRoutes(
		router,
		secret,
		handlers.NewAuthHandler(s.Users, secret, cfg.Auth.AccessTTL),
		handlers.NewTaskHandler(s.Tasks, s.Subtasks),
		handlers.NewProjectHandler(s.Projects),
		handlers.NewReportHandler(s.Exports, s.Reports.Departments()),
	)
	return router
}

// Run starts the HTTP server and the report scheduler and blocks until
// SIGINT or SIGTERM.
func Run() error {
	cfg := config.LoadConfig()
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	log := logging.Component("app")

	var chat scheduler.ChatSender
	if cfg.Telegram.BotToken != "" {
		tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken)
		if err != nil {
			log.Warn().Err(err).Msg("[app] telegram delivery disabled")
		} else {
			chat = tg
		}
	}
	sched := scheduler.New(s.Exports, Mailer(cfg), chat)
	for _, job := range cfg.Schedules {
		if err := sched.Add(job); err != nil {
			return err
		}
	}
	sched.Start()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           NewRouter(s),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("[app] server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	sched.Stop(shutdownCtx)
	log.Info().Msg("[app] shutting down")
	return srv.Shutdown(shutdownCtx)
}
