package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Eman21-ctr/milk-management-app/internal/dairy/handler"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/job"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/sse"
	"github.com/Eman21-ctr/milk-management-app/internal/database"
	"github.com/Eman21-ctr/milk-management-app/internal/middleware"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, event stream and scheduled jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()
		return serve(app)
	},
}

func serve(app *application) error {
	cfg, zapLogger := app.cfg, app.logger

	zapLogger.Info("Starting flowmilk service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("db_driver", cfg.Database.Driver),
	)

	if err := database.Migrate(app.db); err != nil {
		return err
	}

	hub := sse.NewHub(zapLogger)
	app.deps.Events = hub
	app.wire()
	handlers := handler.NewHandlers(app.services, hub, zapLogger)

	jobs := job.Jobs(cfg.Cron.OverdueSchedule, app.services.Invoice, app.services.Auth, app.opts.Now)
	scheduler, err := job.NewScheduler(app.opts.Location, zapLogger, jobs)
	if err != nil {
		return err
	}
	scheduler.Start()

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(zapLogger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	// 事件流不压缩，否则会被缓冲
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/events"})))

	handler.RegisterRoutes(router, handlers, cfg.JWT.Secret, app.repos.RevokedToken)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // SSE长连接
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	scheduler.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
	return nil
}
