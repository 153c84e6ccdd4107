package main

import (
	"context"
	"fmt"
	"log"
	"os"
	_ "time/tzdata"

	"github.com/Eman21-ctr/milk-management-app/internal/config"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/repository"
	"github.com/Eman21-ctr/milk-management-app/internal/dairy/service"
	"github.com/Eman21-ctr/milk-management-app/internal/database"
	"github.com/Eman21-ctr/milk-management-app/internal/shared/cache"
	"github.com/Eman21-ctr/milk-management-app/internal/shared/storage"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "flowmilk",
	Short: "FlowMilk dairy distribution ledger for KDMP Penfui Timur",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// 加载 .env 文件
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found, using environment variables")
		}
	},
}

func main() {
	rootCmd.Version = Version
	rootCmd.AddCommand(serveCmd, migrateCmd, markOverdueCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the ledger tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()
		if err := database.Migrate(app.db); err != nil {
			return err
		}
		app.logger.Info("Migration completed")
		return nil
	},
}

var markOverdueCmd = &cobra.Command{
	Use:   "mark-overdue",
	Short: "Mark unpaid invoices past their due date as overdue and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close()
		app.wire()
		n, err := app.services.Invoice.MarkOverdue(cmd.Context(), app.opts.Now())
		if err != nil {
			return err
		}
		fmt.Printf("%d invoice(s) marked overdue\n", n)
		return nil
	},
}

// application 进程内共享的组件
type application struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *gorm.DB
	rdb      *redis.Client
	repos    *repository.Repositories
	opts     service.Options
	deps     service.Deps
	services *service.Services
}

// bootstrap 加载配置并连接数据库、Redis、MinIO
func bootstrap(ctx context.Context) (*application, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	db, err := database.Open(cfg.Database, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	app := &application{
		cfg:    cfg,
		logger: zapLogger,
		db:     db,
		repos:  repository.NewRepositories(db),
		opts:   service.OptionsFromConfig(cfg),
	}

	if cfg.Redis.Enabled() {
		rdb := initRedis(cfg.Redis)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zapLogger.Warn("Redis unavailable, running without cache and distributed locks", zap.Error(err))
			rdb.Close()
		} else {
			app.rdb = rdb
			app.deps.Cache = cache.New(rdb)
			app.deps.Locker = cache.NewLocker(rdb)
		}
	}

	if cfg.MinIO.Endpoint != "" {
		store, err := storage.NewMinIO(ctx, cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket, cfg.MinIO.UseSSL)
		if err != nil {
			zapLogger.Warn("MinIO unavailable, document archiving disabled", zap.Error(err))
		} else {
			app.deps.Storage = store
		}
	}

	return app, nil
}

// wire 创建服务集合，serve 需要先注入事件推送
func (a *application) wire() {
	a.services = service.NewServices(a.repos, a.opts, a.deps, a.logger)
}

func (a *application) close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	a.logger.Sync()
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
