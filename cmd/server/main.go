package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"anoa.com/welfaredesk/internal/bootstrap"
	"anoa.com/welfaredesk/internal/config"
	"anoa.com/welfaredesk/internal/server"
	"anoa.com/welfaredesk/pkg/credential"
	"anoa.com/welfaredesk/pkg/database"
	"anoa.com/welfaredesk/pkg/logger"
	"anoa.com/welfaredesk/pkg/media"
	"anoa.com/welfaredesk/pkg/metrics"
	"anoa.com/welfaredesk/pkg/ratelimit"
	"anoa.com/welfaredesk/pkg/storage"
	"anoa.com/welfaredesk/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	actionRepo "anoa.com/welfaredesk/internal/modules/action/repository"
	beneficiaryRepo "anoa.com/welfaredesk/internal/modules/beneficiary/repository"
	tokenRepo "anoa.com/welfaredesk/internal/modules/token/repository"
	userRepo "anoa.com/welfaredesk/internal/modules/user/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.AppEnv,
		ServiceName: "welfaredesk",
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	zap.ReplaceGlobals(zlog)

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := validator.RegisterWithGin(); err != nil {
		return err
	}

	db, err := database.Connect(ctx, cfg.Database.DSN(), zlog)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := bootstrap.Migrate(db); err != nil {
		return err
	}
	if err := bootstrap.SeedAdmin(ctx, db, cfg.SeedAdminEmail, cfg.SeedAdminPassword, zlog); err != nil {
		return err
	}

	imageStorage, err := storage.NewCloudinaryStorage(storage.CloudinaryConfig{
		URL:       cfg.CloudinaryURL,
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	})
	if err != nil {
		return err
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = ratelimit.Connect(ctx, cfg.RedisURL)
		if err != nil {
			zlog.Warn("redis unavailable, login attempts are counted in memory", zap.Error(err))
		} else {
			defer rdb.Close()
			zlog.Info("connected to redis")
		}
	}
	throttle := ratelimit.New(rdb, cfg.LoginMaxAttempts, cfg.LoginLockout, zlog)

	m := metrics.New("welfaredesk")

	stager, err := media.NewStager(imageStorage, cfg.UploadTmpDir, zlog)
	if err != nil {
		return err
	}
	stager.SetObserver(m)

	srv := server.NewServer(server.Deps{
		Accounts:       userRepo.NewAccountRepository(db),
		Beneficiaries:  beneficiaryRepo.NewBeneficiaryRepository(db),
		Tokens:         tokenRepo.NewTokenRepository(db),
		Actions:        actionRepo.NewActionRepository(db),
		Credentials:    credential.NewManager(cfg.AuthSecret, cfg.JWTTTL),
		Uploader:       stager,
		Logger:         zlog,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
		LoginThrottle:  throttle,
		Ready:          pinger(db),
	}, server.Options{
		Addr:         ":" + cfg.Port,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func pinger(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
