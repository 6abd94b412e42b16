package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"drystore-backend/internal/access"
	"drystore-backend/internal/assets"
	"drystore-backend/internal/audit"
	"drystore-backend/internal/config"
	"drystore-backend/internal/database"
	"drystore-backend/internal/entries"
	"drystore-backend/internal/filter"
	"drystore-backend/internal/hierarchy"
	"drystore-backend/internal/httpapi"
	"drystore-backend/internal/logger"
	"drystore-backend/internal/metrics"
	"drystore-backend/internal/report"
	"drystore-backend/internal/session"
	"drystore-backend/internal/users"
	"drystore-backend/internal/workspace"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stores struct {
	hierarchy hierarchy.Store
	users     users.Store
	entries   entries.Repository
	audit     audit.Store
}

func openStores(cfg *config.Config, zlog *zap.Logger) (*stores, *gorm.DB, error) {
	if cfg.StoreDriver == "memory" {
		zlog.Warn("using in-memory stores, data is lost on restart")
		return &stores{
			hierarchy: hierarchy.NewMemoryStore(),
			users:     users.NewMemoryStore(),
			entries:   entries.NewMemoryRepository(),
			audit:     audit.NewMemoryStore(),
		}, nil, nil
	}

	db, err := database.Open(cfg.DatabaseDSN, zlog)
	if err != nil {
		return nil, nil, err
	}
	return &stores{
		hierarchy: hierarchy.NewGormStore(db),
		users:     users.NewGormStore(db),
		entries:   entries.NewGormRepository(db),
		audit:     audit.NewGormStore(db),
	}, db, nil
}

func openSessions(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (session.Registry, *redis.Client, error) {
	if cfg.Session.Driver != "redis" {
		return session.NewMemoryRegistry(), nil, nil
	}
	client := session.NewRedisClient(cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB)
	if err := session.Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	zlog.Info("session registry on redis", zap.String("addr", cfg.Session.RedisAddr))
	return session.NewRedisRegistry(client), client, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "drystore-backend")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()

	st, db, err := openStores(cfg, zlog)
	if err != nil {
		zlog.Fatal("open stores", zap.Error(err))
	}
	if db != nil {
		defer func() {
			if err := database.Close(db); err != nil {
				zlog.Warn("close database", zap.Error(err))
			}
		}()
	}

	sessions, rdb, err := openSessions(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("open session registry", zap.Error(err))
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	logo, err := assets.Open(ctx, assets.Config{
		Driver:     assets.Driver(cfg.Logo.Driver),
		Path:       cfg.Logo.Path,
		S3Bucket:   cfg.Logo.S3Bucket,
		S3Region:   cfg.Logo.S3Region,
		S3Endpoint: cfg.Logo.S3Endpoint,
		URL:        cfg.Logo.URL,
		Timeout:    cfg.Logo.Timeout,
	})
	if err != nil {
		zlog.Warn("logo source unavailable, reports use a text-only header", zap.Error(err))
		logo = nil
	}

	m := metrics.New()
	policy := access.NewPolicy()

	hier := hierarchy.NewService(st.hierarchy, zlog, st.users, st.entries)
	if cfg.SeedLayout {
		if err := hier.Seed(ctx, hierarchy.DefaultLayout); err != nil {
			zlog.Fatal("seed layout", zap.Error(err))
		}
	}

	entrySvc := entries.NewService(st.entries, hier, policy, zlog, entries.Options{
		HistoryLimit: cfg.History.Limit,
		WindowDays:   cfg.History.WindowDays,
		Metrics:      m,
	})
	userSvc := users.NewService(st.users, hier, policy, zlog)
	auditSvc := audit.NewService(st.audit, zlog)
	renderer := report.NewRenderer(zlog, report.Options{
		Prefix:      cfg.Report.Prefix,
		OrgLine:     cfg.Report.OrgLine,
		RowsPerPage: cfg.Report.RowsPerPage,
		Logo:        logo,
		Metrics:     m,
	})
	composer := filter.NewComposer(st.entries, zlog, m, cfg.History.RecentLimit)
	ws := workspace.New(composer, renderer, sessions, policy, zlog, m)

	app := fiber.New(fiber.Config{
		ErrorHandler: httpapi.ErrorHandler(zlog),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.CORSOriginList(), ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "Content-Disposition",
	}))
	app.Use(logger.RequestLogger(zlog))

	httpapi.Register(app, httpapi.Deps{
		JWTSecret: cfg.JWTSecret,
		Hierarchy: hier,
		Entries:   entrySvc,
		Users:     userSvc,
		Audit:     auditSvc,
		Workspace: ws,
		Renderer:  renderer,
		Sessions:  sessions,
		Policy:    policy,
		Metrics:   m,
		Log:       zlog,
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		zlog.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("shutdown", zap.Error(err))
		}
	}()

	zlog.Info("server listening", zap.String("port", cfg.HTTPPort), zap.String("store", cfg.StoreDriver))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		zlog.Error("server stopped", zap.Error(err))
	}
}
