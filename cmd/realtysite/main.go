package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"realtysite/internal/assets"
	"realtysite/internal/config"
	"realtysite/internal/http/handlers"
	applog "realtysite/internal/log"
	"realtysite/internal/repos"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[config] %v", err)
	}

	zl, err := applog.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("[log] %v", err)
	}
	defer func() { _ = zl.Sync() }()
	applog.SetLogger(zl)

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		zl.Fatal("db.open", zap.Error(err))
	}
	defer db.Close()

	store, closeStore, err := openAssetStore(cfg)
	if err != nil {
		zl.Fatal("assets.open", zap.String("store", cfg.AssetStore), zap.Error(err))
	}
	defer closeStore()

	deps := handlers.NewDeps(db, cfg, store, zl, time.Now)

	// Templates & app
	engine := html.New(cfg.TemplatesDir, ".html")
	engine.Reload(true)

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: handlers.ErrorHandler,
	})
	// Body size guard sized for the flyer upload form
	app.Server().MaxRequestBodySize = cfg.MaxUploadBytes()

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(handlers.LoadUser(deps.Auth))
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/assets/")
		},
	}))
	app.Use(csrf.New(handlers.CSRFConfig(cfg.CookieSecure)))

	app.Static("/static", cfg.StaticDir)
	deps.Mount(app)
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	go func() {
		zl.Info("server.start", zap.String("port", cfg.Port), zap.String("assets", cfg.AssetStore))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zl.Error("server.listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("server.shutdown")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zl.Error("server.shutdown", zap.Error(err))
	}
}

func openAssetStore(cfg config.Config) (assets.Store, func(), error) {
	switch cfg.AssetStore {
	case "gridfs":
		s, err := assets.NewGridFSStore(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.Close(ctx)
		}, nil
	default:
		s, err := assets.NewLocalStore(cfg.MediaDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
}
