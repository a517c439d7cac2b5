package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"realtysite/internal/assets"
	"realtysite/internal/config"
	applog "realtysite/internal/log"
	"realtysite/internal/publication"
	"realtysite/internal/repos"
	"realtysite/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler    *AuthHandler
	PageHandler    *PageHandler
	ContentHandler *ContentHandler
	AdminHandler   *AdminHandler
	ListingHandler *ListingHandler
}

// NewDeps wires repositories, services and handlers over one database and
// one asset store. now is the clock used for visibility decisions.
func NewDeps(db *sqlx.DB, cfg config.Config, store assets.Store, log *zap.Logger, now func() time.Time) *Deps {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	contentRepo := repos.NewContentRepo(db)
	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}

	contentSvc := services.NewContentService(contentRepo, store, log.Named("content"))
	contentSvc.Now = now
	pubSvc := services.NewPublicationService(contentRepo, publication.NewEngine(log.Named("publication")))
	listingSvc := services.NewListingService(repos.NewListingRepo(db), log.Named("listings"))
	listingSvc.Now = now

	return &Deps{
		Auth:           authSvc,
		AuthHandler:    &AuthHandler{Auth: authSvc, SecureCookie: cfg.CookieSecure},
		PageHandler:    &PageHandler{Pub: pubSvc, Now: now},
		ContentHandler: &ContentHandler{Pub: pubSvc, Assets: store, Now: now},
		AdminHandler: &AdminHandler{
			Content: contentSvc, Pub: pubSvc, Now: now,
			Loc: cfg.Location(), MaxUpload: cfg.MaxUploadBytes(),
		},
		ListingHandler: &ListingHandler{Listings: listingSvc},
	}
}

// Mount registers every route. Global middleware is the caller's business.
func (d *Deps) Mount(app *fiber.App) {
	// Public pages
	app.Get("/", d.PageHandler.Home)
	app.Get("/events", d.PageHandler.Events)
	for _, p := range []string{"about", "development", "services", "team"} {
		app.Get("/"+p, d.PageHandler.Static(p))
	}
	app.Get("/assets/:key", d.ContentHandler.Asset)

	// API
	api := app.Group("/api/v1")
	api.Get("/content/:kind", d.ContentHandler.Visible)
	api.Get("/listings/:id", d.ListingHandler.Get)

	// Auth routes (login throttled)
	app.Get("/login", d.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), d.AuthHandler.Login)
	app.Post("/logout", d.AuthHandler.Logout)

	// Admin
	admin := app.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/", d.AdminHandler.Dashboard)
	admin.Post("/content", d.AdminHandler.Create)
	admin.Get("/content/:id", d.AdminHandler.Get)
	admin.Post("/content/:id/schedule", d.AdminHandler.Schedule)
	admin.Post("/content/:id/force-push", d.AdminHandler.ForcePush)
	admin.Post("/content/:id/archive", d.AdminHandler.Archive)
	admin.Post("/content/:id/reinstate", d.AdminHandler.Reinstate)
	admin.Post("/content/:id/unschedule", d.AdminHandler.Unschedule)
	admin.Post("/property-details/validate", d.ListingHandler.ValidateDetails)
	admin.Post("/listings", d.ListingHandler.Save)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
