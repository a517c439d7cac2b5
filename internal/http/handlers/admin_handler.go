package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"realtysite/internal/assets"
	"realtysite/internal/domain"
	applog "realtysite/internal/log"
	"realtysite/internal/publication"
	"realtysite/internal/services"
	"realtysite/internal/validate"
)

// AdminHandler drives the content workflow from the CMS portal.
type AdminHandler struct {
	Content   *services.ContentService
	Pub       *services.PublicationService
	Now       func() time.Time
	Loc       *time.Location
	MaxUpload int
}

type adminItem struct {
	domain.ContentItem
	EffectiveState domain.State `json:"effectiveState"`
	Eligible       bool         `json:"eligible"`
}

func (h *AdminHandler) view(it domain.ContentItem) adminItem {
	now := h.Now()
	return adminItem{
		ContentItem:    it,
		EffectiveState: publication.EffectiveState(it, now),
		Eligible:       publication.Eligible(it, now),
	}
}

func (h *AdminHandler) respond(c *fiber.Ctx, status int, it domain.ContentItem) error {
	if wantsJSON(c) {
		return c.Status(status).JSON(h.view(it))
	}
	return c.Redirect("/admin", fiber.StatusSeeOther)
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	rows, err := h.Pub.Dashboard(c.UserContext(), h.Now())
	if err != nil {
		applog.Error(c, "admin.content.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load content"})
	}
	return render(c, "admin_dashboard", fiber.Map{"Title": "Content", "Rows": rows})
}

// GET /admin/content/:id
func (h *AdminHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "admin.content.get", domain.NotFound(c.Params("id")))
	}
	it, err := h.Content.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "admin.content.get", err)
	}
	return c.JSON(h.view(it))
}

// POST /admin/content (multipart: kind, title, displayConfig, files)
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, "admin.content.create", domain.Validation("expected a multipart form with image files"))
	}
	kind, ok := domain.ParseKind(c.FormValue("kind"))
	if !ok {
		return fail(c, "admin.content.create", domain.Validation("kind must be EVENT or PROMOTION"))
	}
	files := append(form.File["files"], form.File["files[]"]...)
	uploads := make([]domain.Upload, 0, len(files))
	for _, fh := range files {
		u, err := h.readUpload(fh)
		if err != nil {
			return fail(c, "admin.content.create", err)
		}
		uploads = append(uploads, u)
	}

	var cfg json.RawMessage
	if raw := c.FormValue("displayConfig"); raw != "" {
		cfg = json.RawMessage(raw)
	}
	it, err := h.Content.Create(c.UserContext(), services.CreateInput{
		Kind:          kind,
		Title:         c.FormValue("title"),
		DisplayConfig: cfg,
		Uploads:       uploads,
	})
	if err != nil {
		return fail(c, "admin.content.create", err)
	}
	applog.Audit(c, "admin.content.create", map[string]any{"content_id": it.ID, "kind": string(it.Kind), "assets": len(it.Assets)})
	return h.respond(c, fiber.StatusCreated, it)
}

// readUpload loads one file part; the type is sniffed from its bytes.
func (h *AdminHandler) readUpload(fh *multipart.FileHeader) (domain.Upload, error) {
	if h.MaxUpload > 0 && fh.Size > int64(h.MaxUpload) {
		return domain.Upload{}, domain.Validation("%q is too large", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, domain.Validation("%q could not be read", fh.Filename)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Upload{}, domain.Validation("%q could not be read", fh.Filename)
	}
	mimeType := http.DetectContentType(data)
	if !assets.IsImage(mimeType) {
		return domain.Upload{}, domain.Validation("%q is not an image", fh.Filename)
	}
	return domain.Upload{Filename: fh.Filename, MimeType: mimeType, Data: data}, nil
}

type commandFunc func(ctx context.Context, id string) (domain.ContentItem, error)

func (h *AdminHandler) command(c *fiber.Ctx, action string, fn commandFunc) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, action, domain.NotFound(c.Params("id")))
	}
	it, err := fn(c.UserContext(), id)
	if err != nil {
		return fail(c, action, err)
	}
	applog.Audit(c, action, map[string]any{"content_id": id, "state": string(it.State)})
	return h.respond(c, fiber.StatusOK, it)
}

// POST /admin/content/:id/schedule (goLiveAt: RFC 3339 or datetime-local)
func (h *AdminHandler) Schedule(c *fiber.Ctx) error {
	var body struct {
		GoLiveAt string `json:"goLiveAt" form:"goLiveAt"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return fail(c, "admin.content.schedule", domain.InvalidSchedule("could not read goLiveAt"))
		}
	}
	at, err := services.ParseGoLive(body.GoLiveAt, h.Loc)
	if err != nil {
		return fail(c, "admin.content.schedule", err)
	}
	return h.command(c, "admin.content.schedule", func(ctx context.Context, id string) (domain.ContentItem, error) {
		return h.Content.Schedule(ctx, id, at)
	})
}

func (h *AdminHandler) ForcePush(c *fiber.Ctx) error {
	return h.command(c, "admin.content.force_push", h.Content.ForcePush)
}

func (h *AdminHandler) Archive(c *fiber.Ctx) error {
	return h.command(c, "admin.content.archive", h.Content.Archive)
}

func (h *AdminHandler) Reinstate(c *fiber.Ctx) error {
	return h.command(c, "admin.content.reinstate", h.Content.Reinstate)
}

func (h *AdminHandler) Unschedule(c *fiber.Ctx) error {
	return h.command(c, "admin.content.unschedule", h.Content.Unschedule)
}
