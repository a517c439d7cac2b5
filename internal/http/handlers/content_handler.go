package handlers

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"realtysite/internal/assets"
	"realtysite/internal/domain"
	applog "realtysite/internal/log"
	"realtysite/internal/services"
)

// ContentHandler serves the public visibility query and stored assets.
type ContentHandler struct {
	Pub    *services.PublicationService
	Assets assets.Store
	Now    func() time.Time
}

// itemView is the public shape of a visible item.
type itemView struct {
	ID            string          `json:"id"`
	Kind          domain.Kind     `json:"kind"`
	Title         string          `json:"title,omitempty"`
	GoLiveAt      *time.Time      `json:"goLiveAt,omitempty"`
	Assets        []string        `json:"assets"`
	DisplayConfig json.RawMessage `json:"displayConfig,omitempty"`
}

func assetURL(key string) string { return "/assets/" + key }

func toViews(items []domain.ContentItem) []itemView {
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		v := itemView{
			ID: it.ID, Kind: it.Kind, Title: it.Title, GoLiveAt: it.ScheduledGoLiveAt,
			Assets: make([]string, 0, len(it.Assets)), DisplayConfig: it.DisplayConfig,
		}
		for _, a := range it.Assets {
			v.Assets = append(v.Assets, assetURL(a.Key))
		}
		out = append(out, v)
	}
	return out
}

// GET /api/v1/content/:kind?now=RFC3339
func (h *ContentHandler) Visible(c *fiber.Ctx) error {
	kind, ok := domain.ParseKind(c.Params("kind"))
	if !ok {
		return badRequest(c, "kind must be events or promotions")
	}
	now := h.Now()
	if raw := c.Query("now"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return badRequest(c, "now must be an RFC 3339 timestamp")
		}
		now = t
	}
	items, err := h.Pub.Visible(c.UserContext(), kind, now)
	if err != nil {
		return fail(c, "content.visible", err)
	}
	return c.JSON(fiber.Map{"items": toViews(items)})
}

// GET /assets/:key
func (h *ContentHandler) Asset(c *fiber.Ctx) error {
	key := c.Params("key")
	rc, info, err := h.Assets.Open(c.UserContext(), key)
	if errors.Is(err, assets.ErrInvalidKey) {
		applog.Security(c, "asset.key.block", map[string]any{"key": key})
		return c.SendStatus(fiber.StatusNotFound)
	}
	if errors.Is(err, assets.ErrNotFound) {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if err != nil {
		applog.Error(c, "asset.open.fail", err, map[string]any{"key": key})
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}
	c.Set(fiber.HeaderContentType, info.MimeType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	size := int(info.Size)
	if size <= 0 {
		size = -1
	}
	return c.SendStream(rc, size)
}
