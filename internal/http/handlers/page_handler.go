package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"realtysite/internal/domain"
	applog "realtysite/internal/log"
	"realtysite/internal/services"
)

type PageHandler struct {
	Pub *services.PublicationService
	Now func() time.Time
}

type staticPage struct {
	Title string
	Lead  string
}

var staticPages = map[string]staticPage{
	"about":       {"About Us", "A family-run brokerage serving the region's buyers, sellers and investors."},
	"development": {"Development", "Land acquisition, entitlement and build-out for residential and commercial projects."},
	"services":    {"Services", "Residential sales, commercial leasing, property management and relocation."},
	"team":        {"Our Team", "Licensed agents and specialists who know the neighborhoods they sell."},
}

// Home shows visible promotions as popups and visible event flyers.
func (h *PageHandler) Home(c *fiber.Ctx) error {
	now := h.Now()
	promos, err := h.Pub.Visible(c.UserContext(), domain.KindPromotion, now)
	if err != nil {
		applog.Error(c, "home.promotions.fail", err, nil)
		promos = nil
	}
	events, err := h.Pub.Visible(c.UserContext(), domain.KindEvent, now)
	if err != nil {
		applog.Error(c, "home.events.fail", err, nil)
		events = nil
	}
	return render(c, "home", fiber.Map{
		"Title":      "Home",
		"Promotions": toViews(promos),
		"Events":     toViews(events),
	})
}

func (h *PageHandler) Events(c *fiber.Ctx) error {
	events, err := h.Pub.Visible(c.UserContext(), domain.KindEvent, h.Now())
	if err != nil {
		applog.Error(c, "events.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load events"})
	}
	return render(c, "events", fiber.Map{"Title": "Events", "Events": toViews(events)})
}

func (h *PageHandler) Static(name string) fiber.Handler {
	p := staticPages[name]
	return func(c *fiber.Ctx) error {
		return render(c, "page", fiber.Map{"Title": p.Title, "Lead": p.Lead})
	}
}
