package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"realtysite/internal/domain"
	applog "realtysite/internal/log"
	"realtysite/internal/services"
	"realtysite/internal/validate"
)

type ListingHandler struct {
	Listings *services.ListingService
}

type detailsRequest struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Category string          `json:"category"`
	Payload  json.RawMessage `json:"payload"`
}

func parseDetailsRequest(c *fiber.Ctx) (detailsRequest, error) {
	var req detailsRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return req, domain.Validation("expected a JSON body with category and payload")
	}
	return req, nil
}

// POST /admin/property-details/validate
func (h *ListingHandler) ValidateDetails(c *fiber.Ctx) error {
	req, err := parseDetailsRequest(c)
	if err != nil {
		return fail(c, "admin.details.validate", err)
	}
	d, err := h.Listings.ValidateDetails(req.Category, req.Payload)
	if err != nil {
		return fail(c, "admin.details.validate", err)
	}
	return c.JSON(fiber.Map{"category": d.Category, "details": d})
}

// POST /admin/listings
func (h *ListingHandler) Save(c *fiber.Ctx) error {
	req, err := parseDetailsRequest(c)
	if err != nil {
		return fail(c, "admin.listings.save", err)
	}
	if req.ID != "" {
		if _, ok := validate.ID(req.ID); !ok {
			return fail(c, "admin.listings.save", domain.Validation("invalid listing id"))
		}
	}
	l, err := h.Listings.Save(c.UserContext(), services.ListingInput{
		ID: req.ID, Title: req.Title, Category: req.Category, Payload: req.Payload,
	})
	if err != nil {
		return fail(c, "admin.listings.save", err)
	}
	applog.Audit(c, "admin.listings.save", map[string]any{"listing_id": l.ID, "category": l.Category})
	return c.Status(fiber.StatusCreated).JSON(l)
}

// GET /api/v1/listings/:id
func (h *ListingHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return fail(c, "listings.get", domain.ListingNotFound(c.Params("id")))
	}
	l, err := h.Listings.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, "listings.get", err)
	}
	return c.JSON(l)
}
