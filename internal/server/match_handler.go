package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"marketplace/matcher/internal/engine"
)

// MatchHandler serves the category-resolution endpoint.
type MatchHandler struct {
	service *engine.Service
}

func NewMatchHandler(service *engine.Service) *MatchHandler {
	return &MatchHandler{service: service}
}

func (h *MatchHandler) Register(api fiber.Router) {
	api.Post("/match", h.Match)
}

type matchRequest struct {
	Marketplace string `json:"marketplace"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TopN        int    `json:"top_n"`
}

func (h *MatchHandler) Match(c *fiber.Ctx) error {
	var req matchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.Marketplace == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "marketplace is required",
		})
	}

	outcome, err := h.service.MatchCategory(c.Context(), req.Marketplace, req.Title, req.Description, req.TopN)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownMarketplace) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		log.Errorf("match failed for %s: %v", req.Marketplace, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "failed to resolve categories",
		})
	}

	// zero results is a successful response, not an error; the cached flag
	// tells the UI whether this set was freshly scored
	return c.JSON(outcome)
}
