package server

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"marketplace/matcher/internal/cache"
	"marketplace/matcher/internal/engine"
)

// CategoryHandler serves manual category lookup: search, tree browsing and
// attribute definitions.
type CategoryHandler struct {
	service *engine.Service
}

func NewCategoryHandler(service *engine.Service) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) Register(api fiber.Router) {
	categories := api.Group("/categories")
	categories.Get("/search", h.Search)
	categories.Get("/tree", h.Tree)
	categories.Get("/:id/attributes", h.Attributes)
}

func (h *CategoryHandler) Search(c *fiber.Ctx) error {
	marketplace := c.Query("marketplace")
	query := c.Query("q")
	if marketplace == "" || query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "marketplace and q are required",
		})
	}
	limit := c.QueryInt("limit", 20)

	results, err := h.service.SearchCategory(c.Context(), marketplace, query, limit)
	if err != nil {
		return h.serviceError(c, marketplace, err)
	}
	return c.JSON(fiber.Map{"categories": results})
}

func (h *CategoryHandler) Tree(c *fiber.Ctx) error {
	marketplace := c.Query("marketplace")
	if marketplace == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "marketplace is required",
		})
	}

	tree, err := h.service.CategoryTree(c.Context(), marketplace)
	if err != nil {
		return h.serviceError(c, marketplace, err)
	}
	return c.JSON(fiber.Map{"tree": tree})
}

// Attributes answers from the attribute cache without blocking: 200 with the
// definitions when loaded, 202 while a fetch is in flight, and a kick-off
// plus 202 when nothing has been fetched yet. The UI polls.
func (h *CategoryHandler) Attributes(c *fiber.Ctx) error {
	marketplace := c.Query("marketplace")
	if marketplace == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "marketplace is required",
		})
	}
	categoryID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "category id must be an integer",
		})
	}

	eng, err := h.service.Engine(marketplace)
	if err != nil {
		return h.serviceError(c, marketplace, err)
	}

	attrs, cacheState := eng.CachedAttributes(categoryID)
	switch cacheState {
	case cache.StateFresh:
		return c.JSON(fiber.Map{"attributes": attrs, "state": cacheState})
	case cache.StateLoading:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"state": cacheState})
	default:
		// start the fetch in the background; the coalescing cache makes
		// repeated polls join the same fetch
		// fiber recycles its context after the handler returns
		go func() {
			if _, err := eng.Attributes(context.Background(), categoryID); err != nil {
				log.Warnf("background attribute fetch failed: %v", err)
			}
		}()
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"state": cache.StateLoading})
	}
}

func (h *CategoryHandler) serviceError(c *fiber.Ctx, marketplace string, err error) error {
	if errors.Is(err, engine.ErrUnknownMarketplace) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	log.Errorf("category request failed for %s: %v", marketplace, err)
	return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
		"error": "marketplace request failed",
	})
}
