// Package server exposes the matching engine over HTTP for the form wizard
// and other in-house callers.
package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"marketplace/matcher/internal/config"
	"marketplace/matcher/internal/engine"
	"marketplace/matcher/internal/state"
)

type Server struct {
	app     *fiber.App
	cfg     config.Server
	service *engine.Service
	journal state.RefreshJournal // optional, health endpoint only
}

func New(cfg config.Server, service *engine.Service, journal state.RefreshJournal) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "category-matcher",
		DisableStartupMessage: true,
	})

	s := &Server{
		app:     app,
		cfg:     cfg,
		service: service,
		journal: journal,
	}

	app.Use(requestID)
	app.Use(accessLog)

	api := app.Group("/api/v1")
	NewMatchHandler(service).Register(api)
	NewCategoryHandler(service).Register(api)
	app.Get("/health", s.health)

	return s
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	log.Infof("HTTP API listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// requestID attaches a request id so log lines of one request correlate.
func requestID(c *fiber.Ctx) error {
	id := c.Get("X-Request-Id")
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals("request_id", id)
	c.Set("X-Request-Id", id)
	return c.Next()
}

func accessLog(c *fiber.Ctx) error {
	err := c.Next()
	log.Debugf("%s %s -> %d (request_id=%v)",
		c.Method(), c.Path(), c.Response().StatusCode(), c.Locals("request_id"))
	return err
}

type healthMarketplace struct {
	Marketplace   string `json:"marketplace"`
	LastRefresh   int64  `json:"last_refresh_unix,omitempty"`
	CategoryCount int    `json:"category_count,omitempty"`
}

func (s *Server) health(c *fiber.Ctx) error {
	resp := fiber.Map{"status": "ok"}

	var marketplaces []healthMarketplace
	for _, id := range s.service.Marketplaces() {
		entry := healthMarketplace{Marketplace: id}
		if s.journal != nil {
			at, count, err := s.journal.GetLastRefresh(c.Context(), id)
			if err != nil {
				log.Warnf("health: failed to read refresh journal for %s: %v", id, err)
			} else if !at.IsZero() {
				entry.LastRefresh = at.Unix()
				entry.CategoryCount = count
			}
		}
		marketplaces = append(marketplaces, entry)
	}
	resp["marketplaces"] = marketplaces

	return c.JSON(resp)
}
