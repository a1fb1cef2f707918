package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"marketplace/matcher/internal/config"
	"marketplace/matcher/internal/domain"
)

// categoryPage is one page of the marketplace's category listing endpoint.
type categoryPage struct {
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Categories []rawCategory `json:"categories"`
}

type rawCategory struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Path        []string `json:"path"`
	Leaf        bool     `json:"leaf"`
	Active      bool     `json:"active"`
}

type rawAttributeResponse struct {
	Attributes []rawAttribute `json:"attributes"`
}

// rawAttribute mirrors the loosely typed attribute JSON marketplaces return.
// The kind is resolved here so downstream code never sees the dynamic shape.
type rawAttribute struct {
	ID       int               `json:"id"`
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Required bool              `json:"required"`
	Values   []json.RawMessage `json:"values"`
}

type restClient struct {
	marketplace string
	cfg         config.Marketplace
	rl          ratelimit.Limiter
	httpClient  *resty.Client
	breaker     *gobreaker.CircuitBreaker
}

// NewRESTClient builds the JSON-API collaborator for one marketplace.
func NewRESTClient(marketplace string, cfg config.Marketplace) MarketplaceClient {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("Accept", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    marketplace + "-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnf("circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	})

	return &restClient{
		marketplace: marketplace,
		cfg:         cfg,
		rl:          ratelimit.New(cfg.MaxRequestsPerSecond),
		httpClient:  httpClient,
		breaker:     breaker,
	}
}

// FetchTaxonomy materializes the full category list: first page to learn the
// page count, the rest fetched concurrently under a worker cap.
func (c *restClient) FetchTaxonomy(ctx context.Context) ([]domain.Category, error) {
	first, err := c.fetchCategoryPage(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first category page: %w", err)
	}

	pages := make([][]rawCategory, first.TotalPages+1)
	pages[1] = first.Categories

	if first.TotalPages > 1 {
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			fetchErr  error
			semaphore = make(chan struct{}, c.cfg.MaxWorkers)
		)
		for pageNum := 2; pageNum <= first.TotalPages; pageNum++ {
			wg.Add(1)
			go func(pageNum int) {
				defer wg.Done()
				semaphore <- struct{}{}
				defer func() { <-semaphore }()

				page, err := c.fetchCategoryPage(ctx, pageNum)
				if err != nil {
					mu.Lock()
					if fetchErr == nil {
						fetchErr = fmt.Errorf("failed to fetch category page %d: %w", pageNum, err)
					}
					mu.Unlock()
					return
				}
				mu.Lock()
				pages[pageNum] = page.Categories
				mu.Unlock()
			}(pageNum)
		}
		wg.Wait()
		if fetchErr != nil {
			return nil, fetchErr
		}
	}

	var categories []domain.Category
	for _, page := range pages {
		for _, raw := range page {
			categories = append(categories, domain.Category{
				ID:          raw.ID,
				Name:        raw.Name,
				DisplayName: raw.DisplayName,
				Path:        raw.Path,
				IsLeaf:      raw.Leaf,
				IsAvailable: raw.Active,
			}.Sanitize())
		}
	}

	log.Debugf("fetched %d categories from %s across %d pages",
		len(categories), c.marketplace, first.TotalPages)
	return categories, nil
}

func (c *restClient) fetchCategoryPage(ctx context.Context, pageNum int) (*categoryPage, error) {
	body, err := c.get(ctx, fmt.Sprintf("/categories?page=%d", pageNum))
	if err != nil {
		return nil, err
	}

	var page categoryPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to decode category page: %w", err)
	}
	if page.TotalPages == 0 {
		page.TotalPages = 1
	}
	return &page, nil
}

func (c *restClient) FetchCategoryAttributes(ctx context.Context, categoryID int) ([]domain.Attribute, error) {
	body, err := c.get(ctx, fmt.Sprintf("/categories/%d/attributes", categoryID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attributes for category %d: %w", categoryID, err)
	}

	var resp rawAttributeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode attributes for category %d: %w", categoryID, err)
	}

	attributes := make([]domain.Attribute, 0, len(resp.Attributes))
	for _, raw := range resp.Attributes {
		attributes = append(attributes, parseAttribute(raw))
	}
	return attributes, nil
}

// parseAttribute resolves the marketplace's dynamic attribute shape into the
// tagged domain kind at the boundary.
func parseAttribute(raw rawAttribute) domain.Attribute {
	attr := domain.Attribute{
		ID:       raw.ID,
		Name:     raw.Name,
		Required: raw.Required,
	}

	switch raw.Type {
	case "list", "enum", "select":
		attr.Kind = domain.AttributeKindList
	case "multilist", "multiselect", "multi":
		attr.Kind = domain.AttributeKindMultiList
	default:
		attr.Kind = domain.AttributeKindText
	}

	if attr.Kind == domain.AttributeKindText {
		return attr
	}
	for _, rawValue := range raw.Values {
		var value domain.AttributeValue
		if err := json.Unmarshal(rawValue, &value); err != nil {
			// some marketplaces send bare strings instead of objects
			var name string
			if err := json.Unmarshal(rawValue, &name); err != nil {
				log.Warnf("skipping unreadable attribute value for %q: %v", raw.Name, err)
				continue
			}
			value = domain.AttributeValue{Name: name}
		}
		attr.Values = append(attr.Values, value)
	}
	return attr
}

func (c *restClient) get(ctx context.Context, path string) ([]byte, error) {
	c.rl.Take()

	body, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.R().
			SetContext(ctx).
			Get(path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
		}
		return []byte(resp.String()), nil
	})
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}
