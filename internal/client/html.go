package client

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"

	"marketplace/matcher/internal/config"
	"marketplace/matcher/internal/domain"
)

var categoryIDPattern = regexp.MustCompile(`[?&](?:catId|categoryId)=(\d+)`)

// htmlClient serves marketplaces that expose their taxonomy only as a
// rendered category-tree page rather than a JSON API.
type htmlClient struct {
	marketplace string
	cfg         config.Marketplace
	rl          ratelimit.Limiter
	httpClient  *resty.Client
}

func NewHTMLClient(marketplace string, cfg config.Marketplace) MarketplaceClient {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36").
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return &htmlClient{
		marketplace: marketplace,
		cfg:         cfg,
		rl:          ratelimit.New(cfg.MaxRequestsPerSecond),
		httpClient:  httpClient,
	}
}

func (c *htmlClient) FetchTaxonomy(ctx context.Context) ([]domain.Category, error) {
	html, err := c.fetchHTML(ctx, "/categories")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch category tree page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse category tree HTML: %w", err)
	}

	var categories []domain.Category
	doc.Find("ul.category-tree").First().ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		categories = append(categories, walkCategoryList(li, nil)...)
	})

	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories found in tree page")
	}
	log.Debugf("parsed %d categories from %s tree page", len(categories), c.marketplace)
	return categories, nil
}

// walkCategoryList descends one <li> of the nested tree, accumulating the
// breadcrumb path. A node without a nested <ul> is a leaf.
func walkCategoryList(li *goquery.Selection, parentPath []string) []domain.Category {
	link := li.ChildrenFiltered("a").First()
	name := strings.TrimSpace(link.Text())
	if name == "" {
		return nil
	}

	id := 0
	if href, ok := link.Attr("href"); ok {
		if matches := categoryIDPattern.FindStringSubmatch(href); len(matches) > 1 {
			id, _ = strconv.Atoi(matches[1])
		}
	}
	available := !link.HasClass("disabled")

	path := append(append([]string(nil), parentPath...), name)
	children := li.ChildrenFiltered("ul").First().ChildrenFiltered("li")

	category := domain.Category{
		ID:          id,
		Name:        name,
		Path:        path,
		IsLeaf:      children.Length() == 0,
		IsAvailable: available,
	}.Sanitize()

	out := []domain.Category{category}
	children.Each(func(i int, child *goquery.Selection) {
		out = append(out, walkCategoryList(child, path)...)
	})
	return out
}

// FetchCategoryAttributes scrapes the attribute definition table from the
// category detail page.
func (c *htmlClient) FetchCategoryAttributes(ctx context.Context, categoryID int) ([]domain.Attribute, error) {
	html, err := c.fetchHTML(ctx, fmt.Sprintf("/categories/%d", categoryID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attribute page for category %d: %w", categoryID, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse attribute HTML: %w", err)
	}

	var attributes []domain.Attribute
	doc.Find("table.attributes tr[data-attr-id]").Each(func(i int, tr *goquery.Selection) {
		rawID, _ := tr.Attr("data-attr-id")
		id, err := strconv.Atoi(rawID)
		if err != nil {
			return
		}

		attr := domain.Attribute{
			ID:       id,
			Name:     strings.TrimSpace(tr.Find("td.attr-name").Text()),
			Required: tr.HasClass("required"),
		}
		switch strings.TrimSpace(tr.Find("td.attr-type").Text()) {
		case "list":
			attr.Kind = domain.AttributeKindList
		case "multilist":
			attr.Kind = domain.AttributeKindMultiList
		default:
			attr.Kind = domain.AttributeKindText
		}
		tr.Find("td.attr-values option").Each(func(j int, opt *goquery.Selection) {
			valueID, _ := strconv.Atoi(opt.AttrOr("value", "0"))
			attr.Values = append(attr.Values, domain.AttributeValue{
				ID:   valueID,
				Name: strings.TrimSpace(opt.Text()),
			})
		})
		attributes = append(attributes, attr)
	})

	return attributes, nil
}

func (c *htmlClient) fetchHTML(ctx context.Context, path string) (string, error) {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}
	return resp.String(), nil
}
