// Package client implements the marketplace fetch collaborators. The engine
// only sees fully materialized category and attribute lists; pagination,
// rate limiting and quota handling stay on this side of the boundary.
package client

import (
	"context"

	"marketplace/matcher/internal/domain"
)

type MarketplaceClient interface {
	FetchTaxonomy(ctx context.Context) ([]domain.Category, error)
	FetchCategoryAttributes(ctx context.Context, categoryID int) ([]domain.Attribute, error)
}
