package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"marketplace/matcher/internal/domain"
)

// ErrUnknownMarketplace is returned for marketplace ids not present in the
// configuration.
var ErrUnknownMarketplace = errors.New("unknown marketplace")

// Service is the process-wide entry point: it routes each request to the
// configured marketplace's engine.
type Service struct {
	engines map[string]*Engine
}

func NewService(engines map[string]*Engine) *Service {
	return &Service{engines: engines}
}

// Marketplaces lists the configured marketplace ids, sorted.
func (s *Service) Marketplaces() []string {
	ids := make([]string, 0, len(s.engines))
	for id := range s.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Service) Engine(marketplace string) (*Engine, error) {
	e, ok := s.engines[marketplace]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMarketplace, marketplace)
	}
	return e, nil
}

func (s *Service) MatchCategory(ctx context.Context, marketplace, title, description string, topN int) (*MatchOutcome, error) {
	e, err := s.Engine(marketplace)
	if err != nil {
		return nil, err
	}
	return e.MatchCategory(ctx, title, description, topN)
}

func (s *Service) SearchCategory(ctx context.Context, marketplace, query string, limit int) ([]domain.Category, error) {
	e, err := s.Engine(marketplace)
	if err != nil {
		return nil, err
	}
	return e.SearchCategory(ctx, query, limit)
}

func (s *Service) CategoryTree(ctx context.Context, marketplace string) ([]domain.CategoryTreeNode, error) {
	e, err := s.Engine(marketplace)
	if err != nil {
		return nil, err
	}
	return e.CategoryTree(ctx)
}

// WarmAll loads every marketplace's taxonomy in parallel. A failing
// marketplace is logged but does not block the others; the first error is
// still reported so startup scripts can alert.
func (s *Service) WarmAll(ctx context.Context) error {
	g := new(errgroup.Group)
	for id, e := range s.engines {
		g.Go(func() error {
			if err := e.Warm(ctx); err != nil {
				log.Errorf("failed to warm taxonomy for %s: %v", id, err)
				return err
			}
			log.Infof("taxonomy warm for %s", id)
			return nil
		})
	}
	return g.Wait()
}
