// Package engine ties the pieces together: one Engine per marketplace owns
// that marketplace's caches and answers match, search, tree and attribute
// requests. Marketplace differences live entirely in configuration.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"marketplace/matcher/internal/cache"
	"marketplace/matcher/internal/client"
	"marketplace/matcher/internal/config"
	"marketplace/matcher/internal/domain"
	"marketplace/matcher/internal/keywords"
	"marketplace/matcher/internal/normalize"
	"marketplace/matcher/internal/repository"
	"marketplace/matcher/internal/score"
	"marketplace/matcher/internal/state"
	"marketplace/matcher/internal/taxonomy"
)

// taxonomyKey is the single key of the per-marketplace taxonomy namespace.
const taxonomyKey = "taxonomy"

// resultKeyDescriptionPrefix bounds how much of the normalized description
// participates in the result-cache key.
const resultKeyDescriptionPrefix = 160

// Scorer is what the engine needs from the scoring component. An interface
// so tests can instrument call counts.
type Scorer interface {
	Score(kw domain.KeywordSet, category domain.Category) score.Result
}

// MatchOutcome carries the ranked results plus whether they were served from
// the result cache instead of being freshly scored. The flag is user-visible
// downstream and must be preserved across any transport.
type MatchOutcome struct {
	Results []domain.MatchResult `json:"results"`
	Cached  bool                 `json:"cached"`
}

type Engine struct {
	marketplace string
	cfg         config.Marketplace
	client      client.MarketplaceClient
	extractor   *keywords.Extractor
	scorer      Scorer
	locale      language.Tag

	taxonomies *cache.Cache[*taxonomy.Store]
	attributes *cache.Cache[[]domain.Attribute]
	results    *cache.Cache[[]domain.MatchResult]

	snapshots repository.SnapshotRepository // optional
	journal   state.RefreshJournal          // optional
}

// New builds the engine for one marketplace. snapshots and journal may be
// nil; the engine then runs purely in memory.
func New(
	marketplace string,
	cfg config.Marketplace,
	mpClient client.MarketplaceClient,
	extractor *keywords.Extractor,
	scorer Scorer,
	snapshots repository.SnapshotRepository,
	journal state.RefreshJournal,
) *Engine {
	return &Engine{
		marketplace: marketplace,
		cfg:         cfg,
		client:      mpClient,
		extractor:   extractor,
		scorer:      scorer,
		locale:      language.Make(cfg.Locale),
		taxonomies:  cache.New[*taxonomy.Store](marketplace+":taxonomy", cfg.TaxonomyTTL),
		attributes:  cache.New[[]domain.Attribute](marketplace+":attributes", cfg.AttributeTTL),
		results:     cache.New[[]domain.MatchResult](marketplace+":results", cfg.ResultTTL),
		snapshots:   snapshots,
		journal:     journal,
	}
}

// MatchCategory ranks the marketplace's categories against the product text.
// Empty input returns an empty result set without touching the network. The
// full ranked list is cached per normalized query; topN truncation happens
// per call so different callers can share one cached set.
func (e *Engine) MatchCategory(ctx context.Context, title, description string, topN int) (*MatchOutcome, error) {
	if topN <= 0 {
		topN = e.cfg.DefaultTopN
	}

	kw := e.extractor.Extract(title, description)
	if kw.Empty() {
		return &MatchOutcome{Results: []domain.MatchResult{}}, nil
	}

	key := e.resultKey(title, description)
	if results, ok := e.results.Get(key); ok {
		return &MatchOutcome{Results: truncate(results, topN), Cached: true}, nil
	}

	results, err := e.results.Ensure(ctx, key, func(ctx context.Context) ([]domain.MatchResult, error) {
		store, err := e.store(ctx)
		if err != nil {
			return nil, err
		}
		return e.rank(kw, store), nil
	})
	if err != nil {
		return nil, err
	}
	return &MatchOutcome{Results: truncate(results, topN)}, nil
}

// SearchCategory is the manual-lookup entry point: substring and word
// overlap search instead of full scoring.
func (e *Engine) SearchCategory(ctx context.Context, query string, limit int) ([]domain.Category, error) {
	store, err := e.store(ctx)
	if err != nil {
		return nil, err
	}
	return store.SearchSubstring(query, limit), nil
}

// CategoryTree returns the display tree, rebuilt on every taxonomy refresh.
func (e *Engine) CategoryTree(ctx context.Context) ([]domain.CategoryTreeNode, error) {
	store, err := e.store(ctx)
	if err != nil {
		return nil, err
	}
	return store.Tree(), nil
}

// FindCategory looks a category up by id in the current taxonomy.
func (e *Engine) FindCategory(ctx context.Context, id int) (domain.Category, bool, error) {
	store, err := e.store(ctx)
	if err != nil {
		return domain.Category{}, false, err
	}
	c, ok := store.FindByID(id)
	return c, ok, nil
}

// Attributes fetches (or serves cached) attribute definitions for a
// category, coalescing concurrent requests.
func (e *Engine) Attributes(ctx context.Context, categoryID int) ([]domain.Attribute, error) {
	return e.attributes.Ensure(ctx, strconv.Itoa(categoryID), func(ctx context.Context) ([]domain.Attribute, error) {
		attrs, err := e.client.FetchCategoryAttributes(ctx, categoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch attributes for category %d on %s: %w",
				categoryID, e.marketplace, err)
		}
		return attrs, nil
	})
}

// CachedAttributes is the non-blocking probe: it reports the attributes if
// fresh plus the cache state, letting callers distinguish "still loading"
// from "loaded" from "nothing fetched yet".
func (e *Engine) CachedAttributes(categoryID int) ([]domain.Attribute, cache.State) {
	key := strconv.Itoa(categoryID)
	attrs, ok := e.attributes.Get(key)
	if !ok {
		return nil, e.attributes.State(key)
	}
	return attrs, cache.StateFresh
}

// Invalidate evicts every cache namespace of this marketplace; the next
// request refetches.
func (e *Engine) Invalidate() {
	e.taxonomies.Clear()
	e.attributes.Clear()
	e.results.Clear()
}

// Warm ensures the taxonomy is loaded without performing a match.
func (e *Engine) Warm(ctx context.Context) error {
	_, err := e.store(ctx)
	return err
}

func (e *Engine) store(ctx context.Context) (*taxonomy.Store, error) {
	return e.taxonomies.Ensure(ctx, taxonomyKey, e.refreshTaxonomy)
}

// refreshTaxonomy fetches the full category list, persists a snapshot and
// journals the refresh. When the fetch fails and a previous snapshot exists,
// the snapshot is served instead of failing every waiter.
func (e *Engine) refreshTaxonomy(ctx context.Context) (*taxonomy.Store, error) {
	categories, err := e.client.FetchTaxonomy(ctx)
	if err != nil {
		if e.snapshots != nil {
			snapshot, loadErr := e.snapshots.Load(ctx, e.marketplace)
			if loadErr == nil {
				log.Warnf("taxonomy fetch for %s failed, serving last snapshot (%d categories): %v",
					e.marketplace, len(snapshot), err)
				return taxonomy.NewStore(snapshot, e.locale), nil
			}
			if !errors.Is(loadErr, repository.ErrNoSnapshot) {
				log.Errorf("failed to load taxonomy snapshot for %s: %v", e.marketplace, loadErr)
			}
		}
		return nil, fmt.Errorf("failed to fetch taxonomy for %s: %w", e.marketplace, err)
	}

	if e.snapshots != nil {
		if err := e.snapshots.Save(ctx, e.marketplace, categories); err != nil {
			log.Warnf("failed to persist taxonomy snapshot for %s: %v", e.marketplace, err)
		}
	}
	if e.journal != nil {
		if err := e.journal.SetLastRefresh(ctx, e.marketplace, time.Now(), len(categories)); err != nil {
			log.Warnf("failed to journal taxonomy refresh for %s: %v", e.marketplace, err)
		}
	}

	log.Infof("refreshed taxonomy for %s: %d categories", e.marketplace, len(categories))
	return taxonomy.NewStore(categories, e.locale), nil
}

// rank scores every category, drops everything at or below the floor and
// sorts by score with the confidence bucket as tie-break.
func (e *Engine) rank(kw domain.KeywordSet, store *taxonomy.Store) []domain.MatchResult {
	var results []domain.MatchResult
	for _, category := range store.All() {
		res := e.scorer.Score(kw, category)
		if res.Score <= e.cfg.MinScore {
			continue
		}
		results = append(results, domain.MatchResult{
			Category:         category,
			Score:            res.Score,
			Path:             category.Path,
			PathString:       category.PathString(),
			IsLeaf:           category.IsLeaf,
			Confidence:       res.Confidence,
			GenderMatch:      res.GenderMatch,
			ProductTypeMatch: res.ProductTypeMatch,
			MatchedKeywords:  res.Matched,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Confidence.Rank() > results[j].Confidence.Rank()
	})
	return results
}

func (e *Engine) resultKey(title, description string) string {
	normTitle := normalize.Normalize(title)
	normDesc := normalize.Normalize(description)
	if len(normDesc) > resultKeyDescriptionPrefix {
		normDesc = normDesc[:resultKeyDescriptionPrefix]
	}
	sum := sha256.Sum256([]byte(e.marketplace + "|" + normTitle + "|" + normDesc))
	return hex.EncodeToString(sum[:])
}

func truncate(results []domain.MatchResult, topN int) []domain.MatchResult {
	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	// copy so callers never alias the cached slice
	out := make([]domain.MatchResult, len(results))
	copy(out, results)
	return out
}
