package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/matcher/internal/cache"
	"marketplace/matcher/internal/config"
	"marketplace/matcher/internal/domain"
	"marketplace/matcher/internal/keywords"
	"marketplace/matcher/internal/score"
)

type stubClient struct {
	mu             sync.Mutex
	categories     []domain.Category
	attributes     map[int][]domain.Attribute
	taxonomyErr    error
	taxonomyCalls  int
	attributeCalls int
}

func (s *stubClient) FetchTaxonomy(ctx context.Context) ([]domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxonomyCalls++
	if s.taxonomyErr != nil {
		return nil, s.taxonomyErr
	}
	return s.categories, nil
}

func (s *stubClient) FetchCategoryAttributes(ctx context.Context, categoryID int) ([]domain.Attribute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attributeCalls++
	return s.attributes[categoryID], nil
}

func (s *stubClient) calls() (taxonomy, attributes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taxonomyCalls, s.attributeCalls
}

// countingScorer wraps the real scorer so tests can verify that cached
// results skip rescoring.
type countingScorer struct {
	inner *score.Scorer
	count atomic.Int32
}

func (c *countingScorer) Score(kw domain.KeywordSet, category domain.Category) score.Result {
	c.count.Add(1)
	return c.inner.Score(kw, category)
}

type memoryJournal struct {
	mu    sync.Mutex
	at    time.Time
	count int
}

func (m *memoryJournal) SetLastRefresh(ctx context.Context, marketplace string, at time.Time, categoryCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.at, m.count = at, categoryCount
	return nil
}

func (m *memoryJournal) GetLastRefresh(ctx context.Context, marketplace string) (time.Time, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.at, m.count, nil
}

type memorySnapshots struct {
	mu    sync.Mutex
	saved map[string][]domain.Category
}

func (m *memorySnapshots) Save(ctx context.Context, marketplace string, categories []domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string][]domain.Category)
	}
	m.saved[marketplace] = categories
	return nil
}

func (m *memorySnapshots) Load(ctx context.Context, marketplace string) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	categories, ok := m.saved[marketplace]
	if !ok {
		return nil, errors.New("no snapshot")
	}
	return categories, nil
}

func testTaxonomy() []domain.Category {
	return []domain.Category{
		{ID: 1, Name: "Giyim", Path: []string{"Giyim"}},
		{ID: 2, Name: "Kadın Giyim", Path: []string{"Giyim", "Kadın Giyim"}},
		{ID: 3, Name: "Kadın Elbise", Path: []string{"Giyim", "Kadın Giyim", "Kadın Elbise"}, IsLeaf: true, IsAvailable: true},
		{ID: 4, Name: "Erkek Elbise", Path: []string{"Giyim", "Erkek Giyim", "Erkek Elbise"}, IsLeaf: true, IsAvailable: true},
		{ID: 5, Name: "Cep Telefonu", Path: []string{"Elektronik", "Telefon", "Cep Telefonu"}, IsLeaf: true, IsAvailable: true},
		{ID: 6, Name: "Telefon Kılıfı", Path: []string{"Elektronik", "Telefon", "Aksesuar", "Telefon Kılıfı"}, IsLeaf: true, IsAvailable: true},
	}
}

func testMarketplaceConfig() config.Marketplace {
	return config.Marketplace{
		Transport:    config.TransportREST,
		Locale:       "tr",
		TaxonomyTTL:  time.Hour,
		AttributeTTL: time.Hour,
		ResultTTL:    time.Hour,
		MinScore:     3,
		DefaultTopN:  10,
	}
}

func newTestEngine(client *stubClient) (*Engine, *countingScorer) {
	vocab := keywords.BaseVocabulary()
	scorer := &countingScorer{inner: score.NewScorer(score.DefaultWeights(), vocab)}
	eng := New("test", testMarketplaceConfig(), client, keywords.NewExtractor(vocab), scorer, nil, nil)
	return eng, scorer
}

func TestEngine_MatchCategory_RanksGenderedApparel(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	outcome, err := eng.MatchCategory(context.Background(), "Kadın Mavi Elbise", "", 10)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.Results)
	assert.False(t, outcome.Cached)

	top := outcome.Results[0]
	assert.Equal(t, "Kadın Elbise", top.Category.Name)
	assert.Equal(t, domain.ConfidenceHigh, top.Confidence)
	assert.True(t, top.GenderMatch)
	assert.True(t, top.ProductTypeMatch)
	assert.Equal(t, "Giyim > Kadın Giyim > Kadın Elbise", top.PathString)

	// the opposite-gender category is penalized below the score floor
	for _, r := range outcome.Results {
		assert.NotEqual(t, "Erkek Elbise", r.Category.Name)
	}
}

func TestEngine_MatchCategory_BrandResolvesAccessory(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	outcome, err := eng.MatchCategory(context.Background(), "iPhone 13 Kılıf", "", 10)
	require.NoError(t, err)
	require.Len(t, outcome.Results, 2)

	// the accessory category wins over the phone category the brand predicts
	assert.Equal(t, "Telefon Kılıfı", outcome.Results[0].Category.Name)
	assert.Equal(t, domain.ConfidenceHigh, outcome.Results[0].Confidence)
	assert.Equal(t, "Cep Telefonu", outcome.Results[1].Category.Name)
	assert.Greater(t, outcome.Results[0].Score, outcome.Results[1].Score)
}

func TestEngine_MatchCategory_BrandAloneFindsPhone(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	// no product-type word at all: only the brand table links the query to
	// phone categories
	outcome, err := eng.MatchCategory(context.Background(), "iPhone 15 Pro", "", 3)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.Results)
	assert.Equal(t, "Cep Telefonu", outcome.Results[0].Category.Name)
	assert.Contains(t, outcome.Results[0].MatchedKeywords, "iphone")
}

func TestEngine_MatchCategory_EmptyInput(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	outcome, err := eng.MatchCategory(context.Background(), "", "", 10)
	require.NoError(t, err)
	assert.Empty(t, outcome.Results)
	assert.False(t, outcome.Cached)

	// nothing to match on means no network traffic at all
	taxonomyCalls, _ := client.calls()
	assert.Zero(t, taxonomyCalls)
}

func TestEngine_MatchCategory_SecondCallServedFromCache(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, scorer := newTestEngine(client)

	first, err := eng.MatchCategory(context.Background(), "Kadın Mavi Elbise", "", 10)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	scoredOnce := scorer.count.Load()
	assert.Equal(t, int32(len(testTaxonomy())), scoredOnce)

	second, err := eng.MatchCategory(context.Background(), "Kadın Mavi Elbise", "", 10)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Results, second.Results)

	// no rescoring and no refetch for the cached query
	assert.Equal(t, scoredOnce, scorer.count.Load())
	taxonomyCalls, _ := client.calls()
	assert.Equal(t, 1, taxonomyCalls)
}

func TestEngine_MatchCategory_CacheKeyIgnoresFormatting(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	_, err := eng.MatchCategory(context.Background(), "Kadın Mavi Elbise", "", 10)
	require.NoError(t, err)

	// same words, different casing and punctuation: still a cache hit
	outcome, err := eng.MatchCategory(context.Background(), "KADIN, mavi - elbise!", "", 10)
	require.NoError(t, err)
	assert.True(t, outcome.Cached)
}

func TestEngine_MatchCategory_TopNTruncatesSharedResultSet(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	one, err := eng.MatchCategory(context.Background(), "iPhone 13 Kılıf", "", 1)
	require.NoError(t, err)
	assert.Len(t, one.Results, 1)

	// a bigger topN on the same query reuses the cached full ranking
	two, err := eng.MatchCategory(context.Background(), "iPhone 13 Kılıf", "", 2)
	require.NoError(t, err)
	assert.True(t, two.Cached)
	assert.Len(t, two.Results, 2)
	assert.Equal(t, one.Results[0], two.Results[0])
}

func TestEngine_ConcurrentMatchesShareOneTaxonomyFetch(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	queries := []string{
		"Kadın Mavi Elbise",
		"iPhone 13 Kılıf",
		"Erkek Gömlek",
		"Samsung Televizyon",
	}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(q string) {
			defer wg.Done()
			_, err := eng.MatchCategory(context.Background(), q, "", 5)
			assert.NoError(t, err)
		}(queries[i%len(queries)])
	}
	wg.Wait()

	taxonomyCalls, _ := client.calls()
	assert.Equal(t, 1, taxonomyCalls, "concurrent queries must share one taxonomy fetch")
}

func TestEngine_Invalidate_ForcesRefetch(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	_, err := eng.MatchCategory(context.Background(), "Kadın Elbise", "", 10)
	require.NoError(t, err)

	eng.Invalidate()

	outcome, err := eng.MatchCategory(context.Background(), "Kadın Elbise", "", 10)
	require.NoError(t, err)
	assert.False(t, outcome.Cached)
	taxonomyCalls, _ := client.calls()
	assert.Equal(t, 2, taxonomyCalls)
}

func TestEngine_SnapshotFallbackWhenFetchFails(t *testing.T) {
	snapshots := &memorySnapshots{}
	require.NoError(t, snapshots.Save(context.Background(), "test", testTaxonomy()))

	client := &stubClient{taxonomyErr: errors.New("marketplace down")}
	vocab := keywords.BaseVocabulary()
	scorer := &countingScorer{inner: score.NewScorer(score.DefaultWeights(), vocab)}
	eng := New("test", testMarketplaceConfig(), client, keywords.NewExtractor(vocab), scorer, snapshots, nil)

	outcome, err := eng.MatchCategory(context.Background(), "Kadın Mavi Elbise", "", 10)
	require.NoError(t, err)
	require.NotEmpty(t, outcome.Results)
	assert.Equal(t, "Kadın Elbise", outcome.Results[0].Category.Name)
}

func TestEngine_FetchFailureWithoutSnapshotSurfaces(t *testing.T) {
	client := &stubClient{categories: testTaxonomy(), taxonomyErr: errors.New("marketplace down")}
	eng, _ := newTestEngine(client)

	_, err := eng.MatchCategory(context.Background(), "Kadın Elbise", "", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marketplace down")

	// the failure is not cached: the next call retries
	client.mu.Lock()
	client.taxonomyErr = nil
	client.mu.Unlock()

	outcome, err := eng.MatchCategory(context.Background(), "Kadın Elbise", "", 10)
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.Results)
}

func TestEngine_SuccessfulRefreshRecordsSnapshotAndJournal(t *testing.T) {
	snapshots := &memorySnapshots{}
	journal := &memoryJournal{}
	client := &stubClient{categories: testTaxonomy()}
	vocab := keywords.BaseVocabulary()
	scorer := &countingScorer{inner: score.NewScorer(score.DefaultWeights(), vocab)}
	eng := New("test", testMarketplaceConfig(), client, keywords.NewExtractor(vocab), scorer, snapshots, journal)

	require.NoError(t, eng.Warm(context.Background()))

	saved, err := snapshots.Load(context.Background(), "test")
	require.NoError(t, err)
	assert.Len(t, saved, len(testTaxonomy()))

	at, count, err := journal.GetLastRefresh(context.Background(), "test")
	require.NoError(t, err)
	assert.False(t, at.IsZero())
	assert.Equal(t, len(testTaxonomy()), count)
}

func TestEngine_SearchCategory(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	results, err := eng.SearchCategory(context.Background(), "elbise", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, c := range results {
		assert.Contains(t, c.PathString(), "Elbise")
	}
}

func TestEngine_CategoryTree(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	tree, err := eng.CategoryTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Elektronik", tree[0].Name)
	assert.Equal(t, "Giyim", tree[1].Name)
}

func TestEngine_FindCategory(t *testing.T) {
	client := &stubClient{categories: testTaxonomy()}
	eng, _ := newTestEngine(client)

	c, ok, err := eng.FindCategory(context.Background(), 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Cep Telefonu", c.Name)

	_, ok, err = eng.FindCategory(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_Attributes(t *testing.T) {
	client := &stubClient{
		categories: testTaxonomy(),
		attributes: map[int][]domain.Attribute{
			5: {{ID: 1, Name: "Renk", Kind: domain.AttributeKindList, Required: true}},
		},
	}
	eng, _ := newTestEngine(client)

	// nothing fetched yet
	attrs, state := eng.CachedAttributes(5)
	assert.Nil(t, attrs)
	assert.Equal(t, cache.StateEmpty, state)

	fetched, err := eng.Attributes(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, fetched, 1)
	assert.Equal(t, "Renk", fetched[0].Name)

	attrs, state = eng.CachedAttributes(5)
	assert.Equal(t, cache.StateFresh, state)
	assert.Equal(t, fetched, attrs)

	// a second call is served from cache
	_, err = eng.Attributes(context.Background(), 5)
	require.NoError(t, err)
	_, attributeCalls := client.calls()
	assert.Equal(t, 1, attributeCalls)
}
