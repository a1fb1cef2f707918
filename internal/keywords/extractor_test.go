package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractor_DropsStopWordsAndShortTokens(t *testing.T) {
	e := NewExtractor(BaseVocabulary())

	kw := e.Extract("Çok Yeni ve Özel Kadın Elbise", "bu ürün az")
	assert.Equal(t, []string{"kadin", "elbise"}, kw.All)
}

func TestExtractor_DedupesFirstSeenOrder(t *testing.T) {
	e := NewExtractor(BaseVocabulary())

	kw := e.Extract("Elbise Kadın Elbise", "kadın elbise")
	assert.Equal(t, []string{"elbise", "kadin"}, kw.All)
}

func TestExtractor_TranslationsIncludeSynonyms(t *testing.T) {
	e := NewExtractor(BaseVocabulary())

	kw := e.Extract("Kadın Elbise", "")
	assert.Contains(t, kw.Translated, "elbise")
	assert.Contains(t, kw.Translated, "dress")
	// every original token survives into the translated set
	for _, token := range kw.All {
		assert.Contains(t, kw.Translated, token)
	}
}

func TestExtractor_GenderClassification(t *testing.T) {
	e := NewExtractor(BaseVocabulary())

	// "bayan" is a synonym of the canonical marker "kadin"
	kw := e.Extract("Bayan Çanta", "")
	assert.Equal(t, []string{"kadin"}, kw.Genders)

	// canonical and synonym collapse into one marker
	kw = e.Extract("Kadın Bayan Elbise", "")
	assert.Equal(t, []string{"kadin"}, kw.Genders)

	kw = e.Extract("Erkek Kadın Çocuk", "")
	assert.Len(t, kw.Genders, 3)
}

func TestExtractor_ProductTypeClassification(t *testing.T) {
	e := NewExtractor(BaseVocabulary())

	kw := e.Extract("Kadın Mavi Elbise", "")
	assert.Contains(t, kw.ProductTypes, "elbise")
	// "dress" arrives via translation and is also a known product type
	assert.Contains(t, kw.ProductTypes, "dress")
	assert.NotContains(t, kw.ProductTypes, "mavi")
}

func TestExtractor_EmptyInput(t *testing.T) {
	e := NewExtractor(BaseVocabulary())

	kw := e.Extract("", "")
	assert.True(t, kw.Empty())
	assert.Empty(t, kw.All)
	assert.Empty(t, kw.Translated)
	assert.Empty(t, kw.Genders)
	assert.Empty(t, kw.ProductTypes)

	// punctuation-only input behaves the same
	kw = e.Extract("?!...", "---")
	assert.True(t, kw.Empty())
}

func TestExtractor_Deterministic(t *testing.T) {
	e := NewExtractor(BaseVocabulary())

	first := e.Extract("Samsung Galaxy Telefon Kılıf", "darbeye dayanıklı silikon")
	for i := 0; i < 5; i++ {
		again := e.Extract("Samsung Galaxy Telefon Kılıf", "darbeye dayanıklı silikon")
		assert.Equal(t, first, again)
	}
}

func TestVocabulary_MergeDoesNotMutateBase(t *testing.T) {
	base := BaseVocabulary()
	synonymsBefore := len(base.Synonyms)

	merged := base.Merge(VocabularyConfig{
		StopWords:    []string{"Kampanya"},
		Synonyms:     map[string][]string{"nb": {"Notebook"}},
		ProductTypes: []string{"Robot Süpürge"},
		Brands:       map[string][]string{"dyson": {"Süpürge"}},
	})

	assert.Len(t, base.Synonyms, synonymsBefore)
	assert.False(t, base.IsStopWord("kampanya"))

	// merged entries are normalized on the way in
	assert.True(t, merged.IsStopWord("kampanya"))
	assert.Equal(t, []string{"notebook"}, merged.Synonyms["nb"])
	assert.True(t, merged.IsProductType("robot supurge"))
	assert.Equal(t, []string{"supurge"}, merged.Brands["dyson"])
}
