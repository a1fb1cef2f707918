package keywords

import "marketplace/matcher/internal/normalize"

// Vocabulary carries the marketplace-tunable word lists the extractor and
// scorer work from. Marketplace-specific behavior is data here, not code:
// a marketplace overrides matching behavior by extending these tables.
type Vocabulary struct {
	// StopWords are dropped during extraction.
	StopWords map[string]struct{}
	// Synonyms expands a normalized token into equivalent or foreign-language
	// tokens. Used both to widen the keyword set and for the scorer's
	// translation bonus.
	Synonyms map[string][]string
	// Genders maps a canonical gender marker to every synonym that implies
	// it, including the canonical form itself.
	Genders map[string][]string
	// ProductTypes is the set of concrete sellable-item nouns.
	ProductTypes map[string]struct{}
	// Brands maps a brand token to the category terms that brand predicts,
	// e.g. iphone -> cep telefonu. Optional; empty for marketplaces without
	// a curated brand table.
	Brands map[string][]string
}

// Merge folds extra per-marketplace entries into a copy of the vocabulary.
// The receiver is not modified.
func (v *Vocabulary) Merge(extra VocabularyConfig) *Vocabulary {
	out := &Vocabulary{
		StopWords:    make(map[string]struct{}, len(v.StopWords)+len(extra.StopWords)),
		Synonyms:     make(map[string][]string, len(v.Synonyms)+len(extra.Synonyms)),
		Genders:      make(map[string][]string, len(v.Genders)),
		ProductTypes: make(map[string]struct{}, len(v.ProductTypes)+len(extra.ProductTypes)),
		Brands:       make(map[string][]string, len(v.Brands)+len(extra.Brands)),
	}
	for w := range v.StopWords {
		out.StopWords[w] = struct{}{}
	}
	for token, expansions := range v.Synonyms {
		out.Synonyms[token] = append([]string(nil), expansions...)
	}
	for canonical, synonyms := range v.Genders {
		out.Genders[canonical] = append([]string(nil), synonyms...)
	}
	for w := range v.ProductTypes {
		out.ProductTypes[w] = struct{}{}
	}
	for brand, terms := range v.Brands {
		out.Brands[brand] = append([]string(nil), terms...)
	}

	for _, w := range extra.StopWords {
		out.StopWords[normalize.Normalize(w)] = struct{}{}
	}
	for token, expansions := range extra.Synonyms {
		key := normalize.Normalize(token)
		for _, e := range expansions {
			out.Synonyms[key] = append(out.Synonyms[key], normalize.Normalize(e))
		}
	}
	for canonical, synonyms := range extra.Genders {
		key := normalize.Normalize(canonical)
		for _, s := range synonyms {
			out.Genders[key] = append(out.Genders[key], normalize.Normalize(s))
		}
	}
	for _, w := range extra.ProductTypes {
		out.ProductTypes[normalize.Normalize(w)] = struct{}{}
	}
	for brand, terms := range extra.Brands {
		key := normalize.Normalize(brand)
		for _, t := range terms {
			out.Brands[key] = append(out.Brands[key], normalize.Normalize(t))
		}
	}
	return out
}

// VocabularyConfig is the config-file shape of per-marketplace vocabulary
// additions. Entries are normalized as they are merged.
type VocabularyConfig struct {
	StopWords    []string            `mapstructure:"stop_words"`
	Synonyms     map[string][]string `mapstructure:"synonyms"`
	Genders      map[string][]string `mapstructure:"genders"`
	ProductTypes []string            `mapstructure:"product_types"`
	Brands       map[string][]string `mapstructure:"brands"`
}

// IsGenderTerm reports whether the token implies any gender marker and
// returns the canonical marker it implies.
func (v *Vocabulary) IsGenderTerm(token string) (string, bool) {
	for canonical, synonyms := range v.Genders {
		if token == canonical {
			return canonical, true
		}
		for _, s := range synonyms {
			if token == s {
				return canonical, true
			}
		}
	}
	return "", false
}

// GenderTerms returns the full term list for a canonical gender marker.
func (v *Vocabulary) GenderTerms(canonical string) []string {
	terms := []string{canonical}
	return append(terms, v.Genders[canonical]...)
}

// AllGenderTerms returns every known gender term across all markers.
func (v *Vocabulary) AllGenderTerms() []string {
	var terms []string
	for canonical, synonyms := range v.Genders {
		terms = append(terms, canonical)
		terms = append(terms, synonyms...)
	}
	return terms
}

func (v *Vocabulary) IsProductType(token string) bool {
	_, ok := v.ProductTypes[token]
	return ok
}

func (v *Vocabulary) IsStopWord(token string) bool {
	_, ok := v.StopWords[token]
	return ok
}
