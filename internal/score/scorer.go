// Package score ranks categories against an extracted keyword set. The
// weighting follows the priority order gender > product-type > brand >
// generic keyword; the literal constants are tunable per marketplace.
package score

import (
	"strings"

	"marketplace/matcher/internal/domain"
	"marketplace/matcher/internal/keywords"
	"marketplace/matcher/internal/normalize"
)

// Weights holds every scoring constant. Zero values in a config override
// mean "keep the default".
type Weights struct {
	GenderBonus          int `mapstructure:"gender_bonus"`
	GenderPenalty        int `mapstructure:"gender_penalty"`
	ProductTypeNameBonus int `mapstructure:"product_type_name_bonus"`
	ProductTypePathBonus int `mapstructure:"product_type_path_bonus"`
	BrandNameBonus       int `mapstructure:"brand_name_bonus"`
	BrandPathBonus       int `mapstructure:"brand_path_bonus"`
	ExactWordBonus       int `mapstructure:"exact_word_bonus"`
	NameSubstringBonus   int `mapstructure:"name_substring_bonus"`
	PathSubstringBonus   int `mapstructure:"path_substring_bonus"`
	SynonymNameBonus     int `mapstructure:"synonym_name_bonus"`
	SynonymPathBonus     int `mapstructure:"synonym_path_bonus"`
	GenderTypeComboBonus int `mapstructure:"gender_type_combo_bonus"`
	BrandTypeComboBonus  int `mapstructure:"brand_type_combo_bonus"`
	LeafBonus            int `mapstructure:"leaf_bonus"`
	GenericNamePenalty   int `mapstructure:"generic_name_penalty"`

	// Confidence thresholds.
	HighGenderTypeScore int `mapstructure:"high_gender_type_score"`
	HighTypeScore       int `mapstructure:"high_type_score"`
	HighScore           int `mapstructure:"high_score"`
	MediumScore         int `mapstructure:"medium_score"`
}

// DefaultWeights are the tuned starting-point constants.
func DefaultWeights() Weights {
	return Weights{
		GenderBonus:          28,
		GenderPenalty:        55,
		ProductTypeNameBonus: 22,
		ProductTypePathBonus: 16,
		BrandNameBonus:       45,
		BrandPathBonus:       32,
		ExactWordBonus:       15,
		NameSubstringBonus:   10,
		PathSubstringBonus:   6,
		SynonymNameBonus:     12,
		SynonymPathBonus:     8,
		GenderTypeComboBonus: 22,
		BrandTypeComboBonus:  20,
		LeafBonus:            5,
		GenericNamePenalty:   5,
		HighGenderTypeScore:  45,
		HighTypeScore:        40,
		HighScore:            50,
		MediumScore:          25,
	}
}

// Merge overlays non-zero override fields onto the defaults.
func (w Weights) Merge(override Weights) Weights {
	merge := func(dst *int, src int) {
		if src != 0 {
			*dst = src
		}
	}
	merge(&w.GenderBonus, override.GenderBonus)
	merge(&w.GenderPenalty, override.GenderPenalty)
	merge(&w.ProductTypeNameBonus, override.ProductTypeNameBonus)
	merge(&w.ProductTypePathBonus, override.ProductTypePathBonus)
	merge(&w.BrandNameBonus, override.BrandNameBonus)
	merge(&w.BrandPathBonus, override.BrandPathBonus)
	merge(&w.ExactWordBonus, override.ExactWordBonus)
	merge(&w.NameSubstringBonus, override.NameSubstringBonus)
	merge(&w.PathSubstringBonus, override.PathSubstringBonus)
	merge(&w.SynonymNameBonus, override.SynonymNameBonus)
	merge(&w.SynonymPathBonus, override.SynonymPathBonus)
	merge(&w.GenderTypeComboBonus, override.GenderTypeComboBonus)
	merge(&w.BrandTypeComboBonus, override.BrandTypeComboBonus)
	merge(&w.LeafBonus, override.LeafBonus)
	merge(&w.GenericNamePenalty, override.GenericNamePenalty)
	merge(&w.HighGenderTypeScore, override.HighGenderTypeScore)
	merge(&w.HighTypeScore, override.HighTypeScore)
	merge(&w.HighScore, override.HighScore)
	merge(&w.MediumScore, override.MediumScore)
	return w
}

// Result is the outcome of scoring one (keyword set, category) pair.
type Result struct {
	Score            int
	Confidence       domain.Confidence
	GenderMatch      bool
	ProductTypeMatch bool
	Matched          []string
}

type Scorer struct {
	weights Weights
	vocab   *keywords.Vocabulary
}

func NewScorer(weights Weights, vocab *keywords.Vocabulary) *Scorer {
	return &Scorer{weights: weights, vocab: vocab}
}

// Score applies the weighted rules in order: gender, product type, brand,
// generic keywords, combinations, leaf bonus and the generic-name penalty.
// The returned score is the raw signed total.
func (s *Scorer) Score(kw domain.KeywordSet, category domain.Category) Result {
	category = category.Sanitize()

	name := normalize.Normalize(category.Name)
	path := normalize.Normalize(strings.Join(category.Path, " "))
	full := name + " " + path
	nameWords := strings.Fields(name)

	res := Result{}
	matched := make(map[string]struct{})
	addMatched := func(token string) {
		if _, dup := matched[token]; !dup {
			matched[token] = struct{}{}
			res.Matched = append(res.Matched, token)
		}
	}
	counted := make(map[string]struct{})

	// 1. gender bonus
	for _, gender := range kw.Genders {
		for _, term := range s.vocab.GenderTerms(gender) {
			if containsWord(full, term) {
				res.Score += s.weights.GenderBonus
				res.GenderMatch = true
				addMatched(gender)
				counted[gender] = struct{}{}
				break
			}
		}
	}

	// 2. gender penalty: query is gendered, category is gendered, no overlap
	if len(kw.Genders) > 0 && !res.GenderMatch && s.categoryIsGendered(full) {
		res.Score -= s.weights.GenderPenalty
	}

	// 3. product-type bonus
	for _, pt := range kw.ProductTypes {
		switch {
		case strings.Contains(name, pt):
			res.Score += s.weights.ProductTypeNameBonus
			res.ProductTypeMatch = true
			addMatched(pt)
			counted[pt] = struct{}{}
		case strings.Contains(path, pt):
			res.Score += s.weights.ProductTypePathBonus
			res.ProductTypeMatch = true
			addMatched(pt)
			counted[pt] = struct{}{}
		}
	}

	// 4. brand bonus
	brandMatch := false
	for _, token := range kw.All {
		terms, ok := s.vocab.Brands[token]
		if !ok {
			continue
		}
		for _, term := range terms {
			if strings.Contains(name, term) {
				res.Score += s.weights.BrandNameBonus
				brandMatch = true
				addMatched(token)
				counted[token] = struct{}{}
				break
			}
			if strings.Contains(path, term) {
				res.Score += s.weights.BrandPathBonus
				brandMatch = true
				addMatched(token)
				counted[token] = struct{}{}
				break
			}
		}
	}

	// 5. generic keyword matching for everything not already counted
	for _, token := range kw.All {
		if _, done := counted[token]; done {
			continue
		}
		switch {
		case containsWord(name, token):
			res.Score += s.weights.ExactWordBonus
			addMatched(token)
		case len(token) > 3 && strings.Contains(name, token):
			res.Score += s.weights.NameSubstringBonus
			addMatched(token)
		case strings.Contains(path, token):
			res.Score += s.weights.PathSubstringBonus
			addMatched(token)
		default:
			for _, expansion := range s.vocab.Synonyms[token] {
				if strings.Contains(name, expansion) {
					res.Score += s.weights.SynonymNameBonus
					addMatched(token)
					break
				}
				if strings.Contains(path, expansion) {
					res.Score += s.weights.SynonymPathBonus
					addMatched(token)
					break
				}
			}
		}
	}

	// 6. combination bonuses
	if res.GenderMatch && res.ProductTypeMatch {
		res.Score += s.weights.GenderTypeComboBonus
	}
	if brandMatch && res.ProductTypeMatch {
		res.Score += s.weights.BrandTypeComboBonus
	}

	// 7. only directly assignable categories should outrank their ancestors
	if category.IsLeaf && category.IsAvailable {
		res.Score += s.weights.LeafBonus
	}

	// 8. suppress overly broad single-word categories when the signal is weak
	if len(nameWords) == 1 && res.Score < 20 {
		res.Score -= s.weights.GenericNamePenalty
	}

	res.Confidence = s.confidence(res)
	return res
}

func (s *Scorer) confidence(res Result) domain.Confidence {
	matchedCount := len(res.Matched)
	switch {
	case res.GenderMatch && res.ProductTypeMatch && res.Score >= s.weights.HighGenderTypeScore:
		return domain.ConfidenceHigh
	case res.ProductTypeMatch && res.Score >= s.weights.HighTypeScore:
		return domain.ConfidenceHigh
	case res.Score >= s.weights.HighScore && matchedCount >= 2:
		return domain.ConfidenceHigh
	case res.Score >= s.weights.MediumScore || matchedCount >= 1:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func (s *Scorer) categoryIsGendered(categoryText string) bool {
	for _, term := range s.vocab.AllGenderTerms() {
		if containsWord(categoryText, term) {
			return true
		}
	}
	return false
}

// containsWord reports whether term occurs in text on word boundaries.
// Multi-word terms match as a phrase of whole words.
func containsWord(text, term string) bool {
	if term == "" {
		return false
	}
	idx := 0
	for {
		i := strings.Index(text[idx:], term)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(term)
		beforeOK := start == 0 || text[start-1] == ' '
		afterOK := end == len(text) || text[end] == ' '
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}
