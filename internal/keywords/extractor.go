// Package keywords turns normalized product text into the keyword classes
// the scorer works with: plain tokens, translations, gender markers and
// product-type nouns.
package keywords

import (
	"strings"

	"marketplace/matcher/internal/domain"
	"marketplace/matcher/internal/normalize"
)

const minTokenLength = 3

type Extractor struct {
	vocab *Vocabulary
}

func NewExtractor(vocab *Vocabulary) *Extractor {
	return &Extractor{vocab: vocab}
}

// Vocabulary exposes the word lists the extractor was built with, shared
// with the scorer so both sides agree on synonyms and gender terms.
func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocab
}

// Extract builds the keyword set for one match request. Deterministic and
// total: empty input yields an all-empty set, never an error.
func (e *Extractor) Extract(title, description string) domain.KeywordSet {
	tokens := normalize.Tokens(strings.TrimSpace(title + " " + description))

	var all []string
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if len(token) < minTokenLength {
			continue
		}
		if e.vocab.IsStopWord(token) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		all = append(all, token)
	}

	translated := make([]string, 0, len(all))
	translatedSeen := make(map[string]struct{}, len(all))
	addTranslated := func(token string) {
		if _, dup := translatedSeen[token]; dup {
			return
		}
		translatedSeen[token] = struct{}{}
		translated = append(translated, token)
	}
	for _, token := range all {
		addTranslated(token)
		for _, expansion := range e.vocab.Synonyms[token] {
			addTranslated(expansion)
		}
	}

	var genders, productTypes []string
	genderSeen := make(map[string]struct{})
	typeSeen := make(map[string]struct{})
	for _, token := range translated {
		if canonical, ok := e.vocab.IsGenderTerm(token); ok {
			if _, dup := genderSeen[canonical]; !dup {
				genderSeen[canonical] = struct{}{}
				genders = append(genders, canonical)
			}
		}
		if e.vocab.IsProductType(token) {
			if _, dup := typeSeen[token]; !dup {
				typeSeen[token] = struct{}{}
				productTypes = append(productTypes, token)
			}
		}
	}

	return domain.KeywordSet{
		All:          all,
		Translated:   translated,
		Genders:      genders,
		ProductTypes: productTypes,
	}
}
