package domain

// KeywordSet is the per-request view of a product description after
// normalization. It lives for one match call and is never cached; only the
// match results derived from it are.
type KeywordSet struct {
	All          []string `json:"all"`           // deduplicated normalized tokens, first-seen order
	Translated   []string `json:"translated"`    // All plus synonym/translation expansions
	Genders      []string `json:"genders"`       // tokens flagged as gender markers
	ProductTypes []string `json:"product_types"` // tokens flagged as concrete product types
}

// Empty reports whether extraction produced nothing to match on. Callers
// treat this as "no match possible", not as an error.
func (k KeywordSet) Empty() bool {
	return len(k.All) == 0
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidence buckets for sorting: high > medium > low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// MatchResult is one ranked candidate category for a match request. Score is
// the raw signed value; negative scores sort below zero-or-positive ones and
// are clamped only for display purposes.
type MatchResult struct {
	Category         Category   `json:"category"`
	Score            int        `json:"score"`
	Path             []string   `json:"path"`
	PathString       string     `json:"path_string"`
	IsLeaf           bool       `json:"is_leaf"`
	Confidence       Confidence `json:"confidence"`
	GenderMatch      bool       `json:"gender_match"`
	ProductTypeMatch bool       `json:"product_type_match"`
	MatchedKeywords  []string   `json:"matched_keywords,omitempty"`
}

// DisplayScore clamps the raw score to zero for progress-bar style UIs.
func (m MatchResult) DisplayScore() int {
	if m.Score < 0 {
		return 0
	}
	return m.Score
}
