// Package taxonomy holds an immutable snapshot of one marketplace's category
// set together with the lookups the matching engine needs. A refresh builds
// a brand new Store; existing readers keep the snapshot they started with.
package taxonomy

import (
	"sort"
	"strings"

	"golang.org/x/text/language"

	"marketplace/matcher/internal/domain"
	"marketplace/matcher/internal/normalize"
)

const (
	searchNameBonus    = 50
	searchPathBonus    = 25
	searchOverlapBonus = 10
)

type Store struct {
	categories []domain.Category
	byID       map[int]domain.Category
	tree       []domain.CategoryTreeNode

	// precomputed normalized name/path for search and scoring
	normNames []string
	normPaths []string
}

// NewStore sanitizes the flat category list and precomputes lookups and the
// display tree. The input slice is not retained.
func NewStore(categories []domain.Category, locale language.Tag) *Store {
	s := &Store{
		categories: make([]domain.Category, 0, len(categories)),
		byID:       make(map[int]domain.Category, len(categories)),
		normNames:  make([]string, 0, len(categories)),
		normPaths:  make([]string, 0, len(categories)),
	}
	for _, c := range categories {
		c = c.Sanitize()
		s.categories = append(s.categories, c)
		s.byID[c.ID] = c
		s.normNames = append(s.normNames, normalize.Normalize(c.Name))
		s.normPaths = append(s.normPaths, normalize.Normalize(strings.Join(c.Path, " ")))
	}
	s.tree = BuildTree(s.categories, locale)
	return s
}

// All returns the sanitized category list in input order.
func (s *Store) All() []domain.Category {
	return s.categories
}

func (s *Store) Len() int {
	return len(s.categories)
}

func (s *Store) FindByID(id int) (domain.Category, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// Leaves returns only the directly assignable categories.
func (s *Store) Leaves() []domain.Category {
	var leaves []domain.Category
	for _, c := range s.categories {
		if c.IsLeaf {
			leaves = append(leaves, c)
		}
	}
	return leaves
}

// Tree returns the display tree built at construction time.
func (s *Store) Tree() []domain.CategoryTreeNode {
	return s.tree
}

// NormalizedName returns the precomputed normalized name for category index i.
func (s *Store) NormalizedName(i int) string {
	return s.normNames[i]
}

// NormalizedPath returns the precomputed normalized joined path for index i.
func (s *Store) NormalizedPath(i int) string {
	return s.normPaths[i]
}

// SearchSubstring ranks categories against a free-text query: name substring
// hits weigh most, then path hits, then per-word overlap with the name.
// Results are sorted by descending score with a stable name tie-break and
// truncated to limit.
func (s *Store) SearchSubstring(query string, limit int) []domain.Category {
	normalized := normalize.Normalize(query)
	if normalized == "" {
		return nil
	}
	queryWords := strings.Fields(normalized)

	type scored struct {
		category domain.Category
		score    int
	}
	var hits []scored
	for i, c := range s.categories {
		score := 0
		if strings.Contains(s.normNames[i], normalized) {
			score += searchNameBonus
		}
		if strings.Contains(s.normPaths[i], normalized) {
			score += searchPathBonus
		}
		nameWords := strings.Fields(s.normNames[i])
		for _, qw := range queryWords {
			for _, nw := range nameWords {
				if qw == nw {
					score += searchOverlapBonus
					break
				}
			}
		}
		if score > 0 {
			hits = append(hits, scored{category: c, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].category.Name < hits[j].category.Name
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]domain.Category, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.category)
	}
	return out
}
