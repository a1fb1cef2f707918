package domain

import "strings"

// Category is a single node of a marketplace taxonomy. Categories are
// immutable once fetched; a refresh replaces the whole set atomically.
type Category struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name,omitempty"`
	Path        []string `json:"path"` // ancestor names root → self
	IsLeaf      bool     `json:"is_leaf"`
	IsAvailable bool     `json:"is_available"`
}

// PathString renders the full path the way marketplaces display it.
func (c Category) PathString() string {
	return strings.Join(c.Path, " > ")
}

// Sanitize fills the gaps in malformed upstream records: a missing path
// becomes [name] and a missing display name falls back to the raw name. The
// record still participates in scoring and tree building.
func (c Category) Sanitize() Category {
	if len(c.Path) == 0 {
		c.Path = []string{c.Name}
	}
	if c.DisplayName == "" {
		c.DisplayName = c.Name
	}
	return c
}

// CategoryTreeNode is a display-oriented grouping of the flat category list.
// It is rebuilt whenever the list is refreshed and never mutated in place.
type CategoryTreeNode struct {
	Name       string             `json:"name"`
	Path       []string           `json:"path"`
	CategoryID int                `json:"category_id,omitempty"` // set for leaf nodes
	IsLeaf     bool               `json:"is_leaf"`
	Children   []CategoryTreeNode `json:"children,omitempty"`
}
