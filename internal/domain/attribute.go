package domain

// AttributeKind tags the shape of a category attribute as declared by the
// marketplace. Raw API responses use loosely typed JSON; clients resolve the
// kind at the parsing boundary so the rest of the system sees one shape.
type AttributeKind string

const (
	AttributeKindText      AttributeKind = "text"
	AttributeKindList      AttributeKind = "list"
	AttributeKindMultiList AttributeKind = "multilist"
)

type AttributeValue struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Attribute describes one product attribute a category requires or allows.
type Attribute struct {
	ID       int              `json:"id"`
	Name     string           `json:"name"`
	Kind     AttributeKind    `json:"kind"`
	Required bool             `json:"required"`
	Values   []AttributeValue `json:"values,omitempty"` // empty for text attributes
}
