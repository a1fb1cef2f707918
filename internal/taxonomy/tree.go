package taxonomy

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"marketplace/matcher/internal/domain"
)

// BuildTree folds the flat category list into the two-level display tree:
// root nodes grouped on the first path segment, second-level nodes on the
// first two segments, and leaf categories attached under the nearest
// second-level group (deeper levels are flattened there). Groups that end up
// without qualifying children are pruned. Siblings are sorted with a
// locale-aware collator so e.g. Turkish names order correctly.
func BuildTree(categories []domain.Category, locale language.Tag) []domain.CategoryTreeNode {
	type secondLevel struct {
		name   string
		path   []string
		leaves []domain.Category
	}
	type rootLevel struct {
		name   string
		second map[string]*secondLevel
		order  []string
	}

	roots := make(map[string]*rootLevel)
	var rootOrder []string

	for _, c := range categories {
		if !c.IsLeaf {
			continue
		}
		path := c.Path
		if len(path) == 0 {
			path = []string{c.Name}
		}

		rootName := path[0]
		root, ok := roots[rootName]
		if !ok {
			root = &rootLevel{name: rootName, second: make(map[string]*secondLevel)}
			roots[rootName] = root
			rootOrder = append(rootOrder, rootName)
		}

		secondName := rootName
		secondPath := path[:1]
		if len(path) > 1 {
			secondName = path[1]
			secondPath = path[:2]
		}
		key := secondPath[len(secondPath)-1]
		second, ok := root.second[key]
		if !ok {
			second = &secondLevel{name: secondName, path: append([]string(nil), secondPath...)}
			root.second[key] = second
			root.order = append(root.order, key)
		}
		second.leaves = append(second.leaves, c)
	}

	collator := collate.New(locale)
	var tree []domain.CategoryTreeNode
	for _, rootName := range rootOrder {
		root := roots[rootName]

		var children []domain.CategoryTreeNode
		for _, key := range root.order {
			second := roots[rootName].second[key]

			var leafNodes []domain.CategoryTreeNode
			for _, leaf := range second.leaves {
				leafNodes = append(leafNodes, domain.CategoryTreeNode{
					Name:       leaf.DisplayName,
					Path:       leaf.Path,
					CategoryID: leaf.ID,
					IsLeaf:     true,
				})
			}
			if len(leafNodes) == 0 {
				continue
			}
			sort.SliceStable(leafNodes, func(i, j int) bool {
				return collator.CompareString(leafNodes[i].Name, leafNodes[j].Name) < 0
			})

			children = append(children, domain.CategoryTreeNode{
				Name:     second.name,
				Path:     second.path,
				Children: leafNodes,
			})
		}
		if len(children) == 0 {
			continue
		}
		sort.SliceStable(children, func(i, j int) bool {
			return collator.CompareString(children[i].Name, children[j].Name) < 0
		})

		tree = append(tree, domain.CategoryTreeNode{
			Name:     rootName,
			Path:     []string{rootName},
			Children: children,
		})
	}
	sort.SliceStable(tree, func(i, j int) bool {
		return collator.CompareString(tree[i].Name, tree[j].Name) < 0
	})
	return tree
}
