// Package hierarchy builds the deduplicated label/parent tree shown in the
// sunburst chart from category triples.
package hierarchy

import (
	"fmt"
	"strconv"
	"strings"

	"survey-insights-go/internal/types"
)

// KeyMode selects how nodes are identified.
type KeyMode string

const (
	// KeyByLabel identifies a node by its label text alone, across all depths.
	// The same text under two parents collapses into one node.
	KeyByLabel KeyMode = "label"
	// KeyByPath identifies a node by its depth and full path from the root, so
	// equal labels under different parents stay distinct.
	KeyByPath KeyMode = "path"
)

// PathSeparator joins labels into the readable path shown for a node.
const PathSeparator = " / "

// ParseKeyMode accepts "label" or "path"; "" means KeyByLabel.
func ParseKeyMode(s string) (KeyMode, error) {
	switch KeyMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", KeyByLabel:
		return KeyByLabel, nil
	case KeyByPath:
		return KeyByPath, nil
	}
	return "", fmt.Errorf("unknown hierarchy key mode %q", s)
}

// Key returns the node ID of the category at depth d (1-indexed). In
// KeyByPath mode the ID is the depth followed by each quoted label, e.g.
// `2:"Pay"/"Benefits"`, so no label text can make two paths collide.
func (m KeyMode) Key(c types.Categories, d int) string {
	if m != KeyByPath {
		return c.At(d)
	}
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(d))
	sb.WriteByte(':')
	for i := 1; i <= d; i++ {
		if i > 1 {
			sb.WriteByte('/')
		}
		sb.WriteString(strconv.Quote(c.At(i)))
	}
	return sb.String()
}

// Path returns the labels from the root to depth d joined by PathSeparator.
// It is for display only; use Key for identity.
func Path(c types.Categories, d int) string {
	parts := make([]string, 0, d)
	for i := 1; i <= d; i++ {
		parts = append(parts, c.At(i))
	}
	return strings.Join(parts, PathSeparator)
}

// Hierarchy is the ordered node list plus any parent conflicts found while
// building it. Nodes are in first-discovery order.
type Hierarchy struct {
	Mode     KeyMode                    `json:"key_mode"`
	Nodes    []types.HierarchyNode      `json:"nodes"`
	Warnings []types.DataQualityWarning `json:"warnings,omitempty"`
}

// Build scans triples in the given order, depth 1 to 3 within each row, and
// appends every unseen key with the key of the previous depth in the same row
// as its parent. A key's parent is never reassigned. Triples with an empty
// level are skipped since "" is not a valid category.
func Build(rows []types.Categories, mode KeyMode) Hierarchy {
	h := Hierarchy{Mode: mode}
	parentOf := map[string]string{}
	warned := map[[2]string]bool{}

	for i, c := range rows {
		if !c.Complete() {
			continue
		}
		for d := 1; d <= types.Depths; d++ {
			id := mode.Key(c, d)
			parent := ""
			if d > 1 {
				parent = mode.Key(c, d-1)
			}
			kept, seen := parentOf[id]
			if !seen {
				parentOf[id] = parent
				node := types.HierarchyNode{
					ID:     id,
					Label:  c.At(d),
					Parent: parent,
					Depth:  d,
				}
				if mode == KeyByPath {
					node.Path = Path(c, d)
				}
				h.Nodes = append(h.Nodes, node)
				continue
			}
			if kept != parent && !warned[[2]string{id, parent}] {
				warned[[2]string{id, parent}] = true
				h.Warnings = append(h.Warnings, types.DataQualityWarning{
					Label:             id,
					KeptParent:        kept,
					ConflictingParent: parent,
					Row:               i,
				})
			}
		}
	}
	return h
}

// Labels returns node IDs in hierarchy order.
func (h Hierarchy) Labels() []string {
	out := make([]string, len(h.Nodes))
	for i, n := range h.Nodes {
		out[i] = n.ID
	}
	return out
}

// Parents returns parent IDs indexed like Labels.
func (h Hierarchy) Parents() []string {
	out := make([]string, len(h.Nodes))
	for i, n := range h.Nodes {
		out[i] = n.Parent
	}
	return out
}
