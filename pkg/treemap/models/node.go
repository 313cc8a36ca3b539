// Package models defines the output data structures of the treemap pipeline.
package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// NodeKind distinguishes the two variants of a treemap node.
type NodeKind int

const (
	// KindComposite is an inner node owning an ordered list of children.
	KindComposite NodeKind = iota
	// KindLeaf is a terminal node carrying a size.
	KindLeaf
)

func (k NodeKind) String() string {
	switch k {
	case KindComposite:
		return "composite"
	case KindLeaf:
		return "leaf"
	}
	return "unknown"
}

// Node is a treemap node: either a composite with children or a leaf with
// a size. Only the fields of its Kind are meaningful.
type Node struct {
	Kind NodeKind
	// OriginalColumn is the hierarchy column the node was grouped on.
	OriginalColumn string
	// Column is the column actually read, after multiples substitution.
	Column string
	// Name is the display name of the group.
	Name string
	// Suffix is an optional display suffix for the name.
	Suffix string
	// Color is a ';'-joined set of colors.
	Color string
	// Code is a " or "-joined set of codes.
	Code string
	// Empty is set when the group stands for missing values.
	Empty bool

	// Children of a composite.
	Children []*Node
	// Size of a leaf; never negative for non-negative input.
	Size decimal.Decimal
}

// NewComposite creates a composite node without children.
func NewComposite(originalColumn, column, name string) *Node {
	return &Node{Kind: KindComposite, OriginalColumn: originalColumn, Column: column, Name: name}
}

// NewLeaf creates a leaf node of the given size.
func NewLeaf(originalColumn, column, name string, size decimal.Decimal) *Node {
	return &Node{Kind: KindLeaf, OriginalColumn: originalColumn, Column: column, Name: name, Size: size}
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool {
	return n.Kind == KindLeaf
}

// AddChild appends a child to a composite.
func (n *Node) AddChild(child *Node) {
	n.Children = append(n.Children, child)
}

// TotalSize returns the size of a leaf, or the summed sizes of all leaves
// below a composite.
func (n *Node) TotalSize() decimal.Decimal {
	switch n.Kind {
	case KindLeaf:
		return n.Size
	case KindComposite:
		total := decimal.Zero
		for _, c := range n.Children {
			total = total.Add(c.TotalSize())
		}
		return total
	}
	return decimal.Zero
}

// Leaves returns all leaves below n, depth first.
func (n *Node) Leaves() []*Node {
	if n.Kind == KindLeaf {
		return []*Node{n}
	}
	var leaves []*Node
	for _, c := range n.Children {
		leaves = append(leaves, c.Leaves()...)
	}
	return leaves
}

type nodeJSON struct {
	OriginalColumn string      `json:"originalColumn"`
	Column         string      `json:"column"`
	Name           string      `json:"name"`
	Suffix         string      `json:"suffix,omitempty"`
	Color          string      `json:"color,omitempty"`
	Code           string      `json:"code,omitempty"`
	IsEmpty        bool        `json:"isEmpty"`
	Children       *[]*Node    `json:"children,omitempty"`
	Size           json.Number `json:"size,omitempty"`
}

// MarshalJSON encodes a composite with its children and a leaf with its size.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := nodeJSON{
		OriginalColumn: n.OriginalColumn,
		Column:         n.Column,
		Name:           n.Name,
		Suffix:         n.Suffix,
		Color:          n.Color,
		Code:           n.Code,
		IsEmpty:        n.Empty,
	}
	switch n.Kind {
	case KindComposite:
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		out.Children = &children
	case KindLeaf:
		out.Size = json.Number(n.Size.String())
	}
	return json.Marshal(out)
}
