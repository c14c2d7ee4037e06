package clonetree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Visitation states of Walk.
const (
	White = iota // not visited
	Gray         // on the current path
	Black        // fully explored
)

// Sentinel errors for tree building and validation.
var (
	// ErrNilFit is returned when Build receives a nil fit.
	ErrNilFit = errors.New("clonetree: nil fit")

	// ErrBadOptions signals an inconsistent Options value.
	ErrBadOptions = errors.New("clonetree: invalid options")

	// ErrMalformed marks a tree whose parent links are out of range or
	// whose root is missing or duplicated.
	ErrMalformed = errors.New("clonetree: malformed tree")

	// ErrCycle marks a parent chain that loops; such nodes are not
	// reachable from the root.
	ErrCycle = errors.New("clonetree: cycle detected")

	// ErrSumRule marks a node whose children jointly exceed its prevalence.
	ErrSumRule = errors.New("clonetree: sum rule violated")
)

// PrevalenceSource selects the quantity interpreted as cellular prevalence.
type PrevalenceSource string

const (
	PrevalenceWeight PrevalenceSource = "weight"
	PrevalenceMean   PrevalenceSource = "mean"
)

// Options configures Build.
type Options struct {
	Prevalence PrevalenceSource `yaml:"prevalence" json:"prevalence" validate:"oneof=weight mean"`

	// MaxTrees caps the number of enumerated trees.
	MaxTrees int `yaml:"max_trees" json:"max_trees" validate:"gte=1"`

	// Epsilon is the slack allowed when comparing prevalences.
	Epsilon float64 `yaml:"epsilon" json:"epsilon" validate:"gte=0"`
}

// DefaultOptions uses mixing weights, at most 10000 trees and 1e-9 slack.
func DefaultOptions() Options {
	return Options{Prevalence: PrevalenceWeight, MaxTrees: 10000, Epsilon: 1e-9}
}

func (o Options) validate() error {
	if o.Prevalence != PrevalenceWeight && o.Prevalence != PrevalenceMean {
		return fmt.Errorf("%w: prevalence %q", ErrBadOptions, o.Prevalence)
	}
	if o.MaxTrees < 1 || !(o.Epsilon >= 0) {
		return ErrBadOptions
	}
	return nil
}

// Node is one cluster in a tree.
type Node struct {
	// ID is the cluster's component index in the fit (1-based; 0 is the tail).
	ID         int     `json:"id"`
	Prevalence float64 `json:"prevalence"`
	Mean       float64 `json:"mean"`
	Weight     float64 `json:"weight"`
}

// Edge links a parent cluster to a child cluster.
type Edge struct {
	Parent     int     `json:"parent"`
	Child      int     `json:"child"`
	Prevalence float64 `json:"prevalence"`
}

// Tree is one clone tree. Parent[i] indexes Nodes; the root has −1.
type Tree struct {
	Nodes  []Node `json:"nodes"`
	Parent []int  `json:"parent"`
}

// Root returns the index of the root node, or −1.
func (t Tree) Root() int {
	for i, p := range t.Parent {
		if p < 0 {
			return i
		}
	}
	return -1
}

// Children returns the child indices of node i in index order.
func (t Tree) Children(i int) []int {
	var out []int
	for c, p := range t.Parent {
		if p == i {
			out = append(out, c)
		}
	}
	return out
}

// Edges lists parent→child links by cluster id, in node order.
func (t Tree) Edges() []Edge {
	out := make([]Edge, 0, len(t.Nodes))
	for c, p := range t.Parent {
		if p < 0 {
			continue
		}
		out = append(out, Edge{Parent: t.Nodes[p].ID, Child: t.Nodes[c].ID, Prevalence: t.Nodes[c].Prevalence})
	}
	return out
}

// String renders the tree in nested form by cluster id, e.g. "1(2(3),4)".
func (t Tree) String() string {
	var b strings.Builder
	err := t.Walk(Visitor{
		OnVisit: func(i, _ int) error {
			if p := t.Parent[i]; p >= 0 && t.Children(p)[0] != i {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(t.Nodes[i].ID))
			if len(t.Children(i)) > 0 {
				b.WriteByte('(')
			}
			return nil
		},
		OnExit: func(i, _ int) error {
			if len(t.Children(i)) > 0 {
				b.WriteByte(')')
			}
			return nil
		},
	})
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return b.String()
}

// TreeSet is the output of Build.
type TreeSet struct {
	// Nodes are the clusters in placement order (decreasing prevalence).
	Nodes []Node `json:"nodes"`
	Trees []Tree `json:"trees"`

	// Truncated is set when more than Options.MaxTrees trees exist.
	Truncated bool `json:"truncated"`
}
