package clonetree

import (
	"cmp"
	"slices"

	"github.com/katalvlaran/subclone/mixture"
)

// Build enumerates the clone trees of fit's clusters.
//
// Implementation:
//   - Stage 1: nodes from fit.Clusters(), prevalence per Options.Prevalence,
//     sorted by decreasing prevalence (ties by id).
//   - Stage 2: recursive parent assignment under remaining capacity.
//   - Stage 3: each complete assignment is validated and recorded.
//
// Errors: ErrNilFit, ErrBadOptions. No valid assignment yields an empty set.
func Build(fit *mixture.FitResult, opts Options) (*TreeSet, error) {
	if fit == nil {
		return nil, ErrNilFit
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	nodes := make([]Node, 0, len(fit.Clusters()))
	for i, c := range fit.Clusters() {
		n := Node{ID: i + 1, Mean: c.Mean, Weight: c.Weight, Prevalence: c.Weight}
		if opts.Prevalence == PrevalenceMean {
			n.Prevalence = c.Mean
		}
		nodes = append(nodes, n)
	}
	return BuildFromNodes(nodes, opts)
}

// BuildFromNodes enumerates clone trees over explicit nodes.
func BuildFromNodes(nodes []Node, opts Options) (*TreeSet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	ordered := slices.Clone(nodes)
	slices.SortStableFunc(ordered, func(a, b Node) int {
		return cmp.Or(cmp.Compare(b.Prevalence, a.Prevalence), cmp.Compare(a.ID, b.ID))
	})
	set := &TreeSet{Nodes: ordered}
	if len(ordered) == 0 {
		return set, nil
	}

	e := &enumerator{
		nodes:    ordered,
		parent:   make([]int, len(ordered)),
		capacity: make([]float64, len(ordered)),
		eps:      opts.Epsilon,
		max:      opts.MaxTrees,
		set:      set,
	}
	for i, n := range ordered {
		e.capacity[i] = n.Prevalence
	}
	e.parent[0] = -1
	e.place(1)
	return set, nil
}

// enumerator holds the backtracking state of one enumeration.
type enumerator struct {
	nodes    []Node
	parent   []int
	capacity []float64 // prevalence minus placed children
	eps      float64
	max      int
	set      *TreeSet
	stop     bool
}

// place tries every feasible parent for node i, then recurses to i+1.
func (e *enumerator) place(i int) {
	if e.stop {
		return
	}
	if i == len(e.nodes) {
		e.record()
		return
	}
	need := e.nodes[i].Prevalence
	for p := 0; p < i && !e.stop; p++ {
		if e.capacity[p]+e.eps < need {
			continue
		}
		e.capacity[p] -= need
		e.parent[i] = p
		e.place(i + 1)
		e.capacity[p] += need
	}
}

// record stores a copy of the current assignment, or flags truncation once
// MaxTrees trees are stored.
func (e *enumerator) record() {
	if len(e.set.Trees) >= e.max {
		e.set.Truncated = true
		e.stop = true
		return
	}
	t := Tree{Nodes: e.nodes, Parent: slices.Clone(e.parent)}
	if t.Validate(e.eps) != nil {
		return
	}
	e.set.Trees = append(e.set.Trees, t)
}
