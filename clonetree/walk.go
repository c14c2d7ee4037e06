package clonetree

import "fmt"

// Visitor receives depth-first events from Walk. Either hook may be nil.
// Returning an error aborts the walk with that error.
type Visitor struct {
	// OnVisit runs when a node is entered (pre-order).
	OnVisit func(i, depth int) error
	// OnExit runs after all descendants are done (post-order).
	OnExit func(i, depth int) error
}

// walker holds the state of one Walk.
type walker struct {
	children [][]int
	state    []int
	v        Visitor
}

// Walk traverses t depth-first from the root, children in index order.
//
// Errors:
//   - ErrMalformed for mismatched lengths, out-of-range parents, or not
//     exactly one root.
//   - ErrCycle when some node is not reachable from the root (with one
//     parent per node this only happens on a cycle).
//   - any error returned by a hook.
//
// Complexity: O(V).
func (t Tree) Walk(v Visitor) error {
	n := len(t.Nodes)
	if len(t.Parent) != n {
		return fmt.Errorf("%w: %d nodes, %d parent links", ErrMalformed, n, len(t.Parent))
	}
	if n == 0 {
		return nil
	}

	w := &walker{children: make([][]int, n), state: make([]int, n), v: v}
	root := -1
	for i, p := range t.Parent {
		switch {
		case p < 0 && root >= 0:
			return fmt.Errorf("%w: nodes %d and %d are both roots", ErrMalformed, t.Nodes[root].ID, t.Nodes[i].ID)
		case p < 0:
			root = i
		case p >= n:
			return fmt.Errorf("%w: parent %d of node %d out of range", ErrMalformed, p, t.Nodes[i].ID)
		default:
			w.children[p] = append(w.children[p], i)
		}
	}
	if root < 0 {
		return fmt.Errorf("%w: no root", ErrMalformed)
	}

	if err := w.visit(root, 0); err != nil {
		return err
	}
	for i, s := range w.state {
		if s != Black {
			return fmt.Errorf("%w: node %d not reachable from root", ErrCycle, t.Nodes[i].ID)
		}
	}
	return nil
}

// visit colours i Gray, runs OnVisit, descends into White children and
// colours i Black before OnExit.
func (w *walker) visit(i, depth int) error {
	w.state[i] = Gray
	if w.v.OnVisit != nil {
		if err := w.v.OnVisit(i, depth); err != nil {
			return err
		}
	}
	for _, c := range w.children[i] {
		switch w.state[c] {
		case White:
			if err := w.visit(c, depth+1); err != nil {
				return err
			}
		case Gray:
			return fmt.Errorf("%w: back edge to node %d", ErrCycle, c)
		}
	}
	w.state[i] = Black
	if w.v.OnExit != nil {
		return w.v.OnExit(i, depth)
	}
	return nil
}

// Validate checks structure and the sum rule: every child's prevalence
// and the joint prevalence of all children of a node stay within the
// node's prevalence (plus eps).
func (t Tree) Validate(eps float64) error {
	return t.Walk(Visitor{
		OnExit: func(i, _ int) error {
			var sum float64
			for _, c := range t.Children(i) {
				if t.Nodes[c].Prevalence > t.Nodes[i].Prevalence+eps {
					return fmt.Errorf("%w: child %d (%.4f) exceeds parent %d (%.4f)",
						ErrSumRule, t.Nodes[c].ID, t.Nodes[c].Prevalence, t.Nodes[i].ID, t.Nodes[i].Prevalence)
				}
				sum += t.Nodes[c].Prevalence
			}
			if sum > t.Nodes[i].Prevalence+eps {
				return fmt.Errorf("%w: children of %d sum to %.4f > %.4f",
					ErrSumRule, t.Nodes[i].ID, sum, t.Nodes[i].Prevalence)
			}
			return nil
		},
	})
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t Tree) Depth() int {
	d := 0
	_ = t.Walk(Visitor{OnVisit: func(_, depth int) error {
		if depth > d {
			d = depth
		}
		return nil
	}})
	return d
}
