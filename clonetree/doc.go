// Package clonetree enumerates clone trees consistent with the clonal
// evolution sum rule over the clusters of a selected mixture fit.
//
// What:
//
//   - Every cluster becomes a node with a prevalence (its mixing weight,
//     or its mean when Options.Prevalence is PrevalenceMean).
//   - Nodes are placed in decreasing prevalence order (ties by id); the
//     first is the root. Each next node takes as parent any already placed
//     node whose remaining capacity (prevalence minus the prevalence of its
//     children) still holds it. Every complete assignment is one tree.
//   - Walk traverses a tree depth-first with White/Gray/Black colouring;
//     Validate uses it to reject cycles, unreachable nodes and sum-rule
//     violations.
//
// Policy:
//
//   - An empty TreeSet is a valid outcome, not an error.
//   - Enumeration stops after Options.MaxTrees trees; TreeSet.Truncated
//     reports that more existed.
//   - The tail component never enters a tree.
//
// Complexity:
//
//   - Enumeration is exponential in the number of clusters in the worst
//     case; prevalence ordering prunes most branches early. Validate is
//     O(V).
package clonetree
