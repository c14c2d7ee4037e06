package genome

import (
	"slices"
	"sort"
	"strings"
)

// chromIndex is the per-chromosome lookup table: segment indices sorted by
// start, and the running maximum of End used to stop backward scans early.
type chromIndex struct {
	idx    []int   // indices into the sorted segment slice
	starts []int64 // starts[i] == segs[idx[i]].Start
	maxEnd []int64 // maxEnd[i] == max(segs[idx[0..i]].End)
}

// Annotate maps every mutation onto the segment containing it.
//
// Implementation:
//   - Stage 1: copy and sort segments by (chromosome, start, end, major, minor);
//     drop invalid segments (counted in Invalid).
//   - Stage 2: build one chromIndex per chromosome and count overlapping segments.
//   - Stage 3: for each valid mutation, binary search the last segment with
//     Start ≤ mut.Start and scan backwards while the running max End still
//     reaches mut.End. The lowest sorted index wins; extra matches are conflicts.
//
// Mutations with no match are excluded and counted; nothing here is fatal.
//
// Complexity: O(S log S + M log S) for non-overlapping segments.
func Annotate(sample SampleContext, muts []Mutation, segs []Segment, opts Options) *Annotation {
	out := &Annotation{Sample: sample}

	// Stage 1: validated, sorted copy.
	sorted := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if err := s.Validate(); err != nil {
			out.Invalid++
			continue
		}
		sorted = append(sorted, s)
	}
	slices.SortStableFunc(sorted, func(a, b Segment) int {
		ca, cb := chromKey(a.Chromosome, opts), chromKey(b.Chromosome, opts)
		switch {
		case ca != cb:
			return strings.Compare(ca, cb)
		case a.Start != b.Start:
			return cmpInt64(a.Start, b.Start)
		case a.End != b.End:
			return cmpInt64(a.End, b.End)
		case a.Major != b.Major:
			return a.Major - b.Major
		default:
			return a.Minor - b.Minor
		}
	})
	out.Segments = sorted

	// Stage 2: per-chromosome index.
	index := make(map[string]*chromIndex)
	var (
		i  int
		ci *chromIndex
		ok bool
	)
	for i = range sorted {
		key := chromKey(sorted[i].Chromosome, opts)
		if ci, ok = index[key]; !ok {
			ci = &chromIndex{}
			index[key] = ci
		}
		end := sorted[i].End
		if n := len(ci.maxEnd); n > 0 {
			if sorted[i].Start <= ci.maxEnd[n-1] {
				out.SegmentOverlaps++
			}
			if ci.maxEnd[n-1] > end {
				end = ci.maxEnd[n-1]
			}
		}
		ci.idx = append(ci.idx, i)
		ci.starts = append(ci.starts, sorted[i].Start)
		ci.maxEnd = append(ci.maxEnd, end)
	}

	// Stage 3: lookup.
	out.Mutations = make([]AnnotatedMutation, 0, len(muts))
	for _, m := range muts {
		if err := m.Validate(); err != nil {
			out.Invalid++
			continue
		}
		ci = index[chromKey(m.Chromosome, opts)]
		if ci == nil {
			out.Excluded++
			continue
		}
		seg, hits := ci.lookup(sorted, m.Start, m.End)
		if hits == 0 {
			out.Excluded++
			continue
		}
		if hits > 1 {
			out.Conflicts++
		}
		k := sorted[seg].Karyotype()
		out.Mutations = append(out.Mutations, AnnotatedMutation{
			Mutation:  m,
			Segment:   seg,
			Karyotype: k,
			Ploidy:    sample.Ploidy(k),
		})
	}

	return out
}

// lookup returns the lowest sorted index of a segment containing [from,to]
// together with the number of containing segments.
func (ci *chromIndex) lookup(segs []Segment, from, to int64) (int, int) {
	// Last position with Start ≤ from.
	j := sort.Search(len(ci.starts), func(p int) bool { return ci.starts[p] > from }) - 1
	best, hits := -1, 0
	for ; j >= 0; j-- {
		if ci.maxEnd[j] < to {
			break // no earlier segment can reach to
		}
		s := ci.idx[j]
		if segs[s].Contains(from, to) {
			hits++
			best = s // scanning backwards, so the last hit is the lowest index
		}
	}
	return best, hits
}

// Groups returns the mutations grouped by karyotype, ordered by
// (major, minor). Indices within a group keep input order.
func (a *Annotation) Groups() []KaryotypeGroup {
	byK := make(map[Karyotype][]int)
	for i, m := range a.Mutations {
		byK[m.Karyotype] = append(byK[m.Karyotype], i)
	}
	groups := make([]KaryotypeGroup, 0, len(byK))
	for k, idx := range byK {
		groups = append(groups, KaryotypeGroup{Karyotype: k, Indices: idx})
	}
	slices.SortFunc(groups, func(x, y KaryotypeGroup) int {
		if x.Karyotype.Less(y.Karyotype) {
			return -1
		}
		if y.Karyotype.Less(x.Karyotype) {
			return 1
		}
		return 0
	})
	return groups
}

// chromKey returns the lookup key for a chromosome name.
func chromKey(chr string, opts Options) string {
	if !opts.NormalizeChromosomes {
		return chr
	}
	c := strings.ToLower(strings.TrimSpace(chr))
	return strings.TrimPrefix(c, "chr")
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
