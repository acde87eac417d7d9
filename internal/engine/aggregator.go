package engine

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// Agg selects how grouped measures are reduced.
type Agg int

const (
	AggSum Agg = iota
	AggMean
	AggCount
)

func (a Agg) String() string {
	switch a {
	case AggSum:
		return "sum"
	case AggMean:
		return "mean"
	case AggCount:
		return "count"
	}
	return fmt.Sprintf("Agg(%d)", int(a))
}

// Summary is a single-pass reduction of one measure over a view.
// Min and Max are zero when Count is zero.
type Summary struct {
	Count int
	Sum   float64
	Min   float64
	Max   float64
}

// Mean returns 0 for an empty view.
func (s Summary) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

func (s Summary) Empty() bool { return s.Count == 0 }

// Summarize computes count, sum, min and max of a measure.
func Summarize(v View, m Measure) (Summary, error) {
	if !m.Valid() {
		return Summary{}, fmt.Errorf("%w: %s", ErrUnknownMeasure, m)
	}
	var s Summary
	if v.Len() == 0 {
		return s, nil
	}
	at, err := v.store.accessor(m)
	if err != nil {
		return s, err
	}
	for i, row := range v.rows {
		x := at(row)
		if i == 0 || x < s.Min {
			s.Min = x
		}
		if i == 0 || x > s.Max {
			s.Max = x
		}
		s.Sum += x
	}
	s.Count = len(v.rows)
	return s, nil
}

// CountDistinct returns the number of distinct values of a field in the view.
func CountDistinct(v View, f Field) (int, error) {
	if !f.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	if v.Len() == 0 {
		return 0, nil
	}
	ids := v.store.DimIDs[f]
	seen := make([]bool, len(v.store.Dicts[f]))
	n := 0
	for _, row := range v.rows {
		if id := ids[row]; !seen[id] {
			seen[id] = true
			n++
		}
	}
	return n, nil
}

// DistinctValues returns the values of a field in first-seen order.
func DistinctValues(v View, f Field) ([]string, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	if v.Len() == 0 {
		return nil, nil
	}
	ids := v.store.DimIDs[f]
	dict := v.store.Dicts[f]
	seen := make([]bool, len(dict))
	var out []string
	for _, row := range v.rows {
		if id := ids[row]; !seen[id] {
			seen[id] = true
			out = append(out, dict[id])
		}
	}
	return out, nil
}

// PercentageOf is the share of rows whose field equals value, in percent.
// An empty view yields 0.
func PercentageOf(v View, f Field, value string) (float64, error) {
	if !f.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	if v.Len() == 0 {
		return 0, nil
	}
	id, ok := v.store.Lookup(f, value)
	if !ok {
		return 0, nil
	}
	ids := v.store.DimIDs[f]
	hits := 0
	for _, row := range v.rows {
		if ids[row] == id {
			hits++
		}
	}
	return float64(hits) / float64(len(v.rows)) * 100, nil
}

// Row is one group of a Table.
type Row struct {
	Keys   []string
	Values []float64
	Count  int
}

// Table is a grouped aggregate. Rows appear in the order their group was
// first seen in the view unless re-sorted with Top.
type Table struct {
	Keys     []Field
	Measures []Measure
	Agg      Agg
	Rows     []Row
}

func (t Table) Len() int { return len(t.Rows) }

// Top returns the n rows with the largest value in column col, ties kept in
// their original order. n <= 0 keeps every row.
func (t Table) Top(n, col int) Table {
	rows := make([]Row, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Values[col] > rows[j].Values[col] })
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	t.Rows = rows
	return t
}

// KeepKeys drops rows whose key at position k is not listed.
func (t Table) KeepKeys(k int, keep []string) Table {
	allowed := make(map[string]bool, len(keep))
	for _, s := range keep {
		allowed[s] = true
	}
	rows := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if allowed[r.Keys[k]] {
			rows = append(rows, r)
		}
	}
	t.Rows = rows
	return t
}

// Column returns the k-th key of every row.
func (t Table) Column(k int) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Keys[k]
	}
	return out
}

// partialAgg accumulates per-group sums and counts, indexed by group ID.
type partialAgg struct {
	sums   [][]float64
	counts []int
	order  []int32
}

func newPartialAgg(groups, measures int) *partialAgg {
	p := &partialAgg{
		sums:   make([][]float64, measures),
		counts: make([]int, groups),
	}
	for m := range p.sums {
		p.sums[m] = make([]float64, groups)
	}
	return p
}

// merge folds another chunk in. Merging chunks in chunk order keeps the
// first-seen order of the whole view.
func (p *partialAgg) merge(o *partialAgg) {
	for _, g := range o.order {
		if p.counts[g] == 0 {
			p.order = append(p.order, g)
		}
		p.counts[g] += o.counts[g]
		for m := range p.sums {
			p.sums[m][g] += o.sums[m][g]
		}
	}
}

func accumulate(v View, groups int, key func(int32) int32, readers []func(int32) float64) *partialAgg {
	n := v.Len()
	partials := make([]*partialAgg, numChunks(n))
	forEachChunk(n, func(k, lo, hi int) {
		p := newPartialAgg(groups, len(readers))
		for _, row := range v.rows[lo:hi] {
			g := key(row)
			if p.counts[g] == 0 {
				p.order = append(p.order, g)
			}
			p.counts[g]++
			for m, at := range readers {
				p.sums[m][g] += at(row)
			}
		}
		partials[k] = p
	})

	final := newPartialAgg(groups, len(readers))
	for _, p := range partials {
		final.merge(p)
	}
	return final
}

func (p *partialAgg) values(g int32, agg Agg) []float64 {
	if agg == AggCount || len(p.sums) == 0 {
		return []float64{float64(p.counts[g])}
	}
	out := make([]float64, len(p.sums))
	for m := range p.sums {
		out[m] = p.sums[m][g]
		if agg == AggMean {
			out[m] /= float64(p.counts[g])
		}
	}
	return out
}

func validate(agg Agg, fields []Field, measures []Measure) error {
	for _, f := range fields {
		if !f.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	for _, m := range measures {
		if !m.Valid() {
			return fmt.Errorf("%w: %s", ErrUnknownMeasure, m)
		}
	}
	switch agg {
	case AggSum, AggMean:
		if len(measures) == 0 {
			return fmt.Errorf("%s aggregation needs a measure", agg)
		}
	case AggCount:
	default:
		return fmt.Errorf("unknown aggregation %s", agg)
	}
	return nil
}

func (cs *ColumnStore) readers(measures []Measure) ([]func(int32) float64, error) {
	out := make([]func(int32) float64, len(measures))
	for i, m := range measures {
		at, err := cs.accessor(m)
		if err != nil {
			return nil, err
		}
		out[i] = at
	}
	return out, nil
}

// GroupBy reduces each measure per value of f. With AggCount the single value
// column is the row count.
func GroupBy(v View, f Field, agg Agg, measures ...Measure) (Table, error) {
	t := Table{Keys: []Field{f}, Measures: measures, Agg: agg}
	if err := validate(agg, t.Keys, measures); err != nil {
		return t, err
	}
	if v.Len() == 0 {
		return t, nil
	}
	readers, err := v.store.readers(measures)
	if err != nil {
		return t, err
	}
	if agg == AggCount {
		readers = nil
	}

	ids := v.store.DimIDs[f]
	dict := v.store.Dicts[f]
	p := accumulate(v, len(dict), func(row int32) int32 { return ids[row] }, readers)

	t.Rows = make([]Row, 0, len(p.order))
	for _, g := range p.order {
		t.Rows = append(t.Rows, Row{
			Keys:   []string{dict[g]},
			Values: p.values(g, agg),
			Count:  p.counts[g],
		})
	}
	return t, nil
}

// GroupBy2 reduces a measure per (outer, inner) pair.
func GroupBy2(v View, outer, inner Field, agg Agg, m Measure) (Table, error) {
	t := Table{Keys: []Field{outer, inner}, Measures: []Measure{m}, Agg: agg}
	if err := validate(agg, t.Keys, t.Measures); err != nil {
		return t, err
	}
	if v.Len() == 0 {
		return t, nil
	}
	readers, err := v.store.readers(t.Measures)
	if err != nil {
		return t, err
	}
	if agg == AggCount {
		readers = nil
	}

	outerIDs, innerIDs := v.store.DimIDs[outer], v.store.DimIDs[inner]
	outerDict, innerDict := v.store.Dicts[outer], v.store.Dicts[inner]
	width := int32(len(innerDict))
	p := accumulate(v, len(outerDict)*len(innerDict), func(row int32) int32 {
		return outerIDs[row]*width + innerIDs[row]
	}, readers)

	t.Rows = make([]Row, 0, len(p.order))
	for _, g := range p.order {
		t.Rows = append(t.Rows, Row{
			Keys:   []string{outerDict[g/width], innerDict[g%width]},
			Values: p.values(g, agg),
			Count:  p.counts[g],
		})
	}
	return t, nil
}

// ArgmaxGroup returns the value of f whose aggregated measure is largest.
// Ties go to the group seen first in the view. ok is false for an empty view.
func ArgmaxGroup(v View, f Field, m Measure, agg Agg) (key string, ok bool, err error) {
	t, err := GroupBy(v, f, agg, m)
	if err != nil || t.Len() == 0 {
		return "", false, err
	}
	best := 0
	for i, r := range t.Rows[1:] {
		if r.Values[0] > t.Rows[best].Values[0] {
			best = i + 1
		}
	}
	return t.Rows[best].Keys[0], true, nil
}

// Sample draws min(n, v.Len()) rows without replacement.
func Sample(v View, n int, r *rand.Rand) View {
	if n >= v.Len() {
		return v
	}
	if n <= 0 {
		return View{store: v.store, rows: []int32{}}
	}
	rows := make([]int32, v.Len())
	copy(rows, v.rows)
	for i := 0; i < n; i++ {
		j := i + r.IntN(len(rows)-i)
		rows[i], rows[j] = rows[j], rows[i]
	}
	return View{store: v.store, rows: rows[:n]}
}
