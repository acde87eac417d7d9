package engine

import (
	"fmt"
	"sort"
)

// Predicates maps a field to its allowed values. Values are OR-combined within
// a field and fields are AND-combined. A missing or empty list is no
// restriction.
type Predicates map[Field][]string

// ParsePredicates validates raw column names (aliases included) at the
// boundary. Names resolving to the same field are merged.
func ParsePredicates(raw map[string][]string) (Predicates, error) {
	p := make(Predicates, len(raw))
	for name, values := range raw {
		f, err := ParseField(name)
		if err != nil {
			return nil, err
		}
		p[f] = append(p[f], values...)
	}
	return p, nil
}

// Fields returns the restricted fields in column order.
func (p Predicates) Fields() []Field {
	out := make([]Field, 0, len(p))
	for f, values := range p {
		if len(values) > 0 {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type compiledPredicate struct {
	ids     []int32
	allowed []bool
}

// Filter narrows a view to rows matching every predicate. Row order is
// preserved. Values absent from a field's dictionary match nothing, so an
// impossible predicate yields an empty view rather than an error; only an
// invalid Field is rejected.
func Filter(v View, p Predicates) (View, error) {
	for f := range p {
		if !f.Valid() {
			return View{}, fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	if v.store == nil {
		return v, nil
	}

	var preds []compiledPredicate
	for _, f := range p.Fields() {
		allowed := make([]bool, len(v.store.Dicts[f]))
		for _, value := range p[f] {
			if id, ok := v.store.Lookup(f, value); ok {
				allowed[id] = true
			}
		}
		preds = append(preds, compiledPredicate{ids: v.store.DimIDs[f], allowed: allowed})
	}
	if len(preds) == 0 {
		return v, nil
	}

	n := v.Len()
	parts := make([][]int32, numChunks(n))
	forEachChunk(n, func(k, lo, hi int) {
		out := make([]int32, 0, hi-lo)
	rows:
		for _, row := range v.rows[lo:hi] {
			for _, pr := range preds {
				if !pr.allowed[pr.ids[row]] {
					continue rows
				}
			}
			out = append(out, row)
		}
		parts[k] = out
	})

	total := 0
	for _, part := range parts {
		total += len(part)
	}
	rows := make([]int32, 0, total)
	for _, part := range parts {
		rows = append(rows, part...)
	}
	return View{store: v.store, rows: rows}, nil
}
