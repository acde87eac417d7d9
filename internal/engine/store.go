package engine

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

// Column is a flat measure array indexed by row.
type Column[T number] []T

func (c Column[T]) at(row int32) float64 { return float64(c[row]) }

// ColumnStore holds the generated table in Struct-of-Arrays format.
// It is immutable once Generate returns.
type ColumnStore struct {
	IDs []int64

	// Dictionary encoded dimension IDs (0..N), one column per Field.
	DimIDs [numFields][]int32

	// Dictionaries (ID -> String)
	Dicts [numFields][]string

	// Measure columns
	Prevalence      Column[int64]
	Incidence       Column[int64]
	VolumeUnits     Column[int64]
	Qty             Column[int64]
	VaccinationRate Column[float64]
	CoverageRate    Column[float64]
	Price           Column[float64]
	PriceElasticity Column[float64]
	Revenue         Column[float64]
	MarketValue     Column[float64]
	MarketShare     Column[float64]
	CAGR            Column[float64]
	YoYGrowth       Column[float64]
	Efficacy        Column[float64]

	Seed uint64

	lookup [numFields]map[string]int32
	all    []int32
}

func newColumnStore(dicts [numFields][]string, rows int, seed uint64) *ColumnStore {
	cs := &ColumnStore{
		IDs:             make([]int64, rows),
		Dicts:           dicts,
		Prevalence:      make(Column[int64], rows),
		Incidence:       make(Column[int64], rows),
		VolumeUnits:     make(Column[int64], rows),
		Qty:             make(Column[int64], rows),
		VaccinationRate: make(Column[float64], rows),
		CoverageRate:    make(Column[float64], rows),
		Price:           make(Column[float64], rows),
		PriceElasticity: make(Column[float64], rows),
		Revenue:         make(Column[float64], rows),
		MarketValue:     make(Column[float64], rows),
		MarketShare:     make(Column[float64], rows),
		CAGR:            make(Column[float64], rows),
		YoYGrowth:       make(Column[float64], rows),
		Efficacy:        make(Column[float64], rows),
		Seed:            seed,
		all:             make([]int32, rows),
	}
	for f := range cs.DimIDs {
		cs.DimIDs[f] = make([]int32, rows)
	}
	cs.index()
	for i := range cs.all {
		cs.all[i] = int32(i)
	}
	return cs
}

// index builds the reverse dictionaries used by the filter engine.
func (cs *ColumnStore) index() {
	for f, dict := range cs.Dicts {
		m := make(map[string]int32, len(dict))
		for id, s := range dict {
			m[s] = int32(id)
		}
		cs.lookup[f] = m
	}
}

// Len is the number of records.
func (cs *ColumnStore) Len() int { return len(cs.IDs) }

// All returns a view over every record in generation order.
func (cs *ColumnStore) All() View { return View{store: cs, rows: cs.all} }

// Lookup resolves a dimension value to its dictionary ID.
func (cs *ColumnStore) Lookup(f Field, value string) (int32, bool) {
	if !f.Valid() {
		return 0, false
	}
	id, ok := cs.lookup[f][value]
	return id, ok
}

// Value returns the decoded dimension value of a row.
func (cs *ColumnStore) Value(f Field, row int32) string {
	return cs.Dicts[f][cs.DimIDs[f][row]]
}

// Dict returns the dictionary of a field.
func (cs *ColumnStore) Dict(f Field) ([]string, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, f)
	}
	return cs.Dicts[f], nil
}

// accessor returns a row reader for a measure column.
func (cs *ColumnStore) accessor(m Measure) (func(int32) float64, error) {
	switch m {
	case MeasurePrevalence:
		return cs.Prevalence.at, nil
	case MeasureIncidence:
		return cs.Incidence.at, nil
	case MeasureVaccinationRate:
		return cs.VaccinationRate.at, nil
	case MeasureCoverageRate:
		return cs.CoverageRate.at, nil
	case MeasurePrice:
		return cs.Price.at, nil
	case MeasurePriceElasticity:
		return cs.PriceElasticity.at, nil
	case MeasureVolumeUnits:
		return cs.VolumeUnits.at, nil
	case MeasureQty:
		return cs.Qty.at, nil
	case MeasureRevenue:
		return cs.Revenue.at, nil
	case MeasureMarketValue:
		return cs.MarketValue.at, nil
	case MeasureMarketShare:
		return cs.MarketShare.at, nil
	case MeasureCAGR:
		return cs.CAGR.at, nil
	case MeasureYoYGrowth:
		return cs.YoYGrowth.at, nil
	case MeasureEfficacy:
		return cs.Efficacy.at, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMeasure, m)
}

// MeasureValue reads one measure of one row.
func (cs *ColumnStore) MeasureValue(m Measure, row int32) (float64, error) {
	at, err := cs.accessor(m)
	if err != nil {
		return 0, err
	}
	return at(row), nil
}
