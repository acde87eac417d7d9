package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownField   = errors.New("unknown field")
	ErrUnknownMeasure = errors.New("unknown measure")
)

// Field identifies a dictionary-encoded dimension column.
type Field int

const (
	FieldYear Field = iota
	FieldRegion
	FieldCountry
	FieldIncomeType
	FieldDisease
	FieldBrand
	FieldCompany
	FieldAgeGroup
	FieldGender
	FieldSegment
	FieldSegmentBy
	FieldROA
	FieldFDF
	FieldProcurement
	FieldPublicPrivate
	FieldPriceClass

	numFields
)

var fieldNames = [numFields]string{
	FieldYear:          "year",
	FieldRegion:        "region",
	FieldCountry:       "country",
	FieldIncomeType:    "income_type",
	FieldDisease:       "disease",
	FieldBrand:         "brand",
	FieldCompany:       "company",
	FieldAgeGroup:      "age_group",
	FieldGender:        "gender",
	FieldSegment:       "segment",
	FieldSegmentBy:     "segment_by",
	FieldROA:           "roa",
	FieldFDF:           "fdf",
	FieldProcurement:   "procurement",
	FieldPublicPrivate: "public_private",
	FieldPriceClass:    "price_class",
}

// Column aliases kept from the source workbook.
var fieldAliases = map[string]Field{
	"market":      FieldDisease,
	"formulation": FieldFDF,
}

func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

func (f Field) Valid() bool { return f >= 0 && f < numFields }

// ParseField resolves a column name or alias.
func ParseField(name string) (Field, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == key {
			return Field(f), nil
		}
	}
	if f, ok := fieldAliases[key]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Fields lists every dimension in column order.
func Fields() []Field {
	out := make([]Field, numFields)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Measure identifies a numeric column.
type Measure int

const (
	MeasurePrevalence Measure = iota
	MeasureIncidence
	MeasureVaccinationRate
	MeasureCoverageRate
	MeasurePrice
	MeasurePriceElasticity
	MeasureVolumeUnits
	MeasureQty
	MeasureRevenue
	MeasureMarketValue
	MeasureMarketShare
	MeasureCAGR
	MeasureYoYGrowth
	MeasureEfficacy

	numMeasures
)

var measureNames = [numMeasures]string{
	MeasurePrevalence:      "prevalence",
	MeasureIncidence:       "incidence",
	MeasureVaccinationRate: "vaccination_rate",
	MeasureCoverageRate:    "coverage_rate",
	MeasurePrice:           "price",
	MeasurePriceElasticity: "price_elasticity",
	MeasureVolumeUnits:     "volume_units",
	MeasureQty:             "qty",
	MeasureRevenue:         "revenue",
	MeasureMarketValue:     "market_value_usd",
	MeasureMarketShare:     "market_share_pct",
	MeasureCAGR:            "cagr",
	MeasureYoYGrowth:       "yoy_growth",
	MeasureEfficacy:        "efficacy_pct",
}

var measureAliases = map[string]Measure{
	"value": MeasureMarketValue,
	"share": MeasureMarketShare,
	"yoy":   MeasureYoYGrowth,
}

func (m Measure) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Measure(%d)", int(m))
	}
	return measureNames[m]
}

func (m Measure) Valid() bool { return m >= 0 && m < numMeasures }

func ParseMeasure(name string) (Measure, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for m, n := range measureNames {
		if n == key {
			return Measure(m), nil
		}
	}
	if m, ok := measureAliases[key]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMeasure, name)
}

// Measures lists every measure in column order.
func Measures() []Measure {
	out := make([]Measure, numMeasures)
	for i := range out {
		out[i] = Measure(i)
	}
	return out
}

// Integral reports whether the measure holds whole numbers.
func (m Measure) Integral() bool {
	switch m {
	case MeasurePrevalence, MeasureIncidence, MeasureVolumeUnits, MeasureQty:
		return true
	}
	return false
}
