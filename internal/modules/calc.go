package modules

import (
	"fmt"
	"math/rand/v2"

	"vaxmarket/internal/engine"
	"vaxmarket/internal/models"
)

const notAvailable = "N/A"

// Chart kinds understood by the plotting layer.
const (
	kindBar        = "bar"
	kindPie        = "pie"
	kindLine       = "line"
	kindScatter    = "scatter"
	kindStackedBar = "stacked_bar"
	kindGroupedBar = "grouped_bar"
)

// calc runs reductions over one filtered view and keeps the first error,
// so a plan reads as a flat list of reductions.
type calc struct {
	view      engine.View
	rng       *rand.Rand
	sampleCap int
	err       error
}

func (c *calc) summary(m engine.Measure) engine.Summary {
	if c.err != nil {
		return engine.Summary{}
	}
	s, err := engine.Summarize(c.view, m)
	c.err = err
	return s
}

// top is the argmax group, or "N/A" for an empty view.
func (c *calc) top(f engine.Field, m engine.Measure, agg engine.Agg) string {
	if c.err != nil {
		return notAvailable
	}
	key, ok, err := engine.ArgmaxGroup(c.view, f, m, agg)
	c.err = err
	if !ok {
		return notAvailable
	}
	return key
}

func (c *calc) distinct(f engine.Field) int {
	if c.err != nil {
		return 0
	}
	n, err := engine.CountDistinct(c.view, f)
	c.err = err
	return n
}

func (c *calc) percentage(f engine.Field, value string) float64 {
	if c.err != nil {
		return 0
	}
	pct, err := engine.PercentageOf(c.view, f, value)
	c.err = err
	return pct
}

func (c *calc) group(f engine.Field, agg engine.Agg, measures ...engine.Measure) engine.Table {
	if c.err != nil {
		return engine.Table{}
	}
	t, err := engine.GroupBy(c.view, f, agg, measures...)
	c.err = err
	return t
}

func (c *calc) group2(outer, inner engine.Field, agg engine.Agg, m engine.Measure) engine.Table {
	if c.err != nil {
		return engine.Table{}
	}
	t, err := engine.GroupBy2(c.view, outer, inner, agg, m)
	c.err = err
	return t
}

// meanOfGroups averages the first value column over the groups of t.
func meanOfGroups(t engine.Table) float64 {
	if t.Len() == 0 {
		return 0
	}
	var total float64
	for _, r := range t.Rows {
		total += r.Values[0]
	}
	return total / float64(t.Len())
}

func kpi(label, value string) models.KPI {
	return models.KPI{Label: label, Value: value}
}

func percent1(v float64) string { return fmt.Sprintf("%.1f%%", v) }

func percent2(v float64) string { return fmt.Sprintf("%.2f%%", v) }

func dollars(v float64) string { return fmt.Sprintf("$%.2f", v) }

func dollarRange(lo, hi float64) string { return fmt.Sprintf("$%.0f - $%.0f", lo, hi) }

// chart converts a grouped table. Value columns are named after the measures,
// or "count" for counting aggregates.
func chart(id, title, kind string, t engine.Table) models.Chart {
	ch := models.Chart{
		ID:    id,
		Title: title,
		Kind:  kind,
		Rows:  make([]models.ChartRow, 0, t.Len()),
	}
	for _, f := range t.Keys {
		ch.KeyColumns = append(ch.KeyColumns, f.String())
	}
	if t.Agg == engine.AggCount || len(t.Measures) == 0 {
		ch.ValueColumns = []string{"count"}
	} else {
		for _, m := range t.Measures {
			ch.ValueColumns = append(ch.ValueColumns, m.String())
		}
	}
	for _, r := range t.Rows {
		ch.Rows = append(ch.Rows, models.ChartRow{Keys: r.Keys, Values: r.Values})
	}
	return ch
}

// scatter samples up to sampleCap records of the view and emits one row per
// record.
func (c *calc) scatter(id, title string, keys []engine.Field, measures []engine.Measure) models.Chart {
	ch := models.Chart{
		ID:    id,
		Title: title,
		Kind:  kindScatter,
		Rows:  []models.ChartRow{},
	}
	for _, f := range keys {
		ch.KeyColumns = append(ch.KeyColumns, f.String())
	}
	for _, m := range measures {
		ch.ValueColumns = append(ch.ValueColumns, m.String())
	}
	if c.err != nil {
		return ch
	}

	sample := engine.Sample(c.view, c.sampleCap, c.rng)
	cs := sample.Store()
	for i := 0; i < sample.Len(); i++ {
		row := sample.Row(i)
		r := models.ChartRow{
			Keys:   make([]string, len(keys)),
			Values: make([]float64, len(measures)),
		}
		for k, f := range keys {
			r.Keys[k] = cs.Value(f, row)
		}
		for k, m := range measures {
			v, err := cs.MeasureValue(m, row)
			if err != nil {
				c.err = err
				return ch
			}
			r.Values[k] = v
		}
		ch.Rows = append(ch.Rows, r)
	}
	return ch
}
