package modules

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"

	"vaxmarket/internal/engine"
	"vaxmarket/internal/models"
)

var (
	ErrUnknownModule   = errors.New("unknown module")
	ErrFieldNotAllowed = errors.New("field not allowed for module")
)

// Filter is a dropdown the module exposes. Name keeps the column alias the
// module is known by ("market" rather than "disease").
type Filter struct {
	Name  string
	Label string
	Field engine.Field
}

// Plan is one analysis module: the filters it accepts and the reductions
// that turn a filtered view into KPIs and charts.
type Plan struct {
	Slug    string
	Title   string
	Filters []Filter
	build   func(c *calc) ([]models.KPI, []models.Chart)
}

// Options tune the parts of a run that are not fixed by the plan.
type Options struct {
	// SampleCap bounds scatter charts.
	SampleCap int
	// SampleSeed seeds scatter sampling; it is mixed with the filter
	// fingerprint so identical requests draw identical samples.
	SampleSeed uint64
}

func DefaultOptions() Options {
	return Options{SampleCap: 100, SampleSeed: 7}
}

func (p *Plan) Info() models.ModuleInfo {
	names := make([]string, len(p.Filters))
	for i, f := range p.Filters {
		names[i] = f.Name
	}
	return models.ModuleInfo{Slug: p.Slug, Title: p.Title, Filters: names}
}

// Allows reports whether the module filters on f.
func (p *Plan) Allows(f engine.Field) bool {
	for _, flt := range p.Filters {
		if flt.Field == f {
			return true
		}
	}
	return false
}

// Run filters the store with preds and computes the module's KPIs and charts.
// An empty selection is not an error: every KPI falls back to its sentinel
// and every chart is empty. A field with no values places no restriction, so
// only fields that carry values must belong to the module's filters.
func (p *Plan) Run(cs *engine.ColumnStore, preds engine.Predicates, opts Options) (*models.ModuleResult, error) {
	for f, values := range preds {
		if !f.Valid() {
			return nil, fmt.Errorf("module %s: %w: %s", p.Slug, engine.ErrUnknownField, f)
		}
		if len(values) > 0 && !p.Allows(f) {
			return nil, fmt.Errorf("%w: %s does not filter on %s", ErrFieldNotAllowed, p.Slug, f)
		}
	}
	view, err := engine.Filter(cs.All(), preds)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", p.Slug, err)
	}

	c := &calc{
		view:      view,
		sampleCap: opts.SampleCap,
		rng:       rand.New(rand.NewPCG(opts.SampleSeed, Fingerprint(preds))),
	}
	kpis, charts := p.build(c)
	if c.err != nil {
		return nil, fmt.Errorf("module %s: %w", p.Slug, c.err)
	}

	return &models.ModuleResult{
		Module:  p.Slug,
		Title:   p.Title,
		Records: view.Len(),
		KPIs:    kpis,
		Charts:  charts,
	}, nil
}

// FilterOptions lists, per filter, the sorted distinct values present in the
// table. Years sort numerically.
func (p *Plan) FilterOptions(cs *engine.ColumnStore) ([]models.FilterOption, error) {
	out := make([]models.FilterOption, 0, len(p.Filters))
	for _, flt := range p.Filters {
		values, err := engine.DistinctValues(cs.All(), flt.Field)
		if err != nil {
			return nil, err
		}
		if flt.Field == engine.FieldYear {
			sort.Slice(values, func(i, j int) bool {
				a, _ := strconv.Atoi(values[i])
				b, _ := strconv.Atoi(values[j])
				return a < b
			})
		} else {
			sort.Strings(values)
		}
		if values == nil {
			values = []string{}
		}
		out = append(out, models.FilterOption{Field: flt.Name, Label: flt.Label, Values: values})
	}
	return out, nil
}

// Fingerprint hashes a predicate set independently of map and value order.
func Fingerprint(preds engine.Predicates) uint64 {
	var b strings.Builder
	for _, f := range preds.Fields() {
		values := append([]string(nil), preds[f]...)
		sort.Strings(values)
		b.WriteString(f.String())
		b.WriteByte('=')
		b.WriteString(strings.Join(values, "\x1f"))
		b.WriteByte('\x1e')
	}
	return xxh3.HashString(b.String())
}

var registry = []*Plan{
	epidemiology,
	vaccinationRate,
	pricing,
	cagr,
	msaComparison,
	procurement,
	brandDemographic,
	formulation,
}

// All returns the modules in landing-page order.
func All() []*Plan {
	return append([]*Plan(nil), registry...)
}

// Lookup finds a module by slug.
func Lookup(slug string) (*Plan, error) {
	for _, p := range registry {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModule, slug)
}
