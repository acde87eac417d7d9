package modules

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"vaxmarket/internal/catalog"
	"vaxmarket/internal/engine"
	"vaxmarket/internal/models"
)

func testStore(t *testing.T) *engine.ColumnStore {
	t.Helper()
	cat := &catalog.Catalog{
		FirstYear: 2024,
		LastYear:  2025,
		Regions: []catalog.Region{
			{Name: "Europe", Countries: []catalog.Country{
				{Name: "Germany", Income: catalog.HighIncome},
				{Name: "Poland", Income: catalog.MiddleIncome},
			}},
			{Name: "Africa", Countries: []catalog.Country{
				{Name: "Kenya", Income: catalog.LowIncome},
			}},
		},
		Diseases: []catalog.Disease{
			{Name: "HPV", Brands: []string{"Gardasil 9", "Cervarix"}},
			{Name: "MMR", Brands: []string{"Priorix"}},
		},
		Companies:      []string{"Merck", "GSK"},
		AgeGroups:      []string{"Adult", "Elderly"},
		Genders:        []string{"Male", "Female"},
		Segments:       []string{"Gender", "Brand", "Age"},
		ROA:            []string{"IM", "SC"},
		FDF:            []string{"Vial", "Prefilled Syringe"},
		Procurement:    []string{"UNICEF", "GAVI", "Hospital"},
		PublicChannels: []string{"UNICEF", "GAVI"},
	}
	cs, err := engine.Generate(context.Background(), cat, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return cs
}

// tinyStore is one year, two countries, one disease with two brands, two age
// groups and two genders: 16 records, 8 per country.
func tinyStore(t *testing.T) *engine.ColumnStore {
	t.Helper()
	cat := &catalog.Catalog{
		FirstYear: 2025,
		LastYear:  2025,
		Regions: []catalog.Region{{Name: "Europe", Countries: []catalog.Country{
			{Name: "Germany", Income: catalog.HighIncome},
			{Name: "Poland", Income: catalog.MiddleIncome},
		}}},
		Diseases:       []catalog.Disease{{Name: "HPV", Brands: []string{"Gardasil 9", "Cervarix"}}},
		Companies:      []string{"Merck", "GSK"},
		AgeGroups:      []string{"Adult", "Elderly"},
		Genders:        []string{"Male", "Female"},
		Segments:       []string{"Gender", "Brand"},
		ROA:            []string{"IM", "SC"},
		FDF:            []string{"Vial", "Prefilled Syringe"},
		Procurement:    []string{"UNICEF", "Hospital"},
		PublicChannels: []string{"UNICEF"},
	}
	cs, err := engine.Generate(context.Background(), cat, 42)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return cs
}

func TestRegistry(t *testing.T) {
	all := All()
	if len(all) != 8 {
		t.Fatalf("Expected 8 modules, got %d", len(all))
	}
	for _, p := range all {
		got, err := Lookup(p.Slug)
		if err != nil || got != p {
			t.Errorf("Lookup(%s) failed: %v", p.Slug, err)
		}
		if len(p.Filters) == 0 {
			t.Errorf("%s has no filters", p.Slug)
		}
	}
	if _, err := Lookup("forecasting"); !errors.Is(err, ErrUnknownModule) {
		t.Errorf("Expected ErrUnknownModule, got %v", err)
	}
}

func TestEmptyViewSentinels(t *testing.T) {
	cs := testStore(t)
	impossible := engine.Predicates{engine.FieldYear: {"1999"}}

	want := map[string][]string{
		"epidemiology":      {"0", "0", "N/A", "0"},
		"vaccination-rate":  {"0.0%", "0.0%", "N/A", "0"},
		"pricing":           {"$0.00", "0.0", "N/A", "$0 - $0"},
		"cagr":              {"0.00%", "N/A", "0.00%", "0.00%"},
		"msa-comparison":    {"0", "0", "0.0%", "0.0%"},
		"procurement":       {"0", "0.0%", "0.0%", "N/A"},
		"brand-demographic": {"0", "N/A", "N/A", "0"},
		"fdf":               {"0", "N/A", "N/A", "0"},
	}

	for _, p := range All() {
		res, err := p.Run(cs, impossible, DefaultOptions())
		if err != nil {
			t.Fatalf("%s: %v", p.Slug, err)
		}
		if res.Records != 0 {
			t.Errorf("%s: Expected 0 records, got %d", p.Slug, res.Records)
		}
		if len(res.KPIs) != 4 {
			t.Fatalf("%s: Expected 4 KPIs, got %d", p.Slug, len(res.KPIs))
		}
		for i, k := range res.KPIs {
			if k.Value != want[p.Slug][i] {
				t.Errorf("%s %q: Expected %q, got %q", p.Slug, k.Label, want[p.Slug][i], k.Value)
			}
		}
		if len(res.Charts) != 3 {
			t.Fatalf("%s: Expected 3 charts, got %d", p.Slug, len(res.Charts))
		}
		for _, ch := range res.Charts {
			if ch.Rows == nil || len(ch.Rows) != 0 {
				t.Errorf("%s/%s: Expected empty rows, got %v", p.Slug, ch.ID, ch.Rows)
			}
		}
	}
}

func TestEpidemiologyTotals(t *testing.T) {
	cs := testStore(t)
	preds := engine.Predicates{engine.FieldCountry: {"Germany"}}

	res, err := epidemiology.Run(cs, preds, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	// 2 years × 3 brands × 2 age groups × 2 genders
	if res.Records != 24 {
		t.Fatalf("Expected 24 records, got %d", res.Records)
	}

	var total int64
	for row := 0; row < cs.Len(); row++ {
		if cs.Value(engine.FieldCountry, int32(row)) == "Germany" {
			total += cs.Prevalence[row]
		}
	}
	if got := res.KPIs[0].Value; got != engine.FormatMagnitude(float64(total)) {
		t.Errorf("Expected total prevalence %s, got %s", engine.FormatMagnitude(float64(total)), got)
	}

	trend := res.Charts[2]
	if len(trend.ValueColumns) != 2 || trend.ValueColumns[0] != "prevalence" {
		t.Errorf("Unexpected trend columns %v", trend.ValueColumns)
	}
	if len(trend.Rows) != 2 || trend.Rows[0].Keys[0] != "2024" || trend.Rows[1].Keys[0] != "2025" {
		t.Errorf("Expected ascending years, got %v", trend.Rows)
	}
	var sum float64
	for _, r := range trend.Rows {
		sum += r.Values[0]
	}
	if int64(sum) != total {
		t.Errorf("Trend prevalence %v does not add up to %d", sum, total)
	}
}

func TestEpidemiologySingleCountry(t *testing.T) {
	cs := tinyStore(t)
	if cs.Len() != 16 {
		t.Fatalf("Expected 16 records, got %d", cs.Len())
	}

	preds := engine.Predicates{engine.FieldCountry: {"Germany"}}
	res, err := epidemiology.Run(cs, preds, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.Records != 8 {
		t.Fatalf("Expected 8 records, got %d", res.Records)
	}

	var total, incidence int64
	rows := 0
	for row := 0; row < cs.Len(); row++ {
		if cs.Value(engine.FieldCountry, int32(row)) == "Germany" {
			total += cs.Prevalence[row]
			incidence += cs.Incidence[row]
			rows++
		}
	}
	if rows != 8 {
		t.Fatalf("Expected 8 Germany rows, got %d", rows)
	}

	view, err := engine.Filter(cs.All(), preds)
	if err != nil {
		t.Fatal(err)
	}
	s, err := engine.Summarize(view, engine.MeasurePrevalence)
	if err != nil {
		t.Fatal(err)
	}
	if s.Count != 8 || s.Sum != float64(total) {
		t.Errorf("Expected 8 rows summing to %d, got %d rows summing to %v", total, s.Count, s.Sum)
	}

	byDisease := res.Charts[0]
	if byDisease.ID != "prevalence-by-disease" || len(byDisease.Rows) != 1 {
		t.Fatalf("Unexpected chart %s with %d rows", byDisease.ID, len(byDisease.Rows))
	}
	if got := byDisease.Rows[0].Values[0]; got != float64(total) {
		t.Errorf("Expected HPV prevalence %d, got %v", total, got)
	}

	trend := res.Charts[2]
	if len(trend.Rows) != 1 || trend.Rows[0].Keys[0] != "2025" {
		t.Fatalf("Unexpected trend rows %v", trend.Rows)
	}
	if got := trend.Rows[0].Values; got[0] != float64(total) || got[1] != float64(incidence) {
		t.Errorf("Expected trend %d/%d, got %v", total, incidence, got)
	}

	if got := res.KPIs[0].Value; got != engine.FormatMagnitude(float64(total)) {
		t.Errorf("Expected total prevalence %s, got %s", engine.FormatMagnitude(float64(total)), got)
	}
	if got := res.KPIs[1].Value; got != engine.FormatMagnitude(float64(incidence)) {
		t.Errorf("Expected total incidence %s, got %s", engine.FormatMagnitude(float64(incidence)), got)
	}
}

func TestVaccinationCountriesKPI(t *testing.T) {
	cs := testStore(t)

	res, err := vaccinationRate.Run(cs, engine.Predicates{engine.FieldRegion: {"Europe"}}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if got := res.KPIs[3].Value; got != strconv.Itoa(2) {
		t.Errorf("Expected 2 countries, got %s", got)
	}
	if got := res.KPIs[2].Value; got != "Europe" {
		t.Errorf("Expected Europe as the only region, got %s", got)
	}
}

func TestProcurementShares(t *testing.T) {
	cs := testStore(t)

	res, err := procurement.Run(cs, engine.Predicates{engine.FieldPublicPrivate: {"Public"}}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if res.KPIs[1].Value != "100.0%" || res.KPIs[2].Value != "0.0%" {
		t.Errorf("Unexpected public/private split %s / %s", res.KPIs[1].Value, res.KPIs[2].Value)
	}
	top := res.KPIs[3].Value
	if top != "UNICEF" && top != "GAVI" {
		t.Errorf("Expected a public channel on top, got %s", top)
	}

	trend := res.Charts[2]
	if len(trend.KeyColumns) != 2 || trend.KeyColumns[1] != "public_private" {
		t.Errorf("Unexpected trend keys %v", trend.KeyColumns)
	}
}

func TestScatterSampling(t *testing.T) {
	cs := testStore(t)
	opts := Options{SampleCap: 10, SampleSeed: 7}
	preds := engine.Predicates{engine.FieldDisease: {"HPV"}}

	first, err := pricing.Run(cs, preds, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := pricing.Run(cs, preds, opts)

	a, b := scatterOf(t, first), scatterOf(t, second)
	if len(a.Rows) != 10 {
		t.Fatalf("Expected 10 sampled points, got %d", len(a.Rows))
	}
	for i := range a.Rows {
		if a.Rows[i].Values[0] != b.Rows[i].Values[0] {
			t.Fatal("Identical requests drew different samples")
		}
	}
	if len(a.Rows[0].Values) != 3 || len(a.Rows[0].Keys) != 2 {
		t.Errorf("Unexpected scatter row shape %+v", a.Rows[0])
	}
}

func scatterOf(t *testing.T, res *models.ModuleResult) models.Chart {
	t.Helper()
	for _, ch := range res.Charts {
		if ch.Kind == kindScatter {
			return ch
		}
	}
	t.Fatalf("%s has no scatter chart", res.Module)
	return models.Chart{}
}

func TestBrandDemographicTopBrands(t *testing.T) {
	cs := testStore(t)

	res, err := brandDemographic.Run(cs, nil, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	stacked := res.Charts[2]
	// 3 brands × 2 age groups, all within the top 10.
	if len(stacked.Rows) != 6 {
		t.Errorf("Expected 6 brand/age rows, got %d", len(stacked.Rows))
	}
}

func TestRunRejectsForeignFields(t *testing.T) {
	cs := testStore(t)

	_, err := epidemiology.Run(cs, engine.Predicates{engine.FieldBrand: {"Priorix"}}, DefaultOptions())
	if !errors.Is(err, ErrFieldNotAllowed) {
		t.Errorf("Expected ErrFieldNotAllowed, got %v", err)
	}

	// A field with no values restricts nothing, so it need not be a module filter.
	res, err := epidemiology.Run(cs, engine.Predicates{engine.FieldBrand: nil, engine.FieldGender: {}}, DefaultOptions())
	if err != nil {
		t.Fatalf("Expected empty foreign fields to be ignored, got %v", err)
	}
	if res.Records != cs.Len() {
		t.Errorf("Expected %d records, got %d", cs.Len(), res.Records)
	}

	// market is the disease column under another name.
	if _, err := pricing.Run(cs, engine.Predicates{engine.FieldDisease: {"MMR"}}, DefaultOptions()); err != nil {
		t.Errorf("Expected market filter to be accepted, got %v", err)
	}
}

func TestFilterOptions(t *testing.T) {
	cs := testStore(t)

	opts, err := epidemiology.FilterOptions(cs)
	if err != nil {
		t.Fatal(err)
	}
	if len(opts) != len(epidemiology.Filters) {
		t.Fatalf("Expected %d filters, got %d", len(epidemiology.Filters), len(opts))
	}
	years := opts[0]
	if years.Field != "year" || len(years.Values) != 2 || years.Values[0] != "2024" {
		t.Errorf("Unexpected year options %+v", years)
	}
	regions := opts[2]
	if regions.Values[0] != "Africa" || regions.Values[1] != "Europe" {
		t.Errorf("Expected sorted regions, got %v", regions.Values)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(engine.Predicates{
		engine.FieldYear:    {"2024", "2025"},
		engine.FieldCountry: {"Kenya"},
	})
	b := Fingerprint(engine.Predicates{
		engine.FieldCountry: {"Kenya"},
		engine.FieldYear:    {"2025", "2024"},
	})
	if a != b {
		t.Error("Fingerprint depends on value order")
	}
	if a == Fingerprint(nil) {
		t.Error("Fingerprint ignores predicates")
	}
}
