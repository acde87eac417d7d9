package engine

import (
	"math/rand/v2"
	"testing"
)

// mockStore builds a three-row table by hand.
//
//	Row 0: Germany, Gardasil 9, revenue 100, 2021
//	Row 1: Germany, Cervarix,   revenue 200, 2021
//	Row 2: France,  Gardasil 9, revenue 300, 2022
func mockStore() *ColumnStore {
	var dicts [numFields][]string
	dicts[FieldYear] = []string{"2021", "2022"}
	dicts[FieldCountry] = []string{"Germany", "France"}
	dicts[FieldBrand] = []string{"Gardasil 9", "Cervarix"}

	cs := newColumnStore(dicts, 3, 0)
	copy(cs.DimIDs[FieldYear], []int32{0, 0, 1})
	copy(cs.DimIDs[FieldCountry], []int32{0, 0, 1})
	copy(cs.DimIDs[FieldBrand], []int32{0, 1, 0})
	copy(cs.Revenue, []float64{100, 200, 300})
	copy(cs.Qty, []int64{1, 2, 3})
	return cs
}

func TestSummarize(t *testing.T) {
	cs := mockStore()

	s, err := Summarize(cs.All(), MeasureRevenue)
	if err != nil {
		t.Fatal(err)
	}
	if s.Sum != 600 || s.Min != 100 || s.Max != 300 || s.Count != 3 {
		t.Errorf("Unexpected summary %+v", s)
	}
	if s.Mean() != 200 {
		t.Errorf("Expected mean 200, got %f", s.Mean())
	}

	empty, _ := Summarize(NewView(cs, nil), MeasureRevenue)
	if !empty.Empty() || empty.Mean() != 0 {
		t.Errorf("Expected empty summary, got %+v", empty)
	}
}

func TestGroupBy(t *testing.T) {
	cs := mockStore()

	tbl, err := GroupBy(cs.All(), FieldCountry, AggSum, MeasureRevenue, MeasureQty)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Expected 2 groups, got %d", tbl.Len())
	}
	// First-seen order
	if tbl.Rows[0].Keys[0] != "Germany" {
		t.Errorf("Expected Germany first, got %s", tbl.Rows[0].Keys[0])
	}
	if tbl.Rows[0].Values[0] != 300 || tbl.Rows[0].Values[1] != 3 {
		t.Errorf("Germany: unexpected values %v", tbl.Rows[0].Values)
	}
	if tbl.Rows[0].Count != 2 {
		t.Errorf("Germany: Expected 2 rows, got %d", tbl.Rows[0].Count)
	}

	mean, _ := GroupBy(cs.All(), FieldBrand, AggMean, MeasureRevenue)
	if mean.Rows[0].Keys[0] != "Gardasil 9" || mean.Rows[0].Values[0] != 200 {
		t.Errorf("Gardasil 9 mean: unexpected %v", mean.Rows[0])
	}

	count, _ := GroupBy(cs.All(), FieldYear, AggCount)
	if count.Rows[0].Values[0] != 2 || count.Rows[1].Values[0] != 1 {
		t.Errorf("Unexpected counts %v", count.Rows)
	}

	if _, err := GroupBy(cs.All(), FieldYear, AggSum); err == nil {
		t.Error("Expected an error for sum without a measure")
	}
}

func TestGroupBy2(t *testing.T) {
	cs := mockStore()

	tbl, err := GroupBy2(cs.All(), FieldYear, FieldBrand, AggSum, MeasureRevenue)
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]string{{"2021", "Gardasil 9"}, {"2021", "Cervarix"}, {"2022", "Gardasil 9"}}
	if tbl.Len() != len(want) {
		t.Fatalf("Expected %d groups, got %d", len(want), tbl.Len())
	}
	for i, w := range want {
		if tbl.Rows[i].Keys[0] != w[0] || tbl.Rows[i].Keys[1] != w[1] {
			t.Errorf("Group %d: Expected %v, got %v", i, w, tbl.Rows[i].Keys)
		}
	}

	kept := tbl.KeepKeys(1, []string{"Cervarix"})
	if kept.Len() != 1 || kept.Rows[0].Values[0] != 200 {
		t.Errorf("KeepKeys: unexpected %v", kept.Rows)
	}
}

func TestGroupByAcrossChunks(t *testing.T) {
	cs := mockStore()

	rows := make([]int32, 0, 2*chunkRows+3)
	for len(rows) < 2*chunkRows+3 {
		rows = append(rows, 0, 1, 2)
	}
	v := NewView(cs, rows)
	reps := float64(len(rows) / 3)

	tbl, err := GroupBy(v, FieldCountry, AggSum, MeasureRevenue)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Rows[0].Keys[0] != "Germany" || tbl.Rows[0].Values[0] != 300*reps {
		t.Errorf("Germany: unexpected %v", tbl.Rows[0])
	}
	if tbl.Rows[1].Values[0] != 300*reps {
		t.Errorf("France: unexpected %v", tbl.Rows[1])
	}
}

func TestArgmaxGroup(t *testing.T) {
	cs := mockStore()

	key, ok, err := ArgmaxGroup(cs.All(), FieldBrand, MeasureRevenue, AggSum)
	if err != nil || !ok {
		t.Fatalf("ArgmaxGroup failed: %v", err)
	}
	if key != "Gardasil 9" {
		t.Errorf("Expected Gardasil 9, got %s", key)
	}

	// Germany and France both total 300: the first seen wins.
	key, _, _ = ArgmaxGroup(cs.All(), FieldCountry, MeasureRevenue, AggSum)
	if key != "Germany" {
		t.Errorf("Tie: Expected Germany, got %s", key)
	}
	reversed := NewView(cs, []int32{2, 1, 0})
	key, _, _ = ArgmaxGroup(reversed, FieldCountry, MeasureRevenue, AggSum)
	if key != "France" {
		t.Errorf("Tie on reversed view: Expected France, got %s", key)
	}

	_, ok, err = ArgmaxGroup(NewView(cs, nil), FieldBrand, MeasureRevenue, AggSum)
	if ok || err != nil {
		t.Errorf("Expected no group for an empty view, got ok=%v err=%v", ok, err)
	}
}

func TestCountsAndPercentages(t *testing.T) {
	cs := mockStore()

	n, _ := CountDistinct(cs.All(), FieldBrand)
	if n != 2 {
		t.Errorf("Expected 2 brands, got %d", n)
	}
	pct, _ := PercentageOf(cs.All(), FieldCountry, "Germany")
	if pct < 66.66 || pct > 66.67 {
		t.Errorf("Expected 66.67%%, got %f", pct)
	}
	pct, _ = PercentageOf(NewView(cs, nil), FieldCountry, "Germany")
	if pct != 0 {
		t.Errorf("Expected 0 for empty view, got %f", pct)
	}
	values, _ := DistinctValues(NewView(cs, []int32{2, 0}), FieldCountry)
	if len(values) != 2 || values[0] != "France" {
		t.Errorf("Expected first-seen order, got %v", values)
	}
}

func TestTop(t *testing.T) {
	tbl := Table{Rows: []Row{
		{Keys: []string{"a"}, Values: []float64{1}},
		{Keys: []string{"b"}, Values: []float64{3}},
		{Keys: []string{"c"}, Values: []float64{3}},
		{Keys: []string{"d"}, Values: []float64{2}},
	}}

	top := tbl.Top(3, 0)
	got := top.Column(0)
	want := []string{"b", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}
	if tbl.Rows[0].Keys[0] != "a" {
		t.Error("Top modified the source table")
	}
}

func TestSample(t *testing.T) {
	cs := mustGenerate(t, tinyCatalog(), 42)
	v := cs.All()

	s := Sample(v, 5, rand.New(rand.NewPCG(1, 2)))
	if s.Len() != 5 {
		t.Fatalf("Expected 5 rows, got %d", s.Len())
	}
	seen := make(map[int32]bool)
	for _, r := range s.Rows() {
		if seen[r] {
			t.Errorf("Row %d sampled twice", r)
		}
		seen[r] = true
	}

	again := Sample(v, 5, rand.New(rand.NewPCG(1, 2)))
	for i := range s.Rows() {
		if s.Row(i) != again.Row(i) {
			t.Fatal("Same seed drew a different sample")
		}
	}

	if all := Sample(v, 100, rand.New(rand.NewPCG(1, 2))); all.Len() != v.Len() {
		t.Errorf("Expected the whole view, got %d", all.Len())
	}
}
