package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"vaxmarket/internal/catalog"
)

// FirstRecordID is the id of row 0; ids increase by one per row.
const FirstRecordID = 100000

var ErrTableTooLarge = errors.New("table exceeds addressable rows")

var (
	incomeDict      = []string{catalog.HighIncome, catalog.MiddleIncome, catalog.LowIncome}
	sectorDict      = []string{catalog.Public, catalog.Private}
	priceClassDict  = []string{"Budget", "Standard", "Premium"}
	// male and female always occupy segment_by IDs 0 and 1.
	segmentByGender = []string{"male", "female"}
)

// PriceClass buckets a unit price: Premium above 50, Standard above 20,
// Budget otherwise.
func PriceClass(price float64) string {
	return priceClassDict[priceClassID(price)]
}

func priceClassID(price float64) int32 {
	switch {
	case price > 50:
		return 2
	case price > 20:
		return 1
	}
	return 0
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// randInt draws uniformly from [lo, hi].
func randInt(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// buildDicts lays out every dimension dictionary in catalog order.
func buildDicts(cat *catalog.Catalog) [numFields][]string {
	var d [numFields][]string
	for _, y := range cat.Years() {
		d[FieldYear] = append(d[FieldYear], strconv.Itoa(y))
	}
	for _, r := range cat.Regions {
		d[FieldRegion] = append(d[FieldRegion], r.Name)
		for _, c := range r.Countries {
			d[FieldCountry] = append(d[FieldCountry], c.Name)
		}
	}
	d[FieldIncomeType] = incomeDict
	for _, dis := range cat.Diseases {
		d[FieldDisease] = append(d[FieldDisease], dis.Name)
		d[FieldBrand] = append(d[FieldBrand], dis.Brands...)
	}
	d[FieldCompany] = cat.Companies
	d[FieldAgeGroup] = cat.AgeGroups
	d[FieldGender] = cat.Genders
	d[FieldSegment] = cat.Segments
	d[FieldROA] = cat.ROA
	d[FieldFDF] = cat.FDF
	d[FieldProcurement] = cat.Procurement
	d[FieldPublicPrivate] = sectorDict
	d[FieldPriceClass] = priceClassDict

	// segment_by mixes gender tokens, brand names and age groups.
	seen := make(map[string]bool)
	for _, group := range [][]string{segmentByGender, d[FieldBrand], cat.AgeGroups} {
		for _, s := range group {
			if !seen[s] {
				seen[s] = true
				d[FieldSegmentBy] = append(d[FieldSegmentBy], s)
			}
		}
	}
	return d
}

func indexOf(dict []string, s string) int32 {
	for i, v := range dict {
		if v == s {
			return int32(i)
		}
	}
	return -1
}

// Generate enumerates year × region × country × disease × brand × age group ×
// gender and synthesizes the measures of every combination. Each year is
// filled by its own worker with a PRNG stream derived from (seed, year index),
// so the output depends only on the catalog and the seed.
func Generate(ctx context.Context, cat *catalog.Catalog, seed uint64) (*ColumnStore, error) {
	if err := cat.Validate(); err != nil {
		return nil, err
	}

	years := cat.Years()
	perYear := cat.CountryCount() * cat.BrandCount() * len(cat.AgeGroups) * len(cat.Genders)
	total := len(years) * perYear
	if perYear != 0 && total/perYear != len(years) || total > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d years × %d rows", ErrTableTooLarge, len(years), perYear)
	}

	// Allocate Store ONCE
	cs := newColumnStore(buildDicts(cat), total, seed)

	incomeIDs := make(map[string]int32, len(incomeDict))
	for i, s := range incomeDict {
		incomeIDs[s] = int32(i)
	}
	brandSegIDs := make([]int32, len(cs.Dicts[FieldBrand]))
	for i, b := range cs.Dicts[FieldBrand] {
		brandSegIDs[i] = indexOf(cs.Dicts[FieldSegmentBy], b)
	}
	ageSegIDs := make([]int32, len(cat.AgeGroups))
	for i, a := range cat.AgeGroups {
		ageSegIDs[i] = indexOf(cs.Dicts[FieldSegmentBy], a)
	}
	sectorIDs := make([]int32, len(cat.Procurement))
	for i, p := range cat.Procurement {
		sectorIDs[i] = indexOf(sectorDict, cat.Sector(p))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for yi, year := range years {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := rand.New(rand.NewPCG(seed, uint64(yi)))
			growth := year - cat.FirstYear
			prevScale := 1 + float64(growth)*0.05
			incScale := 1 + float64(growth)*0.03

			row := yi * perYear
			countryID, brandID := int32(0), int32(0)
			for ri, region := range cat.Regions {
				for _, country := range region.Countries {
					brandID = 0
					for di, disease := range cat.Diseases {
						for range disease.Brands {
							for ai := range cat.AgeGroups {
								for gi := range cat.Genders {
									cs.IDs[row] = int64(FirstRecordID + row)
									cs.DimIDs[FieldYear][row] = int32(yi)
									cs.DimIDs[FieldRegion][row] = int32(ri)
									cs.DimIDs[FieldCountry][row] = countryID
									cs.DimIDs[FieldIncomeType][row] = incomeIDs[country.Income]
									cs.DimIDs[FieldDisease][row] = int32(di)
									cs.DimIDs[FieldBrand][row] = brandID
									cs.DimIDs[FieldAgeGroup][row] = int32(ai)
									cs.DimIDs[FieldGender][row] = int32(gi)

									fillMeasures(cs, r, row, prevScale, incScale)

									cs.DimIDs[FieldROA][row] = int32(r.IntN(len(cat.ROA)))
									cs.DimIDs[FieldFDF][row] = int32(r.IntN(len(cat.FDF)))
									proc := r.IntN(len(cat.Procurement))
									cs.DimIDs[FieldProcurement][row] = int32(proc)
									cs.DimIDs[FieldPublicPrivate][row] = sectorIDs[proc]
									switch pick := r.IntN(4); pick {
									case 0, 1:
										cs.DimIDs[FieldSegmentBy][row] = int32(pick)
									case 2:
										cs.DimIDs[FieldSegmentBy][row] = brandSegIDs[brandID]
									default:
										cs.DimIDs[FieldSegmentBy][row] = ageSegIDs[ai]
									}
									cs.DimIDs[FieldCompany][row] = int32(r.IntN(len(cat.Companies)))
									cs.DimIDs[FieldSegment][row] = int32(r.IntN(len(cat.Segments)))
									row++
								}
							}
							brandID++
						}
					}
					countryID++
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate dataset: %w", err)
	}
	return cs, nil
}

// fillMeasures draws the primitive measures of one record and derives
// revenue, market value and price class from them.
func fillMeasures(cs *ColumnStore, r *rand.Rand, row int, prevScale, incScale float64) {
	cs.Prevalence[row] = int64(float64(randInt(r, 10000, 500000)) * prevScale)
	cs.Incidence[row] = int64(float64(randInt(r, 20000, 800000)) * incScale)
	vax := uniform(r, 5, 95)
	price := uniform(r, 2, 150)
	elasticity := uniform(r, 5, 50)
	volume := randInt(r, 1000, 2000000)
	revenue := price * float64(volume)
	marketValue := revenue * uniform(r, 0.8, 1.2)

	cs.VaccinationRate[row] = round2(vax)
	cs.Price[row] = round2(price)
	cs.PriceElasticity[row] = round2(elasticity)
	cs.DimIDs[FieldPriceClass][row] = priceClassID(price)
	cs.VolumeUnits[row] = int64(volume)
	cs.Revenue[row] = round2(revenue)
	cs.MarketValue[row] = round2(marketValue)
	cs.MarketShare[row] = round2(uniform(r, 1, 25))
	cs.CAGR[row] = round2(uniform(r, -2, 15))
	cs.YoYGrowth[row] = round2(uniform(r, -5, 20))
	cs.Qty[row] = int64(randInt(r, 100, 100000))
	cs.CoverageRate[row] = round2(math.Min(vax*uniform(r, 0.8, 1.1), 100))
	cs.Efficacy[row] = round2(uniform(r, 60, 98))
}
