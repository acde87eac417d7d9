package modules

import (
	"strconv"

	"vaxmarket/internal/catalog"
	"vaxmarket/internal/engine"
	"vaxmarket/internal/models"
)

var (
	filterYear       = Filter{Name: "year", Label: "Year", Field: engine.FieldYear}
	filterDisease    = Filter{Name: "disease", Label: "Disease", Field: engine.FieldDisease}
	filterMarket     = Filter{Name: "market", Label: "Market", Field: engine.FieldDisease}
	filterRegion     = Filter{Name: "region", Label: "Region", Field: engine.FieldRegion}
	filterIncome     = Filter{Name: "income_type", Label: "Income Type", Field: engine.FieldIncomeType}
	filterCountry    = Filter{Name: "country", Label: "Country", Field: engine.FieldCountry}
	filterBrand      = Filter{Name: "brand", Label: "Brand", Field: engine.FieldBrand}
	filterPriceClass = Filter{Name: "price_class", Label: "Price Class", Field: engine.FieldPriceClass}
	filterSegment    = Filter{Name: "segment", Label: "Segment", Field: engine.FieldSegment}
	filterGender     = Filter{Name: "gender", Label: "Gender", Field: engine.FieldGender}
	filterSector     = Filter{Name: "public_private", Label: "Public/Private", Field: engine.FieldPublicPrivate}
	filterAgeGroup   = Filter{Name: "age_group", Label: "Age Group", Field: engine.FieldAgeGroup}
	filterFDF        = Filter{Name: "fdf", Label: "FDF", Field: engine.FieldFDF}
	filterROA        = Filter{Name: "roa", Label: "ROA", Field: engine.FieldROA}
)

var epidemiology = &Plan{
	Slug:    "epidemiology",
	Title:   "Epidemiology Analysis",
	Filters: []Filter{filterYear, filterDisease, filterRegion, filterIncome, filterCountry},
	build: func(c *calc) ([]models.KPI, []models.Chart) {
		prev := c.summary(engine.MeasurePrevalence)
		inc := c.summary(engine.MeasureIncidence)
		kpis := []models.KPI{
			kpi("Total Prevalence", engine.FormatMagnitude(prev.Sum)),
			kpi("Total Incidence", engine.FormatMagnitude(inc.Sum)),
			kpi("Top Disease", c.top(engine.FieldDisease, engine.MeasurePrevalence, engine.AggSum)),
			kpi("Avg Incidence Rate", engine.FormatMagnitude(inc.Mean())),
		}
		charts := []models.Chart{
			chart("prevalence-by-disease", "Prevalence by Disease", kindBar,
				c.group(engine.FieldDisease, engine.AggSum, engine.MeasurePrevalence)),
			chart("incidence-by-region", "Incidence Distribution by Region", kindPie,
				c.group(engine.FieldRegion, engine.AggSum, engine.MeasureIncidence)),
			chart("epidemiology-trend", "Prevalence & Incidence Trend", kindLine,
				c.group(engine.FieldYear, engine.AggSum, engine.MeasurePrevalence, engine.MeasureIncidence)),
		}
		return kpis, charts
	},
}

var vaccinationRate = &Plan{
	Slug:    "vaccination-rate",
	Title:   "Vaccination Rate Analysis",
	Filters: []Filter{filterYear, filterDisease, filterRegion, filterIncome, filterCountry},
	build: func(c *calc) ([]models.KPI, []models.Chart) {
		kpis := []models.KPI{
			kpi("Avg Vaccination Rate", percent1(c.summary(engine.MeasureVaccinationRate).Mean())),
			kpi("Coverage Rate", percent1(c.summary(engine.MeasureCoverageRate).Mean())),
			kpi("Top Performing Region", c.top(engine.FieldRegion, engine.MeasureVaccinationRate, engine.AggMean)),
			kpi("Countries Analyzed", strconv.Itoa(c.distinct(engine.FieldCountry))),
		}
		charts := []models.Chart{
			chart("vaccination-by-region", "Avg Vaccination Rate by Region", kindBar,
				c.group(engine.FieldRegion, engine.AggMean, engine.MeasureVaccinationRate)),
			chart("vaccination-by-disease", "Vaccination Rate by Disease", kindPie,
				c.group(engine.FieldDisease, engine.AggMean, engine.MeasureVaccinationRate)),
			chart("vaccination-trend", "Vaccination Rate Trend", kindLine,
				c.group(engine.FieldYear, engine.AggMean, engine.MeasureVaccinationRate)),
		}
		return kpis, charts
	},
}

var pricing = &Plan{
	Slug:  "pricing",
	Title: "Pricing Analysis",
	Filters: []Filter{
		filterYear, filterMarket, filterRegion, filterIncome, filterCountry, filterBrand, filterPriceClass,
	},
	build: func(c *calc) ([]models.KPI, []models.Chart) {
		price := c.summary(engine.MeasurePrice)
		kpis := []models.KPI{
			kpi("Avg Price (USD)", dollars(price.Mean())),
			kpi("Price Elasticity", strconv.FormatFloat(c.summary(engine.MeasurePriceElasticity).Mean(), 'f', 1, 64)),
			kpi("Most Expensive Brand", c.top(engine.FieldBrand, engine.MeasurePrice, engine.AggMean)),
			kpi("Price Range", dollarRange(price.Min, price.Max)),
		}
		charts := []models.Chart{
			chart("price-by-brand", "Top 10 Brands by Price", kindBar,
				c.group(engine.FieldBrand, engine.AggMean, engine.MeasurePrice).Top(10, 0)),
			c.scatter("price-vs-elasticity", "Price vs Elasticity",
				[]engine.Field{engine.FieldPriceClass, engine.FieldBrand},
				[]engine.Measure{engine.MeasurePrice, engine.MeasurePriceElasticity, engine.MeasureVolumeUnits}),
			chart("price-trend", "Average Price Trend", kindLine,
				c.group(engine.FieldYear, engine.AggMean, engine.MeasurePrice)),
		}
		return kpis, charts
	},
}

var cagr = &Plan{
	Slug:  "cagr",
	Title: "CAGR Analysis",
	Filters: []Filter{
		filterYear, filterMarket, filterRegion, filterIncome, filterCountry, filterSegment, filterGender,
	},
	build: func(c *calc) ([]models.KPI, []models.Chart) {
		growth := c.summary(engine.MeasureCAGR)
		kpis := []models.KPI{
			kpi("Avg CAGR %", percent2(growth.Mean())),
			kpi("Highest Growth Segment", c.top(engine.FieldSegment, engine.MeasureCAGR, engine.AggMean)),
			kpi("Max CAGR", percent2(growth.Max)),
			kpi("Min CAGR", percent2(growth.Min)),
		}
		charts := []models.Chart{
			chart("cagr-by-segment", "CAGR by Segment", kindBar,
				c.group(engine.FieldSegment, engine.AggMean, engine.MeasureCAGR)),
			chart("cagr-by-region", "CAGR Distribution by Region", kindPie,
				c.group(engine.FieldRegion, engine.AggMean, engine.MeasureCAGR)),
			c.scatter("cagr-vs-volume", "CAGR vs Volume",
				[]engine.Field{engine.FieldDisease},
				[]engine.Measure{engine.MeasureVolumeUnits, engine.MeasureCAGR, engine.MeasureMarketValue}),
		}
		return kpis, charts
	},
}

var msaComparison = &Plan{
	Slug:  "msa-comparison",
	Title: "Market Share Analysis Comparison",
	Filters: []Filter{
		filterYear, filterMarket, filterRegion, filterIncome, filterCountry, filterSegment, filterGender,
	},
	build: func(c *calc) ([]models.KPI, []models.Chart) {
		kpis := []models.KPI{
			kpi("Total Value (USD)", engine.FormatMagnitude(c.summary(engine.MeasureMarketValue).Sum)),
			kpi("Total Volume", engine.FormatMagnitude(c.summary(engine.MeasureVolumeUnits).Sum)),
			kpi("Market Share %", percent1(c.summary(engine.MeasureMarketShare).Mean())),
			kpi("YoY Growth %", percent1(c.summary(engine.MeasureYoYGrowth).Mean())),
		}
		charts := []models.Chart{
			chart("value-by-market", "Top Markets by Value", kindBar,
				c.group(engine.FieldDisease, engine.AggSum, engine.MeasureMarketValue).Top(10, 0)),
			chart("share-by-brand", "Market Share by Brand", kindPie,
				c.group(engine.FieldBrand, engine.AggMean, engine.MeasureMarketShare).Top(8, 0)),
			chart("yoy-trend", "YoY Growth Trend", kindLine,
				c.group(engine.FieldYear, engine.AggMean, engine.MeasureYoYGrowth)),
		}
		return kpis, charts
	},
}

var procurement = &Plan{
	Slug:  "procurement",
	Title: "Procurement Analysis",
	Filters: []Filter{
		filterYear, filterMarket, filterRegion, filterIncome, filterCountry, filterSector, filterBrand,
	},
	build: func(c *calc) ([]models.KPI, []models.Chart) {
		kpis := []models.KPI{
			kpi("Total Qty Procured", engine.FormatMagnitude(c.summary(engine.MeasureQty).Sum)),
			kpi("Public %", percent1(c.percentage(engine.FieldPublicPrivate, catalog.Public))),
			kpi("Private %", percent1(c.percentage(engine.FieldPublicPrivate, catalog.Private))),
			kpi("Top Procurement Type", c.top(engine.FieldProcurement, engine.MeasureQty, engine.AggSum)),
		}
		charts := []models.Chart{
			chart("qty-by-procurement", "Quantity by Procurement Type", kindBar,
				c.group(engine.FieldProcurement, engine.AggSum, engine.MeasureQty)),
			chart("qty-by-sector", "Public vs Private Procurement", kindPie,
				c.group(engine.FieldPublicPrivate, engine.AggSum, engine.MeasureQty)),
			chart("procurement-trend", "Procurement Trend", kindLine,
				c.group2(engine.FieldYear, engine.FieldPublicPrivate, engine.AggSum, engine.MeasureQty)),
		}
		return kpis, charts
	},
}

var brandDemographic = &Plan{
	Slug:  "brand-demographic",
	Title: "Brand-Demographic Analysis",
	Filters: []Filter{
		filterYear, filterMarket, filterRegion, filterIncome, filterCountry, filterAgeGroup, filterGender, filterBrand,
	},
	build: func(c *calc) ([]models.KPI, []models.Chart) {
		byBrand := c.group(engine.FieldBrand, engine.AggSum, engine.MeasureRevenue)
		kpis := []models.KPI{
			kpi("Total Revenue (USD)", engine.FormatMagnitude(c.summary(engine.MeasureRevenue).Sum)),
			kpi("Top Brand", c.top(engine.FieldBrand, engine.MeasureRevenue, engine.AggSum)),
			kpi("Top Age Group", c.top(engine.FieldAgeGroup, engine.MeasureRevenue, engine.AggSum)),
			kpi("Avg Revenue/Brand", engine.FormatMagnitude(meanOfGroups(byBrand))),
		}
		topBrands := byBrand.Top(10, 0).Column(0)
		charts := []models.Chart{
			chart("revenue-by-age-group", "Revenue by Age Group", kindBar,
				c.group(engine.FieldAgeGroup, engine.AggSum, engine.MeasureRevenue)),
			chart("revenue-by-gender", "Revenue Distribution by Gender", kindPie,
				c.group(engine.FieldGender, engine.AggSum, engine.MeasureRevenue)),
			chart("brand-by-age-group", "Top 10 Brands by Age Group", kindStackedBar,
				c.group2(engine.FieldBrand, engine.FieldAgeGroup, engine.AggSum, engine.MeasureRevenue).KeepKeys(0, topBrands)),
		}
		return kpis, charts
	},
}

var formulation = &Plan{
	Slug:  "fdf",
	Title: "FDF (Formulation) Analysis",
	Filters: []Filter{
		filterYear, filterMarket, filterRegion, filterIncome, filterCountry, filterBrand, filterFDF, filterROA,
	},
	build: func(c *calc) ([]models.KPI, []models.Chart) {
		byFDF := c.group(engine.FieldFDF, engine.AggSum, engine.MeasureRevenue)
		kpis := []models.KPI{
			kpi("Total Revenue (USD)", engine.FormatMagnitude(c.summary(engine.MeasureRevenue).Sum)),
			kpi("Top FDF Type", c.top(engine.FieldFDF, engine.MeasureRevenue, engine.AggSum)),
			kpi("Top ROA", c.top(engine.FieldROA, engine.MeasureRevenue, engine.AggSum)),
			kpi("Avg Revenue/FDF", engine.FormatMagnitude(meanOfGroups(byFDF))),
		}
		charts := []models.Chart{
			chart("revenue-by-fdf", "Revenue by Formulation", kindBar, byFDF),
			chart("revenue-by-roa", "Revenue Distribution by ROA", kindPie,
				c.group(engine.FieldROA, engine.AggSum, engine.MeasureRevenue)),
			chart("fdf-roa-matrix", "Revenue Matrix: FDF vs ROA", kindGroupedBar,
				c.group2(engine.FieldFDF, engine.FieldROA, engine.AggSum, engine.MeasureRevenue)),
		}
		return kpis, charts
	},
}
