package models

// ModuleResult is the render-ready output of one analysis module.
type ModuleResult struct {
	Module  string  `json:"module"`
	Title   string  `json:"title"`
	Records int     `json:"records"`
	KPIs    []KPI   `json:"kpis"`
	Charts  []Chart `json:"charts"`
}

type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Chart is a grouped table ready for a plotting layer.
type Chart struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Kind         string     `json:"kind"` // "bar", "pie", "line", "scatter", "stacked_bar", "grouped_bar"
	KeyColumns   []string   `json:"key_columns"`
	ValueColumns []string   `json:"value_columns"`
	Rows         []ChartRow `json:"rows"`
}

type ChartRow struct {
	Keys   []string  `json:"keys"`
	Values []float64 `json:"values"`
}

// ModuleInfo describes a module and the filters it accepts.
type ModuleInfo struct {
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Filters []string `json:"filters"`
}

// FilterOption lists the selectable values of one filter field.
type FilterOption struct {
	Field  string   `json:"field"`
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

type DatasetInfo struct {
	Records        int            `json:"records"`
	RecordsDisplay string         `json:"records_display"`
	Seed           uint64         `json:"seed"`
	Dimensions     map[string]int `json:"dimensions"`
}

// RecordRow is one generated record in flat form.
type RecordRow struct {
	ID         int64              `json:"record_id"`
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

type RecordPage struct {
	Data   []RecordRow `json:"data"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
