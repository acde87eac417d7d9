package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"vaxmarket/internal/models"
)

const (
	kpiSheet     = "KPIs"
	maxSheetName = 31
)

// WriteWorkbook renders a module result as an xlsx workbook: one KPI sheet
// followed by one sheet per chart, keyed by chart id. Ids longer than the
// sheet name limit are truncated, with a ~N suffix when two collide.
func WriteWorkbook(w io.Writer, res *models.ModuleResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", kpiSheet); err != nil {
		return err
	}
	if err := setRow(f, kpiSheet, 1, []interface{}{res.Title, fmt.Sprintf("%d records", res.Records)}); err != nil {
		return err
	}
	if err := setRow(f, kpiSheet, 2, []interface{}{"KPI", "Value"}); err != nil {
		return err
	}
	for i, k := range res.KPIs {
		if err := setRow(f, kpiSheet, i+3, []interface{}{k.Label, k.Value}); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(kpiSheet, "A", "B", 28); err != nil {
		return err
	}

	used := map[string]bool{strings.ToLower(kpiSheet): true}
	for _, ch := range res.Charts {
		if err := writeChart(f, sheetName(ch.ID, used), ch); err != nil {
			return fmt.Errorf("chart %s: %w", ch.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sheetName truncates id to the sheet name limit and suffixes it until it is
// unique within used. Sheet names compare case-insensitively.
func sheetName(id string, used map[string]bool) string {
	name := truncate(id, maxSheetName)
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := "~" + strconv.Itoa(n)
		name = truncate(id, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func writeChart(f *excelize.File, sheet string, ch models.Chart) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := make([]interface{}, 0, len(ch.KeyColumns)+len(ch.ValueColumns))
	for _, c := range ch.KeyColumns {
		headers = append(headers, c)
	}
	for _, c := range ch.ValueColumns {
		headers = append(headers, c)
	}
	if err := setRow(f, sheet, 1, headers); err != nil {
		return err
	}

	for i, r := range ch.Rows {
		cells := make([]interface{}, 0, len(r.Keys)+len(r.Values))
		for _, k := range r.Keys {
			cells = append(cells, k)
		}
		for _, v := range r.Values {
			cells = append(cells, v)
		}
		if err := setRow(f, sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &cells)
}
