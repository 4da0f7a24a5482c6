package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteTable writes the category table to path, as a workbook when the path
// ends in .xlsx and as CSV otherwise.
func WriteTable(path string, rows []TableRow) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteTableXLSX(path, rows)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	defer f.Close()
	if err := WriteTableCSV(f, rows); err != nil {
		return err
	}
	return f.Close()
}

func WriteTableCSV(w io.Writer, rows []TableRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TableHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Category,
			strconv.Itoa(r.AgreePct),
			strconv.Itoa(r.DisagreePct),
			strconv.Itoa(r.UnansweredPct),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const tableSheet = "Categories"

func WriteTableXLSX(path string, rows []TableRow) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), tableSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(TableHeader))
	for i, h := range TableHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(tableSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		vals := []interface{}{r.Category, r.AgreePct, r.DisagreePct, r.UnansweredPct}
		if err := f.SetSheetRow(tableSheet, cellRef, &vals); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteChart writes the chart spec as indented JSON.
func WriteChart(path string, spec ChartSpec) error {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chart: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

var htmlTmpl = template.Must(template.New("sunburst").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
</head>
<body style="margin:0">
<div id="chart" style="width:100vw;height:100vh"></div>
<script>
var spec = {{.Spec}};
var trace = {
  type: "sunburst",
  labels: spec.labels,
  parents: spec.parents,
  marker: {colors: spec.colors, line: {color: "white", width: 0.5}}
};
if (spec.ids) { trace.ids = spec.ids; }
Plotly.newPlot("chart", [trace], {margin: {t: 0, l: 0, r: 0, b: 0}});
</script>
</body>
</html>
`))

// RenderHTML writes a standalone page that draws the sunburst with plotly.js.
func RenderHTML(w io.Writer, title string, spec ChartSpec) error {
	return htmlTmpl.Execute(w, struct {
		Title string
		Spec  ChartSpec
	}{title, spec})
}

func WriteHTML(path, title string, spec ChartSpec) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html: %w", err)
	}
	defer f.Close()
	if err := RenderHTML(f, title, spec); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return f.Close()
}
