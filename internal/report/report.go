// Package report renders a screening result as a single HTML page with one
// Plotly chart per scored symbol.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"StockRanker/internal/model"
	"StockRanker/internal/screener"
)

const plotlyCDN = "https://cdn.plot.ly/plotly-2.35.2.min.js"

type trace struct {
	X      []string   `json:"x"`
	Y      []*float64 `json:"y"`
	Mode   string     `json:"mode"`
	Name   string     `json:"name"`
	Type   string     `json:"type"`
	Marker *marker    `json:"marker,omitempty"`
}

type marker struct {
	Size int `json:"size"`
}

type section struct {
	ID       string
	Symbol   string
	Title    string
	Total    float64
	Failed   string
	NoSignal bool
	Traces   template.JS
}

type page struct {
	Title       string
	PlotlyURL   string
	Sections    []section
	Unavailable []string
}

var pageTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.PlotlyURL}}"></script>
<style>
body { font-family: sans-serif; margin: 2em; }
.note { color: #a94442; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{- if .Unavailable}}
<p class="note">No data: {{range $i, $s := .Unavailable}}{{if $i}}, {{end}}{{$s}}{{end}}</p>
{{- end}}
{{- range .Sections}}
<section>
<h2>{{.Title}}</h2>
<p>Score: {{printf "%.4f" .Total}}</p>
{{- if .NoSignal}}
<p class="note">No signal: every indicator failed for {{.Symbol}}.</p>
{{- else if .Failed}}
<p class="note">Failed indicators: {{.Failed}}</p>
{{- end}}
<div id="{{.ID}}" style="width:100%;height:500px;"></div>
<script>
Plotly.newPlot({{.ID}}, {{.Traces}}, {title: {{.Title}}, xaxis: {title: "Date"}, yaxis: {title: "Value"}});
</script>
</section>
{{- end}}
</body>
</html>
`))

// WriteHTML writes one aggregate page for res. Sections follow the input
// order of the scored symbols.
func WriteHTML(w io.Writer, res *screener.Result) error {
	p := page{
		Title:     fmt.Sprintf("Technical Indicators (%s)", res.StartedAt.Format("2006-01-02")),
		PlotlyURL: plotlyCDN,
	}
	for _, u := range res.Unavailable {
		p.Unavailable = append(p.Unavailable, u.Symbol)
	}

	for i, sc := range res.Scores {
		sec, err := buildSection(i, sc)
		if err != nil {
			return err
		}
		p.Sections = append(p.Sections, sec)
	}
	return pageTmpl.Execute(w, p)
}

// WriteHTMLFile writes the page to path, creating parent directories.
func WriteHTMLFile(path string, res *screener.Result) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := WriteHTML(f, res); err != nil {
		f.Close()
		return fmt.Errorf("render report: %w", err)
	}
	return f.Close()
}

func buildSection(i int, sc model.SymbolScore) (section, error) {
	sec := section{
		ID:       fmt.Sprintf("chart-%d", i),
		Symbol:   sc.Symbol,
		Title:    "Technical Indicators for " + sc.Symbol,
		Total:    sc.Total,
		NoSignal: !sc.HasSignal(),
	}
	failed := sc.Failed()
	names := make([]string, len(failed))
	for j, ind := range failed {
		names[j] = string(ind)
	}
	sec.Failed = strings.Join(names, ", ")

	traces := make([]trace, 0, 6)
	var dates []string
	if sc.Indicators != nil {
		dates = make([]string, len(sc.Indicators.Dates))
		for j, d := range sc.Indicators.Dates {
			dates[j] = d.Format("2006-01-02")
		}
	}
	for _, l := range sc.Indicators.Lines() {
		tr := trace{X: dates, Y: nullable(l.Values), Mode: "lines", Name: l.Name, Type: "scatter"}
		if l.Markers {
			tr.Mode = "markers"
			tr.Marker = &marker{Size: 4}
		}
		traces = append(traces, tr)
	}

	raw, err := json.Marshal(traces)
	if err != nil {
		return section{}, fmt.Errorf("encode traces for %s: %w", sc.Symbol, err)
	}
	sec.Traces = template.JS(raw)
	return sec, nil
}

// nullable maps NaN and ±Inf to nil so they encode as JSON null.
func nullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			continue
		}
		v := values[i]
		out[i] = &v
	}
	return out
}
