package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/vesselquery/server/internal/agent/model"
)

// renderResult prints one run result to stdout. Tables are rendered as
// aligned columns; map and summary formats fall back to their natural
// representations.
func renderResult(res *model.RunResult, verbose bool) {
	if !res.Success {
		fmt.Printf("%s %s\n", color.New(color.FgRed).Sprint("error:"), res.Error)
		if verbose {
			renderTrace(res.Trace)
		}
		return
	}

	if res.Result == nil {
		fmt.Println(color.New(color.FgYellow).Sprint("No result"))
		return
	}

	r := res.Result
	switch r.Format {
	case model.FormatTable:
		renderTable(r)
	case model.FormatMap:
		renderJSON(r.Data)
	case model.FormatSummary:
		fmt.Println(r.Message)
	default:
		renderJSON(r.Data)
	}

	fmt.Printf("%s %s (%d vessel(s))\n",
		color.New(color.FgGreen).Sprint("✓"), r.Message, res.VesselCount)

	if verbose {
		renderTrace(res.Trace)
	}
}

func renderTable(r *model.Response) {
	rows, ok := r.Data.([]map[string]any)
	if !ok || len(rows) == 0 {
		if r.Count == 0 {
			fmt.Println(color.New(color.FgYellow).Sprint(r.Message))
		}
		return
	}

	widths := make([]int, len(r.Columns))
	cells := make([][]string, 0, len(rows))
	for i, col := range r.Columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		line := make([]string, len(r.Columns))
		for i, col := range r.Columns {
			line[i] = cellString(row[col])
			if len(line[i]) > widths[i] {
				widths[i] = len(line[i])
			}
		}
		cells = append(cells, line)
	}

	header := make([]string, len(r.Columns))
	for i, col := range r.Columns {
		header[i] = fmt.Sprintf("%-*s", widths[i], col)
	}
	fmt.Println(color.New(color.Bold).Sprint(strings.Join(header, "  ")))

	for _, line := range cells {
		for i := range line {
			line[i] = fmt.Sprintf("%-*s", widths[i], line[i])
		}
		fmt.Println(strings.Join(line, "  "))
	}
}

func cellString(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.4f", vv)
	case string:
		return vv
	default:
		return fmt.Sprint(vv)
	}
}

func renderJSON(data any) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", data)
		return
	}
	fmt.Println(string(b))
}

func renderTrace(trace []string) {
	dim := color.New(color.Faint)
	fmt.Println(dim.Sprint("── execution log ──"))
	for _, entry := range trace {
		fmt.Println(dim.Sprintf("  %s", entry))
	}
}
