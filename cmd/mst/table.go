package main

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/FocuswithJustin/MuseScoreTools/internal/batch"
)

// column is a table header and the alignment of its cells.
type column struct {
	Header string
	Align  text.Align
}

var (
	convertColumns = []column{
		{"File", text.AlignLeft},
		{"Status", text.AlignLeft},
		{"Backup", text.AlignLeft},
		{"Diagnostics", text.AlignRight},
	}
	inspectColumns = []column{
		{"File", text.AlignLeft},
		{"Form", text.AlignLeft},
		{"Measures", text.AlignRight},
		{"VBoxes", text.AlignRight},
		{"Clefs", text.AlignRight},
		{"Line", text.AlignRight},
		{"Section", text.AlignRight},
		{"Titles", text.AlignLeft},
		{"Fingerprint", text.AlignLeft},
	}
)

// fingerprintWidth is the digest prefix shown in the inspect table.
const fingerprintWidth = 12

func convertRows(results []batch.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		rows = append(rows, []string{r.Path, status, r.Backup, strconv.Itoa(len(r.Diagnostics))})
	}
	return rows
}

// inspectRows lists one row per file. A file that failed to load keeps its
// name and form; the error takes the Titles cell.
func inspectRows(results []inspection) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		name := filepath.Base(r.Path)
		if r.Stats == nil {
			rows = append(rows, []string{name, r.Form, "", "", "", "", "", "error: " + r.Error})
			continue
		}
		s := r.Stats
		fp := r.Fingerprint
		if len(fp) > fingerprintWidth {
			fp = fp[:fingerprintWidth]
		}
		rows = append(rows, []string{
			name,
			r.Form,
			strconv.Itoa(s.Measures),
			strconv.Itoa(s.VBoxes),
			strconv.Itoa(s.Clefs),
			strconv.Itoa(s.LineBreaks),
			strconv.Itoa(s.SectionBreaks),
			strings.Join(s.Titles, "; "),
			fp,
		})
	}
	return rows
}

// renderTable draws rows under columns. Headers are printed as written and
// short rows are padded with empty cells.
func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.Header
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       col.Align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
