package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rbright/neuroscan/internal/backend"
	"github.com/rbright/neuroscan/internal/screening"
)

// resultColumn indexes the classification label within a row.
const resultColumn = 5

var resultColumns = []string{"Test #", "Patient Name", "Age", "Contact", "Test Type", "Result", "Confidence", "Date"}

// Results renders backend records as an aligned table.
func Results(records []backend.Record) string {
	if len(records) == 0 {
		return dimStyle.Render("No records found.") + "\n"
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, resultRow(r))
	}

	widths := make([]int, len(resultColumns))
	for i, col := range resultColumns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len([]rune(cell)))
		}
	}

	var b strings.Builder
	b.WriteString(formatRow(resultColumns, widths, func(_ int, s string) string { return headerStyle.Render(s) }))
	for i, row := range rows {
		positive := screening.IsPositive(modalityForType(records[i].Type), records[i].Result)
		b.WriteString(formatRow(row, widths, func(col int, s string) string {
			if col != resultColumn {
				return s
			}
			if positive {
				return positiveStyle.Render(s)
			}
			return negativeStyle.Render(s)
		}))
	}
	return b.String()
}

func formatRow(cells []string, widths []int, style func(int, string) string) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = padRight(style(i, cell), widths[i])
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ") + "\n"
}

func resultRow(r backend.Record) []string {
	name := strings.TrimSpace(r.PatientName)
	if name == "" {
		name = "Anonymous"
	}
	age := "N/A"
	if r.PatientAge != nil && *r.PatientAge > 0 {
		age = strconv.Itoa(*r.PatientAge)
	}
	contact := strings.TrimSpace(r.PatientContact)
	if contact == "" {
		contact = "N/A"
	}
	kind := "Spiral"
	if r.Type == screening.ModalityVoice.ResultType() {
		kind = "Voice"
	}

	return []string{
		"#" + strconv.FormatInt(r.ID, 10),
		name,
		age,
		contact,
		kind,
		r.Result,
		fmt.Sprintf("%.1f%%", r.Confidence*100),
		formatTimestamp(r.Timestamp),
	}
}

func modalityForType(tag string) screening.Modality {
	m, err := screening.ParseModality(tag)
	if err != nil {
		return screening.ModalityHandwriting
	}
	return m
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

func formatTimestamp(raw string) string {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02 15:04")
		}
	}
	return raw
}
