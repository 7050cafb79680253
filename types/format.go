package types

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
)

// RecordRow is one line of a rendered record snapshot, used both in LLM
// prompts and in the CLI confirmation table.
type RecordRow struct {
	Field      string
	Value      string
	Status     FieldStatus
	Confidence float64
}

func FormatRecordTable(rows []RecordRow) string {
	if len(rows) == 0 {
		return ""
	}
	var buf strings.Builder
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value", "Status", "Confidence")
	for _, row := range rows {
		value := row.Value
		if value == "" {
			value = "-"
		}
		_ = table.Append(row.Field, value, string(row.Status), fmt.Sprintf("%.2f", row.Confidence))
	}
	_ = table.Render()
	return buf.String()
}

func FormatMissingFields(fields []FieldInfo) string {
	if len(fields) == 0 {
		return ""
	}
	var buf strings.Builder
	buf.WriteString("# Missing fields:\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Tier", "Description")
	for _, field := range fields {
		_ = table.Append(field.DisplayName, field.Tier, field.Description)
	}
	_ = table.Render()
	return buf.String()
}
