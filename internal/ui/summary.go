package ui

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type SummaryRow struct {
	Index    int
	Title    string
	Chapters int
	Skipped  int
	Result   string
}

// RenderSummary draws the end-of-run table, one row per attempted volume.
func RenderSummary(rows []SummaryRow) string {
	if len(rows) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Volumen", "Capítulos", "Omitidos", "Resultado"})

	for _, r := range rows {
		tw.AppendRow(table.Row{
			strconv.Itoa(r.Index),
			r.Title,
			strconv.Itoa(r.Chapters),
			strconv.Itoa(r.Skipped),
			r.Result,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
