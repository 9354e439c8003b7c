// Package report renders records as plain text tables.
package report

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"fintrack/internal/core"
)

const dateLayout = "2006-01-02 15:04"

// Records writes items as a table with a total row.
func Records(w io.Writer, kind core.Kind, items []core.Record) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Description", "Amount", categoryHeader(kind), "Date"})
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
	})
	table.SetAutoWrapText(false)

	var total float64
	for _, r := range items {
		total += r.Amount
		table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			r.Description,
			core.FormatAmount(r.Amount),
			r.Category,
			r.DateCreated.UTC().Format(dateLayout),
		})
	}

	table.SetFooter([]string{"", strconv.Itoa(len(items)) + " " + kind.Plural(), core.FormatAmount(total), "", ""})
	table.Render()
}

func categoryHeader(kind core.Kind) string {
	if kind == core.KindIncome {
		return "Source"
	}
	return "Category"
}
