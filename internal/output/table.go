package output

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/tkjaer/rtlookup/pkg/lpm"
)

// RenderTable writes the route table in insertion order.
func RenderTable(w io.Writer, entries []lpm.RouteEntry) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetBorder(true)
	table.SetHeader([]string{"#", "Network", "Prefix", "Interface"})

	for i, e := range entries {
		table.Append([]string{
			strconv.Itoa(i + 1),
			lpm.Uint32ToAddr(e.Network).String(),
			"/" + strconv.Itoa(e.PrefixLen),
			strconv.Itoa(e.Interface),
		})
	}
	table.Render()
}
