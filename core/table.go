package core

import (
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// PrintTable writes rows to stdout in aligned columns.
func PrintTable(table [][]string) {
	FprintTable(os.Stdout, table)
}

func FprintTable(out io.Writer, table [][]string) {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	for _, row := range table {
		io.WriteString(w, strings.Join(row, "\t")+"\n")
	}
	w.Flush()
}
