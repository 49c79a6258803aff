package main

import (
	"fmt"
	"io"
	"strconv"

	"equalmedia/internal/document"
)

func printSummary(w io.Writer, what string, summary *document.InsertSummary) {
	if summary == nil {
		return
	}
	fmt.Fprintf(w, "Inserted %d/%d %s\n", summary.Inserted, summary.Requested, what)
	if len(summary.Failures) == 0 {
		return
	}
	rows := make([][]string, 0, len(summary.Failures))
	for _, f := range summary.Failures {
		rows = append(rows, []string{strconv.Itoa(f.Index), f.Element, f.Message})
	}
	fmt.Fprint(w, renderTable([]string{"#", "Element", "Error"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
}

func elementRows(elements []document.Element) [][]string {
	rows := make([][]string, 0, len(elements))
	for _, el := range elements {
		fill := ""
		if el.Fill != nil {
			fill = fmt.Sprintf("%.2f,%.2f,%.2f", el.Fill.Red, el.Fill.Green, el.Fill.Blue)
		}
		size := ""
		if el.Kind == document.KindRectangle {
			size = fmt.Sprintf("%gx%g", el.Width, el.Height)
		}
		rows = append(rows, []string{
			shortID(el.ID),
			string(el.Kind),
			fmt.Sprintf("%g,%g", el.X, el.Y),
			size,
			fill,
			el.Text,
		})
	}
	return rows
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
