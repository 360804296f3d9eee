package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/tristendillon/routefix/core/models"
)

const (
	FoundHeader = "Found improper imports of API route files:"
	NoneFound   = "No improper imports of API route files found."
)

// Text writes the scan result one match per block:
//
//	File: <file>
//	Imports: <import>
func Text(w io.Writer, rs *models.ResultSet) error {
	if rs.Empty() {
		_, err := fmt.Fprintln(w, NoneFound)
		return err
	}

	var sb strings.Builder
	sb.WriteString(FoundHeader + "\n")
	for _, r := range rs.Records {
		fmt.Fprintf(&sb, "  File: %s\n  Imports: %s\n\n", r.File, r.Import)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func Table(w io.Writer, rs *models.ResultSet) error {
	if rs.Empty() {
		_, err := fmt.Fprintln(w, NoneFound)
		return err
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	style := table.StyleLight
	style.Title.Format = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tbl.SetStyle(style)
	tbl.SetTitle(FoundHeader)
	tbl.AppendHeader(table.Row{"#", "File", "Imports"})
	for i, r := range rs.Records {
		tbl.AppendRow(table.Row{i + 1, r.File, r.Import})
	}
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d imports in %d files", rs.Len(), len(rs.Files())), ""})
	tbl.Render()
	return nil
}

// Summary describes how much was scanned, e.g.
// "scanned 1,204 files (3.4 MB), 2 imports, 0 unreadable".
func Summary(rs *models.ResultSet) string {
	return fmt.Sprintf("scanned %s files (%s), %s imports, %d unreadable",
		humanize.Comma(int64(rs.FilesScanned)),
		humanize.Bytes(uint64(rs.BytesRead)),
		humanize.Comma(int64(rs.Len())),
		len(rs.Errors),
	)
}

// FixLine is the line printed for each route file fix handles.
func FixLine(r models.FixResult) string {
	switch r.Action {
	case models.Added:
		return fmt.Sprintf("Added dynamic export to %s", r.Path)
	case models.Normalized:
		return fmt.Sprintf("Normalized dynamic export in %s", r.Path)
	default:
		return fmt.Sprintf("Dynamic export already present in %s", r.Path)
	}
}

func NoRouteFiles(root string) string {
	return fmt.Sprintf("No route.ts or route.js files found under %s.", root)
}
