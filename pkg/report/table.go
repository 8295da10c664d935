package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Sumatoshi-tech/codetally/pkg/tally"
)

const percentScale = 100

// TableOptions tune RenderTable.
type TableOptions struct {
	// Top limits the rows printed per kind. Zero prints every entry.
	Top int
}

var (
	headingColor = color.New(color.Bold, color.FgCyan)
	labelColor   = color.New(color.FgYellow)
)

// RenderTable writes r as human-readable tables: run statistics, the declared
// selections when present, then one table per kind for the codebase rollup,
// the key-files rollup and each facet. A detailed report ends with one row
// per resource holding the top value of each kind.
func RenderTable(w io.Writer, r *Report, opts TableOptions) error {
	if r == nil || r.Attributes == nil {
		return ErrNoAttributes
	}

	var sb strings.Builder

	headingColor.Fprintf(&sb, "%s %s\n", r.Tool.Name, r.Tool.Version)
	fmt.Fprintf(&sb, "%s files, %s directories, %s packages in %s ms\n\n",
		humanize.Comma(int64(r.Stats.Files)),
		humanize.Comma(int64(r.Stats.Directories)),
		humanize.Comma(int64(r.Stats.Packages)),
		humanize.Comma(r.Stats.DurationMS),
	)

	attrs := r.Attributes

	if attrs.Declared != nil {
		writeDeclared(&sb, attrs.Declared)
	}

	writeSection(&sb, "Codebase", attrs.Tallies, opts)

	if attrs.KeyFiles != nil {
		writeSection(&sb, "Key files", attrs.KeyFiles, opts)
	}

	for _, ft := range attrs.ByFacet {
		writeSection(&sb, "Facet "+ft.Facet, ft.Tallies, opts)
	}

	if len(r.Resources) > 0 {
		headingColor.Fprintln(&sb, "Resources")
		sb.WriteString(resourcesTable(r.Resources))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("report: write table: %w", err)
	}

	return nil
}

func writeDeclared(sb *strings.Builder, d *tally.Declared) {
	headingColor.Fprintln(sb, "Declared")

	labelColor.Fprint(sb, "  license:  ")
	fmt.Fprintln(sb, d.LicenseExpression.String())

	labelColor.Fprint(sb, "  holders:  ")
	fmt.Fprintln(sb, joinValues(d.Holders))

	labelColor.Fprint(sb, "  language: ")

	if d.PrimaryLanguage != nil {
		fmt.Fprintln(sb, d.PrimaryLanguage.Value.String())
	} else {
		fmt.Fprintln(sb, tally.Null.String())
	}

	sb.WriteString("\n")
}

func writeSection(sb *strings.Builder, title string, tallies tally.Tallies, opts TableOptions) {
	headingColor.Fprintln(sb, title)

	for _, k := range tallies.Kinds() {
		entries := tallies[k]
		if len(entries) == 0 {
			continue
		}

		sb.WriteString(kindTable(k, entries, opts.Top))
		sb.WriteString("\n\n")
	}
}

func kindTable(k tally.Kind, entries []tally.Entry, top int) string {
	total := tally.Total(entries)

	shown := entries
	if top > 0 && len(shown) > top {
		shown = shown[:top]
	}

	tbl := table.NewWriter()
	tbl.SetTitle(string(k))
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"#", "value", "count", "share"})

	for i, e := range shown {
		share := float64(e.Count) * percentScale / float64(max(total, 1))
		tbl.AppendRow(table.Row{i + 1, e.Value.String(), humanize.Comma(int64(e.Count)), fmt.Sprintf("%.1f%%", share)})
	}

	footer := fmt.Sprintf("%s values", humanize.Comma(int64(total)))
	if hidden := len(entries) - len(shown); hidden > 0 {
		footer = fmt.Sprintf("%s, %d more entries", footer, hidden)
	}

	tbl.AppendFooter(table.Row{"", footer})

	return tbl.Render()
}

func resourcesTable(resources []tally.ResourceTallies) string {
	kinds := resources[0].Tallies.Kinds()

	header := table.Row{"path", "type"}
	for _, k := range kinds {
		header = append(header, string(k))
	}

	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.AppendHeader(header)

	for _, rt := range resources {
		row := table.Row{rt.Path, rt.Type}

		for _, k := range kinds {
			entries := rt.Tallies[k]
			if len(entries) == 0 {
				row = append(row, "")

				continue
			}

			row = append(row, fmt.Sprintf("%s (%s)", entries[0].Value, humanize.Comma(int64(entries[0].Count))))
		}

		tbl.AppendRow(row)
	}

	return tbl.Render()
}

func joinValues(entries []tally.Entry) string {
	if len(entries) == 0 {
		return tally.Null.String()
	}

	values := make([]string, len(entries))
	for i, e := range entries {
		values[i] = e.Value.String()
	}

	return strings.Join(values, ", ")
}
