package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dbsmedya/goapriori/internal/runner"
)

// CategoryRow lists the distinct values of one category.
type CategoryRow struct {
	Category string   `json:"category"`
	Values   []string `json:"values"`
}

// Inspection is the presentation form of runner.Inspection.
type Inspection struct {
	Job          string        `json:"job"`
	Table        string        `json:"table"`
	TotalRows    int64         `json:"total_rows"`
	MinSupport   float64       `json:"min_support"`
	SupportCount int64         `json:"support_count"`
	MinConf      float64       `json:"min_confidence"`
	Categories   []CategoryRow `json:"categories"`
}

// BuildInspection converts an inspection, keeping the configured category order.
func BuildInspection(insp *runner.Inspection) *Inspection {
	out := &Inspection{
		Job:          insp.JobName,
		Table:        insp.Table,
		TotalRows:    insp.TotalRows,
		MinSupport:   insp.Mining.Support,
		SupportCount: insp.SupportCount,
		MinConf:      insp.Mining.Confidence,
	}
	for _, cat := range insp.Index.Categories() {
		row := CategoryRow{Category: string(cat)}
		for _, v := range insp.Index.Values(cat) {
			row.Values = append(row.Values, string(v))
		}
		out.Categories = append(out.Categories, row)
	}
	return out
}

// WriteInspection renders an inspection in the requested format.
func WriteInspection(w io.Writer, insp *Inspection, opts Options) error {
	switch opts.Format {
	case FormatTable, "":
	case FormatJSON:
		return writeJSON(w, insp)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}

	var sb strings.Builder
	sb.WriteString(title(fmt.Sprintf("==Dataset %s (job %s)", insp.Table, insp.Job), opts.Color))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "  Total rows:     %d\n", insp.TotalRows)
	fmt.Fprintf(&sb, "  Min support:    %s (%d rows)\n", percent(insp.MinSupport), insp.SupportCount)
	fmt.Fprintf(&sb, "  Min confidence: %s\n\n", percent(insp.MinConf))

	g := newGrid(
		column{header: "Category"},
		column{header: "Distinct", right: true},
		column{header: "Values"},
	)
	for _, row := range insp.Categories {
		g.add(row.Category, fmt.Sprintf("%d", len(row.Values)), strings.Join(row.Values, ","))
	}
	g.render(&sb, opts.Color)

	_, err := io.WriteString(w, sb.String())
	return err
}
