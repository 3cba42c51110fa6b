// Package report renders mining results for people and for other programs.
//
// Text output mirrors the classic two-table layout: frequent itemsets sorted
// by count, then association rules sorted by confidence, every value shown as
// "category = value". JSON output carries the same rows plus run metadata.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dbsmedya/goapriori/internal/runner"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Options controls rendering.
type Options struct {
	Format string
	Color  bool
}

// ItemsetRow is one frequent itemset.
type ItemsetRow struct {
	Items   []string `json:"items"`
	Count   int64    `json:"count"`
	Support float64  `json:"support"`
}

// RuleRow is one association rule.
type RuleRow struct {
	LHS        []string `json:"lhs"`
	RHS        string   `json:"rhs"`
	Count      int64    `json:"count"`
	LHSCount   int64    `json:"lhs_count"`
	Confidence float64  `json:"confidence"`
	Support    float64  `json:"support"`
}

// Report is the presentation form of a run, already sorted.
type Report struct {
	RunID        string        `json:"run_id"`
	Job          string        `json:"job"`
	Table        string        `json:"table"`
	TotalRows    int64         `json:"total_rows"`
	MinSupport   float64       `json:"min_support"`
	SupportCount int64         `json:"support_count"`
	MinConf      float64       `json:"min_confidence"`
	Duration     time.Duration `json:"duration_ns"`
	Itemsets     []ItemsetRow  `json:"itemsets"`
	Rules        []RuleRow     `json:"rules"`
}

// Build converts a run result. Itemsets are ordered by count descending and
// rules by confidence, then support, descending. Remaining ties fall back to
// the rendered text so output is stable across runs.
func Build(res *runner.Result) *Report {
	rep := &Report{
		RunID:        res.RunID,
		Job:          res.JobName,
		Table:        res.Table,
		TotalRows:    res.Itemsets.TotalRows,
		MinSupport:   res.Mining.Support,
		SupportCount: res.Itemsets.Support,
		MinConf:      res.Mining.Confidence,
		Duration:     res.Duration,
		Itemsets:     make([]ItemsetRow, 0, res.Itemsets.Len()),
		Rules:        make([]RuleRow, 0, len(res.Rules)),
	}

	for _, fs := range res.Itemsets.All() {
		rep.Itemsets = append(rep.Itemsets, ItemsetRow{
			Items:   res.Index.DescribeSet(fs.Items),
			Count:   fs.Count,
			Support: res.Itemsets.SupportFraction(fs.Count),
		})
	}
	sort.SliceStable(rep.Itemsets, func(i, j int) bool {
		a, b := rep.Itemsets[i], rep.Itemsets[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return joinItems(a.Items) < joinItems(b.Items)
	})

	for _, r := range res.Rules {
		rep.Rules = append(rep.Rules, RuleRow{
			LHS:        res.Index.DescribeSet(r.LHS),
			RHS:        res.Index.Describe(r.RHS),
			Count:      r.Count,
			LHSCount:   r.LHSCount,
			Confidence: r.Confidence,
			Support:    r.Support,
		})
	}
	sort.SliceStable(rep.Rules, func(i, j int) bool {
		a, b := rep.Rules[i], rep.Rules[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.Support != b.Support {
			return a.Support > b.Support
		}
		return a.text() < b.text()
	})

	return rep
}

func (r RuleRow) text() string {
	return joinItems(r.LHS) + " => " + r.RHS
}

func joinItems(items []string) string {
	return strings.Join(items, ",")
}

func percent(f float64) string {
	return fmt.Sprintf("%.2f%%", 100*f)
}

// Write renders rep in the requested format.
func Write(w io.Writer, rep *Report, opts Options) error {
	switch opts.Format {
	case FormatTable, "":
		return writeTables(w, rep, opts.Color)
	case FormatJSON:
		return writeJSON(w, rep)
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// WriteFile renders rep into path, replacing any existing file.
func WriteFile(path string, rep *Report, opts Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return Write(f, rep, opts)
}

func writeTables(w io.Writer, rep *Report, useColor bool) error {
	var sb strings.Builder

	sb.WriteString(title(fmt.Sprintf("==Frequent itemsets (min_sup=%s)", percent(rep.MinSupport)), useColor))
	sb.WriteString("\n")
	sets := newGrid(
		column{header: "ItemSets"},
		column{header: "Count", right: true},
		column{header: "Support", right: true},
	)
	for _, row := range rep.Itemsets {
		sets.add(joinItems(row.Items), fmt.Sprintf("%d", row.Count), percent(row.Support))
	}
	sets.render(&sb, useColor)

	sb.WriteString("\n\n")
	sb.WriteString(title(fmt.Sprintf("==High-confidence association rules (min_conf=%s)", percent(rep.MinConf)), useColor))
	sb.WriteString("\n")
	rules := newGrid(
		column{header: "LHS"},
		column{header: ""},
		column{header: "RHS"},
		column{header: "Confidence", right: true},
		column{header: "Support", right: true},
	)
	for _, row := range rep.Rules {
		rules.add(joinItems(row.LHS), "=>", row.RHS, percent(row.Confidence), percent(row.Support))
	}
	rules.render(&sb, useColor)

	_, err := io.WriteString(w, sb.String())
	return err
}
