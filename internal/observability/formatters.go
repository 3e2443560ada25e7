// Package observability provides formatted output for the CLI's human-readable reports.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/dataqa/internal/executor"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// datasetKeys is the display order of a dataset's serialized form
var datasetKeys = []string{"name", "digest", "source_type", "source", "profile"}

// Printer handles formatted output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if utf8.RuneCountInString(line) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDataset outputs a dataset's serialized identity
func (p *Printer) PrintDataset(info map[string]string) {
	if len(info) == 0 {
		return
	}

	var sb strings.Builder
	for _, key := range datasetKeys {
		if v, ok := info[key]; ok {
			sb.WriteString(fmt.Sprintf("%-12s %s\n", key+":", v))
		}
	}
	p.printBox("DATASET", sb.String())
}

// PrintSummary outputs the totals of a run and a line per evaluator
func (p *Printer) PrintSummary(summary *executor.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Units:             %d\n", summary.Units))
	sb.WriteString(fmt.Sprintf("Results:           %d (%d failed)\n", summary.Results, summary.Failed))
	sb.WriteString(fmt.Sprintf("Evaluator errors:  %d\n", summary.Errors))
	sb.WriteString(fmt.Sprintf("Skipped records:   %d\n", summary.ConversionErrors))
	sb.WriteString(fmt.Sprintf("Duration:          %s\n", summary.Duration.Round(time.Millisecond)))

	names := make([]string, 0, len(summary.Evaluators))
	for name := range summary.Evaluators {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) > 0 {
		sb.WriteString("\nEvaluators:\n")
	}
	for i, name := range names {
		if i == maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(names)-maxItemsToShow))
			break
		}
		c := summary.Evaluators[name]
		sb.WriteString(fmt.Sprintf("  • %s: %d pass, %d fail, %d errors\n", name, c.Pass, c.Fail, c.Errors))
	}

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintRegistry outputs the registered keys of every namespace
func (p *Printer) PrintRegistry(namespaces map[string][]string) {
	if len(namespaces) == 0 {
		return
	}

	names := make([]string, 0, len(namespaces))
	for ns := range namespaces {
		names = append(names, ns)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, ns := range names {
		sb.WriteString(fmt.Sprintf("%s:\n", ns))
		for _, key := range namespaces[ns] {
			sb.WriteString(fmt.Sprintf("  • %s\n", key))
		}
	}
	p.printBox("REGISTERED TYPES", sb.String())
}
