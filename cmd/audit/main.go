/*
main.go - Wage statement audit CLI

PURPOSE:
  Offline batch auditing of plain-text wage statements. Reads one payslip
  per file, runs the full rule set against the built-in statutory minimums
  table, and renders a compliance report.

PIPELINE:
  expand globs -> extract text -> parse statements -> evaluate -> aggregate
  -> render report

FLAGS:
  -input    payslip file or glob, repeatable (required)
  -format   report format: text or json (default text)
  -out      write the report to this path (default stdout)
  -workers  concurrent evaluations (default 4)
  -verbose  log per-file progress to stderr

EXIT CODES:
  0  every statement parsed and came back compliant
  1  violations found, or some statements could not be analyzed
  2  usage error (bad flags, no matching files, unwritable output)

EXAMPLES:
  # Audit one payslip
  ./audit -input=payslip.txt

  # Audit a directory of statements, JSON report to a file
  ./audit -input='statements/*.txt' -format=json -out=report.json

  # Several inputs, chatty
  ./audit -input=jan.txt -input=feb.txt -verbose

SEE ALSO:
  - parse/parser.go: accepted payslip layouts
  - report/render.go: output formats
  - cmd/server/main.go: the HTTP service over the same engine
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/compliance-engine/aggregate"
	"github.com/warp/compliance-engine/compliance"
	"github.com/warp/compliance-engine/extract"
	"github.com/warp/compliance-engine/law"
	"github.com/warp/compliance-engine/logging"
	"github.com/warp/compliance-engine/parse"
	"github.com/warp/compliance-engine/report"
	"github.com/warp/compliance-engine/rules"
)

const version = "1.0.0"

const (
	exitOK         = 0
	exitViolations = 1
	exitUsage      = 2
)

// multiFlag collects repeated -input values.
type multiFlag []string

func (f *multiFlag) String() string { return strings.Join(*f, ", ") }

func (f *multiFlag) Set(value string) error {
	*f = append(*f, value)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var inputs multiFlag
	flag.Var(&inputs, "input", "payslip file or glob (repeatable)")
	format := flag.String("format", "text", "report format: text or json")
	out := flag.String("out", "", "write the report to this path (default stdout)")
	workers := flag.Int("workers", 4, "concurrent evaluations")
	verbose := flag.Bool("verbose", false, "log per-file progress")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	log := logging.Pretty(os.Stderr, level)

	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "audit: at least one -input file or glob is required")
		flag.Usage()
		return exitUsage
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(os.Stderr, "audit: unknown format %q (use text or json)\n", *format)
		return exitUsage
	}

	paths, err := expandInputs(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit: %v\n", err)
		return exitUsage
	}

	ctx := context.Background()
	records, fileIndex, failures := loadRecords(ctx, paths, log)

	evaluator := compliance.NewEvaluator(law.DefaultTable(), rules.DefaultRegistry(rules.DefaultConfig()))
	analyses, evalFailures := evaluator.EvaluateBatchConcurrent(ctx, records, *workers)

	// Evaluation failures index into the parsed-record slice; map them back
	// to positions in the expanded file list so the report lines up with
	// parse failures.
	for _, f := range evalFailures {
		failures = append(failures, compliance.BatchFailure{
			Index: fileIndex[f.Index],
			Err:   fmt.Errorf("%s: %w", paths[fileIndex[f.Index]], f.Err),
		})
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Index < failures[j].Index })

	agg := aggregate.New(aggregate.DefaultRiskThresholds())
	summary := agg.ComputeWithFailures(analyses, failures)
	stats := aggregate.ComputeStats(analyses)
	trend := aggregate.ComputeTrend(analyses, aggregate.DefaultTrendOptions())

	rep := report.Build(analyses, failures, summary, stats, trend, report.Meta{
		GeneratedAt: time.Now(),
		Tool:        "audit",
		Version:     version,
	})

	rendered, err := render(rep, *format)
	if err != nil {
		log.Error().Err(err).Msg("failed to render report")
		return exitViolations
	}
	if err := write(rendered, *out); err != nil {
		fmt.Fprintf(os.Stderr, "audit: %v\n", err)
		return exitUsage
	}

	if len(failures) > 0 || summary.CompliantCount < summary.RecordCount {
		return exitViolations
	}
	return exitOK
}

// expandInputs resolves each -input value against the filesystem. An input
// that matches nothing is an error rather than a silent skip. The result is
// deduplicated and sorted so runs are deterministic.
func expandInputs(inputs []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, in := range inputs {
		matches, err := filepath.Glob(in)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", in, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", in)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// loadRecords extracts and parses one wage record per file. Files that
// cannot be read or parsed become failures keyed by their position in
// paths; fileIndex maps each returned record back to that position.
func loadRecords(ctx context.Context, paths []string, log zerolog.Logger) ([]compliance.WageRecord, []int, []compliance.BatchFailure) {
	var (
		records   []compliance.WageRecord
		fileIndex []int
		failures  []compliance.BatchFailure
	)

	for i, path := range paths {
		rec, err := loadRecord(ctx, path)
		if err != nil {
			log.Warn().Str("file", path).Err(err).Msg("skipping file")
			failures = append(failures, compliance.BatchFailure{
				Index: i,
				Err:   fmt.Errorf("%s: %w", path, err),
			})
			continue
		}
		log.Debug().Str("file", path).Str("period", rec.PeriodKey()).Msg("parsed wage statement")
		records = append(records, rec)
		fileIndex = append(fileIndex, i)
	}
	return records, fileIndex, failures
}

func loadRecord(ctx context.Context, path string) (compliance.WageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return compliance.WageRecord{}, err
	}
	defer f.Close()

	extraction, err := extract.PlainText{}.Extract(ctx, f)
	if err != nil {
		return compliance.WageRecord{}, err
	}
	if extraction.Empty() {
		return compliance.WageRecord{}, errors.New("file is empty")
	}
	return parse.Text(extraction.Text)
}

func render(rep report.Report, format string) ([]byte, error) {
	if format == "json" {
		return report.JSON(rep, true)
	}
	return []byte(report.Text(rep)), nil
}

func write(data []byte, out string) error {
	if out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("cannot write report: %w", err)
	}
	return nil
}
