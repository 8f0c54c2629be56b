// =============================================================================
// Fraksjonsoversikt - Report Command
// =============================================================================
//
// This file defines the 'report' command, which summarizes one or more
// exports and writes a fraksjonsoversikt workbook (and optionally a flat
// text file) per export.
//
// COMMAND USAGE:
//   isekk report [files...] [flags]
//
// Without file arguments every supported file in the input directory is
// processed. Files are processed concurrently, bounded by max_concurrency.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TeoCir/IsekkKran/internal/config"
	"github.com/TeoCir/IsekkKran/internal/converter"
	"github.com/TeoCir/IsekkKran/internal/report"
	"github.com/TeoCir/IsekkKran/pkg/utils"
)

// reportFlags holds the flag values of the report command.
type reportFlags struct {
	inputDir    string
	outputDir   string
	units       []string
	flatText    bool
	delimiter   string
	includeSum  bool
	decimals    int
	concurrency int
	print       bool
	summary     bool
}

var reportOpts reportFlags

var reportCmd = &cobra.Command{
	Use:   "report [files...]",
	Short: "Summarize exports into a fraction × unit overview",
	Long: `The report command reads waste-tracking exports (.xlsx, .csv, .tsv, .txt),
sums the target quantity per fraction and unit, and writes one
fraksjonsoversikt workbook per export to the output directory.

Each file is processed independently. A file that fails (missing columns,
unreadable content, no usable units) is reported and the others continue
unless continue_on_error is disabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := applyReportFlags(cmd, appConfig); err != nil {
			return err
		}
		return runReport(cmd.Context(), cmd.OutOrStdout(), appConfig, args)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	f := reportCmd.Flags()
	f.StringVar(&reportOpts.inputDir, "input-dir", "", "Directory scanned when no files are given")
	f.StringVar(&reportOpts.outputDir, "out-dir", "", "Directory for generated files")
	f.StringSliceVar(&reportOpts.units, "units", nil, "Only report these units, e.g. --units KG,ST")
	f.BoolVar(&reportOpts.flatText, "flat-text", false, "Also render the overview as delimited text")
	f.StringVar(&reportOpts.delimiter, "delimiter", "tab", "Flat text delimiter: tab, semicolon, comma or pipe")
	f.BoolVar(&reportOpts.includeSum, "include-sum", true, "Include the SUM row in the flat text")
	f.IntVar(&reportOpts.decimals, "decimals", 0, "Decimal places for non-whole values in the flat text")
	f.IntVar(&reportOpts.concurrency, "concurrency", 0, "Files processed at once (default from config)")
	f.BoolVar(&reportOpts.print, "print", true, "Print each overview to stdout")
	f.BoolVar(&reportOpts.summary, "summary", true, "Write a processing summary to the output directory")
}

// applyReportFlags copies explicitly set flags over the loaded config.
func applyReportFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("input-dir") {
		cfg.InputDir = reportOpts.inputDir
	}
	if flags.Changed("out-dir") {
		cfg.OutputDir = reportOpts.outputDir
	}
	if flags.Changed("units") {
		cfg.Units = reportOpts.units
	}
	if flags.Changed("flat-text") {
		cfg.FlatText.Enabled = reportOpts.flatText
	}
	if flags.Changed("delimiter") {
		if _, err := report.ParseDelimiter(reportOpts.delimiter); err != nil {
			return err
		}
		cfg.FlatText.Delimiter = reportOpts.delimiter
	}
	if flags.Changed("include-sum") {
		cfg.FlatText.IncludeSum = reportOpts.includeSum
	}
	if flags.Changed("decimals") {
		if reportOpts.decimals < 0 {
			return fmt.Errorf("--decimals must not be negative")
		}
		cfg.FlatText.Decimals = reportOpts.decimals
	}
	if flags.Changed("concurrency") && reportOpts.concurrency > 0 {
		cfg.MaxConcurrency = reportOpts.concurrency
	}
	return nil
}

// runReport processes the given files, or the input directory, and prints
// one line per file plus totals.
func runReport(ctx context.Context, out io.Writer, cfg *config.Config, files []string) error {
	start := time.Now()

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	if len(files) == 0 {
		discovered, err := fm.DiscoverInputFiles()
		if err != nil {
			return err
		}
		files = discovered
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No exports found in %s\n", cfg.InputDir)
		return nil
	}

	logger.Info("processing exports", zap.Int("files", len(files)), zap.Int("concurrency", cfg.MaxConcurrency))

	results := processFiles(ctx, converter.New(cfg, logger), files, cfg.MaxConcurrency, cfg.ContinueOnError)

	summary := utils.ProcessingSummary{StartTime: start, TotalFiles: len(files)}
	var warnings int
	for _, result := range results {
		name := filepath.Base(result.FilePath)
		switch {
		case result.Success:
			summary.SuccessfulFiles++
			summary.TotalRows += result.Stats.RowsProcessed
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFiles: result.OutputFiles,
				Rows:        result.Stats.RowsProcessed,
				Fractions:   result.Stats.Fractions,
				Units:       result.Stats.Units,
				ProcessTime: result.Stats.ProcessingTime,
			})
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, strings.Join(result.OutputFiles, ", "))
			if reportOpts.print {
				printReport(out, result.Report)
			}
		default:
			kind := converter.ErrorKind(result.Error)
			if kind == "no_usable_units" {
				warnings++
				fmt.Fprintf(out, "  ! %s: %v\n", name, result.Error)
			} else {
				fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
			}
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorType:    kind,
				ErrorMessage: result.Error.Error(),
			})
		}
	}
	summary.EndTime = time.Now()

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:  %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:   %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Failed:       %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed: %s\n", summary.EndTime.Sub(start).Round(time.Millisecond))

	if reportOpts.summary {
		path, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
		if err != nil {
			logger.Warn("failed to write summary", zap.Error(err))
		} else {
			fmt.Fprintf(out, "Summary:      %s\n", path)
		}
	}

	if failed := summary.FailedFiles - warnings; failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, summary.TotalFiles)
	}
	return nil
}

// processFiles runs the converter on every file with at most limit files in
// flight. Results keep the input order. Unless continueOnError is set, the
// first hard failure cancels the files not yet started.
func processFiles(ctx context.Context, conv *converter.Converter, files []string, limit int, continueOnError bool) []converter.Result {
	results := make([]converter.Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = converter.Result{FilePath: file, Error: err}
				return nil
			}
			results[i] = conv.Run(gctx, file)

			err := results[i].Error
			var noUnits *report.NoUsableUnitsError
			if err != nil && !continueOnError && !errors.As(err, &noUnits) {
				return err
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// printReport writes the display table as aligned columns.
func printReport(out io.Writer, rep *report.Report) {
	if rep == nil {
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "    "+strings.Join(rep.Display.Header, "\t"))
	for _, row := range rep.Display.Rows {
		fmt.Fprintln(w, "    "+strings.Join(row, "\t"))
	}
	w.Flush()

	if rep.FlatText != "" {
		fmt.Fprintln(out)
		fmt.Fprint(out, rep.FlatText)
	}
	fmt.Fprintln(out)
}
