// =============================================================================
// Fraksjonsoversikt - Converter Module
// =============================================================================
//
// This module orchestrates the report pipeline for a single export, from
// raw bytes to the rendered outputs.
//
// CONVERSION PIPELINE:
//   1. Pick a reader (workbook or delimited text)
//   2. Decode the export into a table
//   3. Build the report (schema check, aggregation, ordering, rendering)
//   4. Serialize the workbook
//   5. Write the output files (batch runs only)
//
// CONCURRENCY:
//   A Converter holds no per-file state and can be shared by goroutines.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TeoCir/IsekkKran/internal/config"
	"github.com/TeoCir/IsekkKran/internal/csvparser"
	"github.com/TeoCir/IsekkKran/internal/report"
	"github.com/TeoCir/IsekkKran/internal/types"
	"github.com/TeoCir/IsekkKran/internal/xlsxparser"
	"github.com/TeoCir/IsekkKran/internal/xlsxwriter"
	"github.com/TeoCir/IsekkKran/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFiles are the written workbook and, when enabled, text file.
	// Empty if processing failed: a workbook written before a later write
	// failed is removed again.
	OutputFiles []string

	// Report is the built report. Nil if processing failed.
	Report *report.Report

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsProcessed is the number of non-blank input rows.
	RowsProcessed int

	// DroppedUnitRows counts rows without a usable unit.
	DroppedUnitRows int

	// DroppedFractionRows counts rows that derived an empty fraction.
	DroppedFractionRows int

	// UnparsedQuantities counts kept rows whose quantity is not a number.
	UnparsedQuantities int

	// Fractions is the number of fraction rows in the report.
	Fractions int

	// Units are the report columns in order.
	Units []string

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// outputStore writes and removes files in the output directory.
type outputStore interface {
	WriteOutput(name string, data []byte) (string, error)
	RemoveOutput(path string) error
}

// Converter runs the report pipeline.
type Converter struct {
	cfg    *config.Config
	files  outputStore
	writer types.TableWriter
	logger *zap.Logger
}

// New creates a Converter.
//
// PARAMETERS:
//   - cfg: The application configuration. Nil uses config.Default().
//   - logger: The logger. Nil disables logging.
func New(cfg *config.Config, logger *zap.Logger) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{
		cfg:    cfg,
		files:  utils.NewFileManager(cfg.InputDir, cfg.OutputDir),
		writer: xlsxwriter.New(),
		logger: logger,
	}
}

// Options returns the report options configured for batch runs.
func (c *Converter) Options() (report.Options, error) {
	opt := report.Options{Units: c.cfg.Units}
	if !c.cfg.FlatText.Enabled {
		return opt, nil
	}

	delim, err := report.ParseDelimiter(c.cfg.FlatText.Delimiter)
	if err != nil {
		return opt, err
	}
	opt.FlatText = &report.FlatTextOptions{
		Delimiter:  delim,
		IncludeSum: c.cfg.FlatText.IncludeSum,
		Decimals:   c.cfg.FlatText.Decimals,
	}
	return opt, nil
}

// =============================================================================
// IN-MEMORY PIPELINE
// =============================================================================

// Convert builds a report from an uploaded export.
//
// PARAMETERS:
//   - ctx: Cancels the run between pipeline steps.
//   - name: The upload file name; its extension picks the reader.
//   - data: The raw file content.
//   - opt: The report options.
//
// RETURNS:
//   - The report.
//   - *report.UnreadableFileError, *report.SchemaError or
//     *report.NoUsableUnitsError on failure, or the context error.
func (c *Converter) Convert(ctx context.Context, name string, data []byte, opt report.Options) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := c.readerFor(name, data).Read(name, data)
	if err != nil {
		return nil, &report.UnreadableFileError{Name: name, Err: err}
	}
	c.logger.Debug("decoded export",
		zap.String("file", name),
		zap.Int("columns", len(table.Headers)),
		zap.Int("rows", len(table.Rows)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep, err := report.BuildReport(table, opt)
	if err != nil {
		return nil, err
	}

	c.logger.Info("built report",
		zap.String("file", name),
		zap.Int("rows", rep.Stats.InputRows),
		zap.Int("fractions", len(rep.Table.FractionRows())),
		zap.Strings("units", rep.Table.Units),
		zap.Int("dropped_unit_rows", rep.Stats.DroppedUnitRows),
		zap.Int("dropped_fraction_rows", rep.Stats.DroppedFractionRows),
		zap.Int("unparsed_quantities", rep.Stats.UnparsedQuantities))

	return rep, nil
}

// Workbook serializes the report's export sheet.
func (c *Converter) Workbook(rep *report.Report) ([]byte, error) {
	data, err := c.writer.Write(rep.Export)
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	return data, nil
}

// readerFor picks the workbook reader for .xlsx names or ZIP content and the
// delimited-text reader otherwise.
func (c *Converter) readerFor(name string, data []byte) types.TableReader {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") || xlsxparser.IsWorkbook(data) {
		return xlsxparser.New()
	}
	return csvparser.New(c.cfg.CSV)
}

// =============================================================================
// BATCH PROCESSING
// =============================================================================

// Run processes one file on disk and writes its outputs to the output
// directory.
//
// RETURNS:
//   - A Result with the outcome. Run never panics on bad input; every
//     failure is reported through Result.Error.
func (c *Converter) Run(ctx context.Context, path string) (result Result) {
	start := time.Now()
	result = Result{FilePath: path}
	defer func() { result.Stats.ProcessingTime = time.Since(start) }()

	c.logger.Info("processing file", zap.String("file", path))

	// =========================================================================
	// STEP 1: READ INPUT
	// =========================================================================

	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = &report.UnreadableFileError{Name: filepath.Base(path), Err: err}
		return c.fail(result)
	}

	// =========================================================================
	// STEP 2: BUILD REPORT
	// =========================================================================

	opt, err := c.Options()
	if err != nil {
		result.Error = err
		return c.fail(result)
	}

	rep, err := c.Convert(ctx, filepath.Base(path), data, opt)
	if err != nil {
		result.Error = err
		return c.fail(result)
	}
	result.Report = rep
	result.Stats = statsOf(rep)

	// =========================================================================
	// STEP 3: WRITE OUTPUTS
	// =========================================================================

	workbook, err := c.Workbook(rep)
	if err != nil {
		result.Error = err
		return c.fail(result)
	}

	params := map[string]string{"original": utils.BaseName(path)}
	written, err := c.files.WriteOutput(
		utils.GenerateOutputFileName(c.cfg.OutputNameFormat, params, ".xlsx"), workbook)
	if err != nil {
		result.Error = err
		return c.fail(result)
	}
	result.OutputFiles = append(result.OutputFiles, written)

	if opt.FlatText != nil {
		ext := report.FlatTextExtension(opt.FlatText.Delimiter)
		written, err := c.files.WriteOutput(
			utils.GenerateOutputFileName(c.cfg.OutputNameFormat, params, ext), []byte(rep.FlatText))
		if err != nil {
			result.Error = err
			c.discardOutputs(&result)
			return c.fail(result)
		}
		result.OutputFiles = append(result.OutputFiles, written)
	}

	result.Success = true
	c.logger.Info("wrote outputs", zap.String("file", path), zap.Strings("outputs", result.OutputFiles))
	return result
}

// discardOutputs removes the files already written for a failed run.
func (c *Converter) discardOutputs(result *Result) {
	for _, path := range result.OutputFiles {
		if err := c.files.RemoveOutput(path); err != nil {
			c.logger.Warn("failed to remove partial output", zap.String("output", path), zap.Error(err))
		}
	}
	result.OutputFiles = nil
}

func (c *Converter) fail(result Result) Result {
	var noUnits *report.NoUsableUnitsError
	if errors.As(result.Error, &noUnits) {
		c.logger.Warn("nothing to report", zap.String("file", result.FilePath), zap.Error(result.Error))
	} else {
		c.logger.Error("processing failed", zap.String("file", result.FilePath), zap.Error(result.Error))
	}
	return result
}

func statsOf(rep *report.Report) ProcessingStats {
	return ProcessingStats{
		RowsProcessed:       rep.Stats.InputRows,
		DroppedUnitRows:     rep.Stats.DroppedUnitRows,
		DroppedFractionRows: rep.Stats.DroppedFractionRows,
		UnparsedQuantities:  rep.Stats.UnparsedQuantities,
		Fractions:           len(rep.Table.FractionRows()),
		Units:               rep.Table.Units,
	}
}

// ErrorKind classifies a pipeline error for summaries and HTTP responses:
// "unreadable", "schema", "no_usable_units", "canceled" or "internal".
func ErrorKind(err error) string {
	var (
		unreadable *report.UnreadableFileError
		schema     *report.SchemaError
		noUnits    *report.NoUsableUnitsError
	)
	switch {
	case errors.As(err, &unreadable):
		return "unreadable"
	case errors.As(err, &schema):
		return "schema"
	case errors.As(err, &noUnits):
		return "no_usable_units"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
