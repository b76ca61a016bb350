// Command cellgraph is a demo CLI driver over internal/engine: it builds a
// toy workbook (or loads one from an XLSX file with -xlsx), recalculates
// it, and prints the resulting cell values. Grounded in mcpxcel's
// cmd/server/main.go bootstrap shape (zerolog.TimeFieldFormat wiring,
// flag.Parse, a context-scoped logger) adapted from an MCP server's
// transport bootstrap to a single recalc-and-print pass, since the teacher
// (vogtb-go-spreadsheet) has no cmd/ entry point at all.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/PSU3D0/cellgraph/internal/engine"
	"github.com/PSU3D0/cellgraph/internal/types"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var (
		xlsxPath string
		verbose  bool
		timeout  time.Duration
	)
	flag.StringVar(&xlsxPath, "xlsx", "", "load a workbook from this XLSX file instead of the built-in demo")
	flag.BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "recalculation timeout")
	flag.Parse()

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger := zlog.With().Str("service", "cellgraph").Logger().Level(level)
	ctx := logger.WithContext(context.Background())
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	en := engine.New(engine.DefaultConfig()).WithLogger(logger)

	var sheet types.SheetId
	if xlsxPath != "" {
		summary, err := en.BulkIngest(xlsxPath)
		if err != nil {
			logger.Error().Err(err).Str("path", xlsxPath).Msg("bulk ingest failed")
			fmt.Fprintf(os.Stderr, "bulk ingest %s: %v\n", xlsxPath, err)
			os.Exit(1)
		}
		logger.Info().Int("sheets", summary.Sheets).Int("cells", summary.CellsLoaded).Int("formulas", summary.FormulasSet).Msg("workbook loaded")
		sheet, _ = en.Names.ResolveSheet("Sheet1")
	} else {
		sheet = buildDemoWorkbook(en)
	}

	evaluated, circular, err := en.EvaluateAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("recalculation failed")
		fmt.Fprintf(os.Stderr, "recalculation failed: %v\n", err)
		os.Exit(1)
	}
	logger.Info().Int("evaluated", evaluated).Int("circular", len(circular)).Msg("recalculation complete")

	printRange(en, sheet, 0, 0, 9, 9)
}

// buildDemoWorkbook wires up spec.md §8 scenario 1 (basic arithmetic +
// incremental recalculation) so `cellgraph` with no flags has something to
// print: A1=10, B1==A1*2.
func buildDemoWorkbook(en *engine.Engine) types.SheetId {
	sheet := en.DefineSheet("Sheet1")
	a1 := types.CellRef{Sheet: sheet, Coord: types.NewCoord(0, 0)}
	b1 := types.CellRef{Sheet: sheet, Coord: types.NewCoord(0, 1)}

	must(en.SetCellValue(a1, types.NumberValue(10)))
	must(en.SetCellFormula(b1, "=A1*2"))
	return sheet
}

func must(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}
}

// printRange prints the effective value of every non-empty cell in
// [r0..r1] x [c0..c1] as an A1-style grid dump.
func printRange(en *engine.Engine, sheet types.SheetId, r0, c0, r1, c1 uint32) {
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			ref := types.CellRef{Sheet: sheet, Coord: types.NewCoord(row, col)}
			v := en.GetCellValue(ref)
			if v.IsEmpty() {
				continue
			}
			fmt.Printf("%s = %s\n", ref.String(), v.String())
		}
	}
}
