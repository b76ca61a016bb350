// Package xlsxio is the workbook's external-collaborator boundary to the
// XLSX file format (spec.md §1/§6): streaming bulk ingest that loads a
// workbook straight into the graph and value store, bypassing the editor's
// per-cell journal, plus export back out to a file. Grounded in mcpxcel's
// excelize usage — internal/insights/profile_schema.go's f.Rows streaming
// iterator for reads, internal/registry/tools_foundation.go's
// NewStreamWriter for writes — since the teacher (vogtb-go-spreadsheet)
// parses only raw formula-string slices handed to it in Go source, never a
// file on disk.
package xlsxio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/PSU3D0/cellgraph/internal/editor"
	"github.com/PSU3D0/cellgraph/internal/formula"
	"github.com/PSU3D0/cellgraph/internal/graph"
	"github.com/PSU3D0/cellgraph/internal/types"
	"github.com/PSU3D0/cellgraph/internal/valuestore"
	"github.com/PSU3D0/cellgraph/pkg/cellerr"
)

// Summary reports what BulkIngest loaded.
type Summary struct {
	Sheets       int
	CellsLoaded  int
	FormulasSet  int
}

// Ingester streams an XLSX workbook directly into a Graph/Store/Names
// triple, skipping the journal entirely — spec.md §6 calls this out
// explicitly as a loader fast path, not an undoable edit.
type Ingester struct {
	logger zerolog.Logger
}

// New builds an Ingester.
func New() *Ingester { return &Ingester{logger: zerolog.Nop()} }

// WithLogger attaches a structured logger.
func (ing *Ingester) WithLogger(logger zerolog.Logger) *Ingester {
	ing.logger = logger.With().Str("component", "xlsxio").Logger()
	return ing
}

// BulkIngest opens path and streams every sheet's cells into g/store,
// registering sheet names in names as it goes. A cell for which excelize
// reports a formula (GetCellFormula) has it parsed and attached (graph edges
// wired via names' resolvers); everything else is coerced to a literal Value.
func (ing *Ingester) BulkIngest(path string, g *graph.Graph, store *valuestore.Store, names *editor.Names) (Summary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Summary{}, cellerr.Wrap(cellerr.BulkIngestFailed, "open "+path, err)
	}
	defer f.Close()

	var summary Summary
	for _, sheetName := range f.GetSheetList() {
		sheetID := names.DefineSheet(sheetName)
		summary.Sheets++

		n, formulas, err := ing.ingestSheet(f, sheetName, sheetID, g, store, names)
		if err != nil {
			return summary, cellerr.Wrap(cellerr.BulkIngestFailed, "sheet "+sheetName, err)
		}
		summary.CellsLoaded += n
		summary.FormulasSet += formulas
		ing.logger.Debug().Str("sheet", sheetName).Int("cells", n).Int("formulas", formulas).Msg("sheet ingested")
	}
	return summary, nil
}

func (ing *Ingester) ingestSheet(f *excelize.File, sheetName string, sheetID types.SheetId, g *graph.Graph, store *valuestore.Store, names *editor.Names) (int, int, error) {
	rows, err := f.Rows(sheetName)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	cells, formulas := 0, 0
	rowIdx := 0
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return cells, formulas, err
		}
		for colIdx, raw := range cols {
			if raw == "" {
				continue
			}
			ref := types.CellRef{Sheet: sheetID, Coord: types.NewCoord(uint32(rowIdx), uint32(colIdx))}
			axis, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if fx, ferr := f.GetCellFormula(sheetName, axis); ferr == nil && fx != "" {
				node, perr := formula.Parse("="+fx, &formula.ParserContext{CurrentSheet: sheetName, ResolveSheet: names.ResolveSheet})
				if perr != nil {
					ing.logger.Warn().Str("cell", axis).Err(perr).Msg("skipping unparseable formula during ingest")
					continue
				}
				g.SetFormula(ref, node, names.ResolveSheet, names.ResolveNameOrTableRange)
				formulas++
				continue
			}
			store.Set(ref, coerceLiteral(raw))
			cells++
		}
		rowIdx++
	}
	return cells, formulas, rows.Error()
}

// coerceLiteral turns excelize's string-typed cell value into a Value,
// widening numeric text to KindNumber per the same canonicalization the
// editor applies to direct cell entry.
func coerceLiteral(raw string) types.Value {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return types.NumberValue(n)
	}
	switch strings.ToUpper(raw) {
	case "TRUE":
		return types.BoolValue(true)
	case "FALSE":
		return types.BoolValue(false)
	}
	return types.TextValue(raw)
}

// Export writes cell values (a formula cell's current result, not its
// formula text) to an XLSX file at path, one sheet per entry of sheets,
// bounded by that entry's range, streaming rows via
// excelize's StreamWriter the way mcpxcel's bulk range-write tool does.
func Export(path string, g *graph.Graph, store *valuestore.Store, names *editor.Names, sheets map[types.SheetId]types.RangeRef) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for sheetID, bounds := range sheets {
		name := names.SheetName(sheetID)
		if name == "" {
			name = fmt.Sprintf("Sheet%d", sheetID)
		}
		if first {
			f.SetSheetName("Sheet1", name)
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return cellerr.Wrap(cellerr.BulkIngestFailed, "create sheet "+name, err)
		}

		sw, err := f.NewStreamWriter(name)
		if err != nil {
			return cellerr.Wrap(cellerr.BulkIngestFailed, "stream writer for "+name, err)
		}
		for row := bounds.Start.Row; row <= bounds.End.Row; row++ {
			startCell, _ := excelize.CoordinatesToCellName(int(bounds.Start.Col)+1, int(row)+1)
			values := make([]interface{}, 0, bounds.Cols())
			for col := bounds.Start.Col; col <= bounds.End.Col; col++ {
				ref := types.CellRef{Sheet: sheetID, Coord: types.NewCoord(row, col)}
				values = append(values, exportCellValue(g, store, ref))
			}
			if err := sw.SetRow(startCell, values); err != nil {
				return cellerr.Wrap(cellerr.BulkIngestFailed, "write row", err)
			}
		}
		if err := sw.Flush(); err != nil {
			return cellerr.Wrap(cellerr.BulkIngestFailed, "flush "+name, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return cellerr.Wrap(cellerr.BulkIngestFailed, "save "+path, err)
	}
	return nil
}

func exportCellValue(g *graph.Graph, store *valuestore.Store, ref types.CellRef) interface{} {
	if id, ok := g.Vertices.Lookup(ref); ok && g.Vertices.Kind(id) == graph.VertexFormula {
		v := store.Effective(ref)
		return valueToCell(v)
	}
	return valueToCell(store.Get(ref))
}

func valueToCell(v types.Value) interface{} {
	switch v.Kind {
	case types.KindInt:
		return v.Int
	case types.KindNumber:
		return v.Number
	case types.KindText:
		return v.Text
	case types.KindBoolean:
		return v.Boolean
	case types.KindError:
		return v.String()
	default:
		return nil
	}
}
