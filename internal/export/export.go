// Package export writes the table screens as xlsx workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jensholdgaard/wowtools/internal/combatlog"
	"github.com/jensholdgaard/wowtools/internal/roster"
)

// Sheet names.
const (
	ConsumablesSheet = "Consumables"
	RosterSheet      = "Roster"
)

// ContentType is the MIME type of the written workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Consumables writes one row per character with a column per consumable.
func Consumables(w io.Writer, rows []combatlog.UsageRow, consumables []combatlog.Consumable) error {
	header := []any{"Name"}
	for _, c := range consumables {
		header = append(header, c.Label)
	}
	body := make([][]any, len(rows))
	for i, r := range rows {
		line := []any{r.Name}
		for _, c := range consumables {
			line = append(line, r.Counts[c.Key])
		}
		body[i] = line
	}
	return write(w, ConsumablesSheet, header, body)
}

// Roster writes the statistics table of a plan.
func Roster(w io.Writer, stats roster.Statistics) error {
	header := []any{"Name", "Class", "Spec", "Role"}
	body := make([][]any, len(stats.Rows))
	for i, r := range stats.Rows {
		body[i] = []any{r.Name, r.Class, r.Spec, string(r.Role)}
	}
	return write(w, RosterSheet, header, body)
}

func write(w io.Writer, sheet string, header []any, body [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, row := range body {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
