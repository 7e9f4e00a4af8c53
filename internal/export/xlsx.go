// Package export writes the logbook to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/balkashynov/pilotlog/internal/metrics"
	"github.com/balkashynov/pilotlog/internal/models"
	"github.com/balkashynov/pilotlog/internal/parser"
)

// Sheet names, in workbook order
const (
	SheetFlights = "Flights"
	SheetByType  = "By Type"
	SheetByYear  = "By Year"
	SheetRolling = "Rolling"
)

// Workbook is the data written to one export
type Workbook struct {
	Flights []models.Flight
	Stats   metrics.Stats
	Rolling metrics.Rolling
}

var flightHeader = []interface{}{
	"Date", "Flight", "From", "To", "Depart", "Arrive", "Block (min)", "Block",
	"Tail", "Type", "Type (raw)", "Deadhead", "PIC T/O", "PIC Ldg", "Position", "Crew", "Remarks", "Source",
}

// Write renders wb as XLSX to w
func Write(w io.Writer, wb Workbook) error {
	f, err := build(wb)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// WriteFile renders wb as XLSX to path
func WriteFile(path string, wb Workbook) error {
	f, err := build(wb)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func build(wb Workbook) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetFlights); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	for _, name := range []string{SheetByType, SheetByYear, SheetRolling} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	steps := []func(*excelize.File, int, Workbook) error{
		writeFlights, writeByType, writeByYear, writeRolling,
	}
	for _, step := range steps {
		if err := step(f, bold, wb); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, bold int, header []interface{}, rows [][]interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func clock(minutes *int) string {
	if minutes == nil {
		return ""
	}
	return parser.FormatClock(*minutes)
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return ""
}

func writeFlights(f *excelize.File, bold int, wb Workbook) error {
	rows := make([][]interface{}, 0, len(wb.Flights))
	for _, fl := range wb.Flights {
		rows = append(rows, []interface{}{
			fl.FlightDate,
			models.Str(fl.FlightNumber),
			fl.Origin,
			fl.Destination,
			clock(fl.DepartureTime),
			clock(fl.ArrivalTime),
			fl.BlockMinutes,
			metrics.FormatMinutes(fl.BlockMinutes),
			models.Str(fl.TailNumber),
			models.Str(fl.AircraftType),
			models.Str(fl.AircraftTypeRaw),
			yesNo(fl.IsDeadhead),
			yesNo(fl.PICTakeoff),
			yesNo(fl.PICLanding),
			models.Str(fl.CrewPosition),
			models.Str(fl.CrewName),
			models.Str(fl.Remarks),
			string(fl.Source),
		})
	}
	return writeRows(f, SheetFlights, bold, flightHeader, rows)
}

func writeByType(f *excelize.File, bold int, wb Workbook) error {
	rows := make([][]interface{}, 0, len(wb.Stats.ByAircraftType))
	for _, t := range wb.Stats.ByAircraftType {
		rows = append(rows, []interface{}{t.Type, t.Flights, t.Minutes, t.Formatted})
	}
	return writeRows(f, SheetByType, bold, []interface{}{"Type", "Flights", "Minutes", "Block"}, rows)
}

func writeByYear(f *excelize.File, bold int, wb Workbook) error {
	rows := make([][]interface{}, 0, len(wb.Stats.ByYear))
	for _, y := range wb.Stats.ByYear {
		rows = append(rows, []interface{}{y.Year, y.Flights, y.Minutes, y.Formatted})
	}
	return writeRows(f, SheetByYear, bold, []interface{}{"Year", "Flights", "Minutes", "Block"}, rows)
}

func writeRolling(f *excelize.File, bold int, wb Workbook) error {
	windows := wb.Rolling.Sorted()
	rows := make([][]interface{}, 0, len(windows))
	for _, w := range windows {
		rows = append(rows, []interface{}{wb.Rolling.AsOf, w.Days, w.Flights, w.Minutes, w.Formatted})
	}
	return writeRows(f, SheetRolling, bold, []interface{}{"As of", "Days", "Flights", "Minutes", "Block"}, rows)
}
