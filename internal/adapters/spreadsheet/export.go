package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"eventdesk/internal/domain/participant"
)

const exportSheet = "Participants"

// ExportHeader is the header row written by WriteParticipants. It round-trips
// through ParseParticipants.
var ExportHeader = []string{"Name", "Email", "Phone No", "Faculty", "Course", "Year", "Gender", "Role"}

// WriteParticipants writes participants as an .xlsx workbook.
// PRE: w is writable
// POST: One header row followed by one row per participant, in slice order
func WriteParticipants(w io.Writer, participants []participant.Participant) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]any, len(ExportHeader))
	for i, h := range ExportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return err
	}

	for i, p := range participants {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{p.Name, p.Email, p.PhoneNo, p.Faculty, p.Course, yearCell(p.Year), p.Gender, p.Role}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}

func yearCell(year int) any {
	if year == 0 {
		return ""
	}
	return year
}
