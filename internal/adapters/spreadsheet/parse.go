package spreadsheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"eventdesk/internal/domain/participant"
)

// Parse errors caused by the uploaded file itself.
var (
	ErrMissingColumn   = errors.New("spreadsheet is missing a required column")
	ErrInvalidWorkbook = errors.New("file is not a readable workbook")
)

// RowError describes a data row that could not become a candidate.
type RowError struct {
	Row     int    `json:"row"` // 1-based sheet row, the header is row 1
	Message string `json:"message"`
}

// ParseResult holds the candidates read from a workbook.
type ParseResult struct {
	Candidates []participant.Participant
	RowErrors  []RowError
}

type column int

const (
	colName column = iota
	colEmail
	colPhone
	colFaculty
	colCourse
	colYear
	colGender
	colRole
)

var headerAliases = map[string]column{
	"name":     colName,
	"email":    colEmail,
	"phone":    colPhone,
	"phoneno":  colPhone,
	"phone no": colPhone,
	"faculty":  colFaculty,
	"course":   colCourse,
	"year":     colYear,
	"gender":   colGender,
	"role":     colRole,
}

// ParseParticipants reads participant rows from the first sheet of a workbook.
// PRE: r yields an .xlsx workbook whose first row is a header
// POST: Candidates are normalized and valid, in sheet order; rows that fail
// validation are reported in RowErrors; blank rows are ignored
func ParseParticipants(r io.Reader) (ParseResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return ParseResult{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return ParseResult{}, fmt.Errorf("%w: upload exceeds %d bytes", ErrInvalidWorkbook, MaxUploadBytes)
	}
	if err := Sniff(data); err != nil {
		return ParseResult{}, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ParseResult{}, fmt.Errorf("%w: no sheets", ErrInvalidWorkbook)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return ParseResult{}, fmt.Errorf("%w: sheet %q: %v", ErrInvalidWorkbook, sheets[0], err)
	}
	if len(rows) == 0 {
		return ParseResult{}, fmt.Errorf("%w: name", ErrMissingColumn)
	}

	index, err := mapHeader(rows[0])
	if err != nil {
		return ParseResult{}, err
	}

	result := ParseResult{Candidates: []participant.Participant{}}
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		sheetRow := i + 2
		p, err := toParticipant(row, index)
		if err == nil {
			err = p.Validate()
		}
		if err != nil {
			result.RowErrors = append(result.RowErrors, RowError{Row: sheetRow, Message: err.Error()})
			continue
		}
		result.Candidates = append(result.Candidates, p)
	}
	return result, nil
}

// mapHeader returns the cell index of each recognised column.
func mapHeader(header []string) (map[column]int, error) {
	index := map[column]int{}
	for i, cell := range header {
		key := strings.Join(strings.Fields(strings.ToLower(cell)), " ")
		if col, ok := headerAliases[key]; ok {
			if _, seen := index[col]; !seen {
				index[col] = i
			}
		}
	}
	if _, ok := index[colName]; !ok {
		return nil, fmt.Errorf("%w: name", ErrMissingColumn)
	}
	if _, ok := index[colEmail]; !ok {
		return nil, fmt.Errorf("%w: email", ErrMissingColumn)
	}
	return index, nil
}

func toParticipant(row []string, index map[column]int) (participant.Participant, error) {
	cell := func(c column) string {
		i, ok := index[c]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	p := participant.Participant{
		Name:    cell(colName),
		Email:   cell(colEmail),
		PhoneNo: cell(colPhone),
		Faculty: cell(colFaculty),
		Course:  cell(colCourse),
		Gender:  cell(colGender),
		Role:    cell(colRole),
	}
	if y := cell(colYear); y != "" {
		v, err := strconv.ParseFloat(y, 64)
		if err != nil || v != float64(int(v)) {
			return p, fmt.Errorf("year %q is not a whole number", y)
		}
		p.Year = int(v)
	}
	p.Normalize()
	return p, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
