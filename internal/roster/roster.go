package roster

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

const maxSpreadsheetRows = 100000

var ErrUnsupportedFormat = errors.New("roster must be .json, .xlsx or .xls")

type Entry struct {
	FullName string `json:"full_name" yaml:"full_name"`
	Phone    string `json:"phone,omitempty" yaml:"phone"`
	Role     string `json:"role,omitempty" yaml:"role"`
}

// Parse reads worker rows from a roster file, chosen by the file extension.
func Parse(filename string, data []byte) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		var entries []Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return entries, nil
	case ".xlsx":
		rows, err := xlsxRows(data)
		if err != nil {
			return nil, err
		}
		return fromRows(rows)
	case ".xls":
		rows, err := xlsRows(data)
		if err != nil {
			return nil, err
		}
		return fromRows(rows)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func xlsxRows(data []byte) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("no worksheet found")
	}
	return file.GetRows(sheet)
}

func xlsRows(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if workbook.NumSheets() == 0 {
		return nil, errors.New("no worksheet found")
	}
	return workbook.ReadAllCells(maxSpreadsheetRows), nil
}

// fromRows maps the header row onto Entry fields; rows without a name are skipped.
func fromRows(rows [][]string) ([]Entry, error) {
	if len(rows) == 0 {
		return nil, errors.New("worksheet is empty")
	}

	nameIdx, phoneIdx, roleIdx := -1, -1, -1
	for i, header := range rows[0] {
		switch normalizeHeader(header) {
		case "full name", "full_name", "name", "worker":
			nameIdx = i
		case "phone", "phone number", "mobile":
			phoneIdx = i
		case "role", "position":
			roleIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, errors.New("missing name column")
	}

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := cellValue(row, nameIdx)
		if name == "" {
			continue
		}
		entries = append(entries, Entry{
			FullName: name,
			Phone:    cellValue(row, phoneIdx),
			Role:     cellValue(row, roleIdx),
		})
	}
	return entries, nil
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
