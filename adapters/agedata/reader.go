// Package agedata loads the empirical age table from tabular files. CSV and
// XLSX files are supported; the table must carry "dataset" and "age" columns
// and row order is preserved.
package agedata

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"phasewin/domain/core"
	"phasewin/ports"
)

// FileSource reads age records from a CSV or Excel file.
type FileSource struct {
	filePath string
	fileType string // "csv" or "xlsx"
}

// NewFileSource creates a source for filePath, picking the format from the
// file extension. Anything that is not .csv is read as a workbook.
func NewFileSource(filePath string) *FileSource {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &FileSource{filePath: filePath, fileType: fileType}
}

// Ages implements ports.AgeSource.
func (s *FileSource) Ages(ctx context.Context) ([]ports.AgeRecord, error) {
	if _, err := os.Stat(s.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", core.ErrNoAgeSource, s.filePath)
	}

	var rows [][]string
	var err error
	switch s.fileType {
	case "csv":
		rows, err = s.readCSV()
	default:
		rows, err = s.readWorkbook()
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func (s *FileSource) readCSV() ([][]string, error) {
	file, err := os.Open(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func (s *FileSource) readWorkbook() ([][]string, error) {
	f, err := excelize.OpenFile(s.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets: %s", s.filePath)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// parseRows converts raw table rows into age records. The header row must
// name "dataset" and "age" columns (case-insensitive, any order).
func parseRows(rows [][]string) ([]ports.AgeRecord, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("age table must have a header row")
	}

	datasetCol, ageCol := -1, -1
	for i, name := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "dataset":
			datasetCol = i
		case "age":
			ageCol = i
		}
	}
	if datasetCol < 0 || ageCol < 0 {
		return nil, fmt.Errorf("age table header must contain dataset and age columns, got %v", rows[0])
	}

	records := make([]ports.AgeRecord, 0, len(rows)-1)
	for rowIdx, row := range rows[1:] {
		if len(row) == 0 {
			continue // trailing blank rows from spreadsheet exports
		}
		if len(row) <= datasetCol || len(row) <= ageCol {
			return nil, core.NewRecordError(rowIdx+2, "missing columns")
		}

		age, err := strconv.ParseFloat(strings.TrimSpace(row[ageCol]), 64)
		if err != nil {
			return nil, core.NewRecordError(rowIdx+2, fmt.Sprintf("unparseable age %q", row[ageCol]))
		}
		if age < 0 || math.IsNaN(age) || math.IsInf(age, 0) {
			return nil, core.NewRecordError(rowIdx+2, fmt.Sprintf("age must be finite and >= 0, got %v", age))
		}

		records = append(records, ports.AgeRecord{
			Dataset: strings.TrimSpace(row[datasetCol]),
			Age:     age,
		})
	}
	return records, nil
}

// Static is a fixed in-memory age source, used by tests and embedded callers.
type Static []ports.AgeRecord

// Ages implements ports.AgeSource.
func (s Static) Ages(ctx context.Context) ([]ports.AgeRecord, error) {
	out := make([]ports.AgeRecord, len(s))
	copy(out, s)
	return out, nil
}
