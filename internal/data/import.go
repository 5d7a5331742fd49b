// Package data parses lesson vocabulary files for the importer CLI.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type (
	// Word is one parsed vocab row; ids are assigned later by position.
	Word struct {
		Word    string
		Meaning string
	}

	ParsingError struct {
		InvalidRows []int
	}
)

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing error: invalidRows=%v", e.InvalidRows)
}

// ParseCSV reads "word,meaning" rows. Blank rows are skipped; rows without
// both cells are collected into a ParsingError.
func ParseCSV(in io.Reader) ([]Word, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1

	var words []Word
	invalidRows := make([]int, 0, 10) //nolint:mnd // 10 is the expected capacity
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		rowNum++

		word, meaning, ok := wordFromRow(record)
		if !ok {
			if !rowIsBlank(record) {
				invalidRows = append(invalidRows, rowNum)
			}
			continue
		}
		words = append(words, Word{Word: word, Meaning: meaning})
	}

	if len(invalidRows) > 0 {
		return words, &ParsingError{InvalidRows: invalidRows}
	}

	return words, nil
}

// ParseXLSX reads "word | meaning" rows from the first sheet of a workbook.
func ParseXLSX(in io.Reader) ([]Word, error) {
	f, err := excelize.OpenReader(in)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var words []Word
	invalidRows := make([]int, 0, 10) //nolint:mnd // 10 is the expected capacity
	for i, row := range rows {
		word, meaning, ok := wordFromRow(row)
		if !ok {
			if !rowIsBlank(row) {
				invalidRows = append(invalidRows, i+1)
			}
			continue
		}
		words = append(words, Word{Word: word, Meaning: meaning})
	}

	if len(invalidRows) > 0 {
		return words, &ParsingError{InvalidRows: invalidRows}
	}

	return words, nil
}

func wordFromRow(row []string) (word, meaning string, ok bool) {
	if len(row) < 2 {
		return "", "", false
	}
	word = strings.TrimSpace(row[0])
	meaning = strings.TrimSpace(row[1])
	return word, meaning, word != "" && meaning != ""
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
