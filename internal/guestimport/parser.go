package guestimport

// parser.go reads an uploaded CSV or Excel file into an ImportPreview.
//
// CSV handling deals with the messy reality of exported guest lists:
// UTF-8 BOMs, stray invalid bytes, quoted fields containing commas and
// embedded newlines, and uneven column counts. Excel files are read from
// the first worksheet with row 1 as the header. The parser either returns
// a complete preview or a FormatError; it never partially populates one.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// MaxFileSize is the maximum accepted upload size (20MB). Guest lists are
// small; anything bigger is almost certainly the wrong file.
var MaxFileSize int64 = 20 * 1024 * 1024

// ParsePreview parses file data into an ImportPreview. The format is taken
// from the file extension: ".csv" or ".xlsx".
func ParsePreview(fileName string, data []byte) (*ImportPreview, error) {
	if int64(len(data)) > MaxFileSize {
		return nil, &FormatError{
			FileName: fileName,
			Reason:   fmt.Sprintf("file exceeds %dMB limit", MaxFileSize/(1024*1024)),
		}
	}

	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		records, err = parseCSV(sanitizeUTF8(stripBOM(data)))
		if err != nil {
			return nil, &FormatError{FileName: fileName, Reason: "malformed CSV", Err: err}
		}
	case ".xlsx":
		records, err = parseXLSX(data)
		if err != nil {
			return nil, &FormatError{FileName: fileName, Reason: "malformed Excel workbook", Err: err}
		}
	default:
		return nil, &FormatError{FileName: fileName, Reason: "unsupported format (use .csv or .xlsx)"}
	}

	if len(records) == 0 {
		return nil, &FormatError{FileName: fileName, Reason: "empty file"}
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = cleanCell(h)
	}
	if isEmptyRow(headers) {
		return nil, &FormatError{FileName: fileName, Reason: "missing header row"}
	}

	var rows [][]string
	for _, row := range records[1:] {
		if isEmptyRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, &FormatError{FileName: fileName, Reason: "no data rows after header"}
	}

	return &ImportPreview{
		FileName:  fileName,
		Headers:   headers,
		Rows:      rows,
		TotalRows: len(rows),
	}, nil
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// parseXLSX reads the first worksheet of an .xlsx workbook.
func parseXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// stripBOM removes a leading UTF-8 byte order mark. Excel and several
// contact-export tools prepend one to CSV files.
func stripBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// the csv reader never chokes on Latin-1 or Windows-1252 leftovers.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}
	return buf.Bytes()
}

// cleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, the Excel formula prefix (="..."), and stray
// surrounding quotes.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.Trim(s, `"'`)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
