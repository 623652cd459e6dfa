package entity

import (
	"fmt"
	"strings"
)

// FileFormat container format of an uploaded file
type FileFormat int

const (
	FormatAuto FileFormat = iota
	FormatDelimited
	FormatSpreadsheet
)

func (f FileFormat) String() string {
	switch f {
	case FormatDelimited:
		return "delimited"
	case FormatSpreadsheet:
		return "spreadsheet"
	default:
		return "auto"
	}
}

// ParseFileFormat accepts "auto", "csv", "tsv", "txt", "delimited", "xlsx", "excel", "spreadsheet"
func ParseFileFormat(s string) (FileFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "csv", "tsv", "txt", "delimited", "text":
		return FormatDelimited, nil
	case "xlsx", "excel", "spreadsheet":
		return FormatSpreadsheet, nil
	}
	return FormatAuto, fmt.Errorf("unknown file format %q", s)
}

// SourceFile uploaded file plus the options needed to read it
type SourceFile struct {
	Name      string
	Data      []byte
	Site      string // region for reference files without a site column
	Format    FileFormat
	Delimiter rune // 0 = sniff
	Encoding  string
}

// RawRecord one source row, values aligned with RawTable.Header
type RawRecord struct {
	Line   int
	Values []string
}

// SkippedRow a row the loader could not use
type SkippedRow struct {
	Line   int
	Reason string
}

// RawTable file contents before column mapping
type RawTable struct {
	Source    string
	Format    FileFormat
	Delimiter rune
	Encoding  string
	Header    []string
	Records   []RawRecord
	Skipped   []SkippedRow
}

// Value cell at column index, "" when out of range
func (t *RawTable) Value(rec RawRecord, col int) string {
	if col < 0 || col >= len(rec.Values) {
		return ""
	}
	return rec.Values[col]
}

// Get cell by exact header name
func (t *RawTable) Get(rec RawRecord, column string) (string, bool) {
	for i, h := range t.Header {
		if h == column {
			return t.Value(rec, i), true
		}
	}
	return "", false
}
