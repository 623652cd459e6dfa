package parser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/yourusername/price-monitor/internal/domain/entity"
	"golang.org/x/text/unicode/norm"
)

// MappingResult column binding of one table against a schema
type MappingResult struct {
	Schema  string
	Columns map[Field]int
	Missing []*entity.MissingColumnError // required fields without a column
	Absent  []Field                      // optional fields without a column
}

// Index column bound to the field
func (m MappingResult) Index(f Field) (int, bool) {
	idx, ok := m.Columns[f]
	return idx, ok
}

// Has field bound to a column
func (m MappingResult) Has(f Field) bool {
	_, ok := m.Columns[f]
	return ok
}

// OK every required field is bound
func (m MappingResult) OK() bool {
	return len(m.Missing) == 0
}

// Err all missing required columns joined, nil when OK
func (m MappingResult) Err() error {
	if m.OK() {
		return nil
	}
	errs := make([]error, 0, len(m.Missing))
	for _, e := range m.Missing {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// MapColumns binds each schema field to the first alias present in header.
// Every missing required field is reported, not only the first one.
func MapColumns(source string, header []string, schema Schema) MappingResult {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	result := MappingResult{
		Schema:  schema.Name,
		Columns: make(map[Field]int, len(schema.Fields)),
	}
	for _, col := range schema.Fields {
		bound := false
		for _, alias := range col.Aliases {
			if idx, ok := positions[NormalizeHeader(alias)]; ok {
				result.Columns[col.Field] = idx
				bound = true
				break
			}
		}
		if bound {
			continue
		}
		if col.Required {
			result.Missing = append(result.Missing, &entity.MissingColumnError{
				Source:   source,
				Field:    string(col.Field),
				Expected: col.Aliases,
			})
		} else {
			result.Absent = append(result.Absent, col.Field)
		}
	}
	return result
}

// NormalizeHeader trimmed, NFC, single spaced, lower case
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = norm.NFC.String(h)
	h = strings.Join(strings.Fields(h), " ")
	return strings.ToLower(h)
}

// RenameDuplicateColumns keeps repeated headers addressable: a, a_1, a_2
func RenameDuplicateColumns(header []string) []string {
	seen := make(map[string]int, len(header))
	result := make([]string, 0, len(header))
	for _, h := range header {
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			result = append(result, h+"_"+strconv.Itoa(n+1))
			continue
		}
		seen[h] = 0
		result = append(result, h)
	}
	return result
}
