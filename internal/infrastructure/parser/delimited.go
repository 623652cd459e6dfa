package parser

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/jfyne/csvd"
	"github.com/rotisserie/eris"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// fallbackDelimiters checked when the sniffer finds a single column
var fallbackDelimiters = []rune{';', '\t', '|', ','}

// loadDelimited comma, tab or semicolon separated text
func (l *tableLoader) loadDelimited(ctx context.Context, file entity.SourceFile) (*entity.RawTable, error) {
	text, encName, strict, err := decodeText(file.Data, file.Encoding)
	if err != nil {
		return nil, eris.Wrapf(err, "%s", file.Name)
	}

	delim := file.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(text)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	table := &entity.RawTable{
		Source:    file.Name,
		Format:    entity.FormatDelimited,
		Delimiter: delim,
		Encoding:  encName,
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			if table.Header == nil {
				return nil, eris.Wrapf(err, "%s: unreadable header", file.Name)
			}
			table.Skipped = append(table.Skipped, entity.SkippedRow{Line: line, Reason: err.Error()})
			continue
		}
		line, _ := r.FieldPos(0)

		if table.Header == nil {
			if isEmptyRow(rec) {
				continue
			}
			table.Header = cleanHeader(rec)
			continue
		}
		if isEmptyRow(rec) {
			continue
		}
		if len(rec) != len(table.Header) {
			table.Skipped = append(table.Skipped, entity.SkippedRow{
				Line:   line,
				Reason: fmt.Sprintf("%s: expected %d fields, got %d", entity.ErrMalformedRow, len(table.Header), len(rec)),
			})
			continue
		}
		if strict && !validUTF8(rec) {
			table.Skipped = append(table.Skipped, entity.SkippedRow{
				Line:   line,
				Reason: fmt.Sprintf("%s: invalid %s text", entity.ErrMalformedRow, encName),
			})
			continue
		}
		table.Records = append(table.Records, entity.RawRecord{Line: line, Values: rec})
	}

	if table.Header == nil {
		return nil, eris.Wrapf(entity.ErrNoHeader, "%s", file.Name)
	}
	return table, nil
}

// decodeText converts the declared charset to UTF-8. Without a declaration
// valid UTF-8 is kept and anything else is read as Windows-1252, the charset
// of semicolon separated Ready Pro exports. strict reports whether rows must
// be checked for invalid UTF-8 individually.
func decodeText(data []byte, charset string) ([]byte, string, bool, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var dec *encoding.Decoder
	name := strings.ToLower(strings.TrimSpace(charset))
	switch name {
	case "", "auto":
		if utf8.Valid(data) {
			return data, "utf-8", false, nil
		}
		log.Printf("⚠️ text is not valid UTF-8, reading as windows-1252")
		name = "windows-1252"
		dec = charmap.Windows1252.NewDecoder()
	case "utf-8", "utf8":
		return data, "utf-8", true, nil
	case "windows-1252", "cp1252":
		name = "windows-1252"
		dec = charmap.Windows1252.NewDecoder()
	case "iso-8859-1", "latin1", "latin-1":
		name = "iso-8859-1"
		dec = charmap.ISO8859_1.NewDecoder()
	case "iso-8859-15", "latin9":
		name = "iso-8859-15"
		dec = charmap.ISO8859_15.NewDecoder()
	default:
		return nil, "", false, eris.Wrapf(entity.ErrUnsupportedCharset, "%q", charset)
	}

	out, err := dec.Bytes(data)
	if err != nil {
		return nil, "", false, eris.Wrapf(err, "decode %s", name)
	}
	return out, name, false, nil
}

// sniffDelimiter lets csvd guess from the header; when it sees a single
// column the most frequent fallback delimiter of the first line wins
func sniffDelimiter(text []byte) rune {
	r := csvd.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if header, err := r.Read(); err == nil && len(header) > 1 {
		return r.Comma
	}

	first := string(text)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	best, bestCount := ',', 0
	for _, d := range fallbackDelimiters {
		if n := strings.Count(first, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func validUTF8(rec []string) bool {
	for _, v := range rec {
		if !utf8.ValidString(v) {
			return false
		}
	}
	return true
}
