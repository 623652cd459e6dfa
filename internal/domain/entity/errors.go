package entity

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

var (
	ErrMissingColumn      = eris.New("missing required column")
	ErrMalformedRow       = eris.New("malformed row")
	ErrUnparsablePrice    = eris.New("unparsable price")
	ErrEmptyJoinResult    = eris.New("join produced no rows")
	ErrUndefinedGap       = eris.New("percent gap undefined")
	ErrUnresolvedRegion   = eris.New("region could not be resolved")
	ErrAwaitingInput      = eris.New("awaiting input")
	ErrUnsupportedFormat  = eris.New("unsupported file format")
	ErrEmptyFile          = eris.New("file is empty")
	ErrInvalidEdit        = eris.New("invalid edit")
	ErrUnsupportedExport  = eris.New("unsupported export format")
	ErrNoHeader           = eris.New("no header row found")
	ErrUnsupportedCharset = eris.New("unsupported text encoding")
)

// MissingColumnError a required canonical field has no matching source column
type MissingColumnError struct {
	Source   string
	Field    string
	Expected []string
}

func (e *MissingColumnError) Error() string {
	msg := fmt.Sprintf("missing required column %q (expected one of: %s)", e.Field, strings.Join(e.Expected, ", "))
	if e.Source != "" {
		return e.Source + ": " + msg
	}
	return msg
}

// Unwrap errors.Is(err, ErrMissingColumn) holds
func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}
