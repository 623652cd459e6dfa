package parser

import (
	"context"
	"log"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/rotisserie/eris"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/domain/repository"
)

type tableLoader struct{}

// NewTableLoader CSV/TSV/semicolon text and Excel loader
func NewTableLoader() repository.TableLoader {
	return &tableLoader{}
}

// Load file bytes into a raw table
func (l *tableLoader) Load(ctx context.Context, file entity.SourceFile) (*entity.RawTable, error) {
	if len(file.Data) == 0 {
		return nil, eris.Wrapf(entity.ErrEmptyFile, "%s", file.Name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := file.Format
	if format == entity.FormatAuto {
		detected, err := DetectFormat(file.Data)
		if err != nil {
			return nil, eris.Wrapf(err, "%s", file.Name)
		}
		format = detected
	}

	var (
		table *entity.RawTable
		err   error
	)
	switch format {
	case entity.FormatSpreadsheet:
		table, err = l.loadSpreadsheet(ctx, file)
	default:
		table, err = l.loadDelimited(ctx, file)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("📋 %s: %s, %d columns, %d rows, %d skipped",
		file.Name, table.Format, len(table.Header), len(table.Records), len(table.Skipped))
	for _, s := range table.Skipped {
		log.Printf("⚠️ %s line %d skipped: %s", file.Name, s.Line, s.Reason)
	}
	return table, nil
}

// DetectFormat sniffs the container: xlsx (or any zip) is a spreadsheet,
// unknown bytes are treated as delimited text
func DetectFormat(data []byte) (entity.FileFormat, error) {
	kind, _ := filetype.Match(data)
	switch kind {
	case filetype.Unknown:
		return entity.FormatDelimited, nil
	case matchers.TypeXlsx, matchers.TypeZip:
		return entity.FormatSpreadsheet, nil
	case matchers.TypeXls:
		return entity.FormatAuto, eris.Wrap(entity.ErrUnsupportedFormat, "legacy .xls workbooks are not supported, save as .xlsx")
	}
	return entity.FormatAuto, eris.Wrapf(entity.ErrUnsupportedFormat, "detected %s (%s)", kind.Extension, kind.MIME.Value)
}

// isEmptyRow every cell is blank
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cleanHeader trims names and renames duplicates
func cleanHeader(row []string) []string {
	header := make([]string, len(row))
	for i, h := range row {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return RenameDuplicateColumns(header)
}
