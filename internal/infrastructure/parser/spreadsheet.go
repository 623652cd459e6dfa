package parser

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/price-monitor/internal/domain/entity"
)

// loadSpreadsheet first sheet of an xlsx workbook
func (l *tableLoader) loadSpreadsheet(ctx context.Context, file entity.SourceFile) (*entity.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(file.Data))
	if err != nil {
		return nil, eris.Wrapf(err, "%s: failed to open excel", file.Name)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, eris.Wrapf(entity.ErrNoHeader, "%s: excel file has no sheets", file.Name)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, eris.Wrapf(err, "%s: failed to get rows", file.Name)
	}

	table := &entity.RawTable{
		Source: file.Name,
		Format: entity.FormatSpreadsheet,
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := i + 1
		if len(row) == 0 || isEmptyRow(row) {
			continue
		}
		if table.Header == nil {
			table.Header = cleanHeader(row)
			continue
		}

		// excelize drops trailing empty cells, so short rows are padded;
		// only non-empty cells past the header make a row malformed
		if len(row) > len(table.Header) && !isEmptyRow(row[len(table.Header):]) {
			table.Skipped = append(table.Skipped, entity.SkippedRow{
				Line:   line,
				Reason: fmt.Sprintf("%s: expected %d fields, got %d", entity.ErrMalformedRow, len(table.Header), len(row)),
			})
			continue
		}

		values := make([]string, len(table.Header))
		for j := range values {
			if j < len(row) {
				values[j] = tidyNumericCell(row[j])
			}
		}
		table.Records = append(table.Records, entity.RawRecord{Line: line, Values: values})
	}

	if table.Header == nil {
		return nil, eris.Wrapf(entity.ErrNoHeader, "%s: excel file is empty", file.Name)
	}
	return table, nil
}

// tidyNumericCell raw float cells like "33.799999999999997" become "33.8"
func tidyNumericCell(v string) string {
	if !strings.Contains(v, ".") || len(v) < 12 {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
