package export

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/domain/repository"
)

// SheetName sheet holding the exported report
const SheetName = "Report"

type xlsxExporter struct{}

// NewXLSXExporter single sheet workbook with numeric price cells
func NewXLSXExporter() repository.Exporter {
	return xlsxExporter{}
}

func (xlsxExporter) Extension() string { return "xlsx" }
func (xlsxExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (xlsxExporter) Export(ctx context.Context, rows []entity.JoinedRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, eris.Wrap(err, "failed to rename sheet")
	}

	header := make([]any, len(entity.DisplayColumns))
	for i, c := range entity.DisplayColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, eris.Wrap(err, "failed to write header")
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, eris.Wrap(err, "failed to create header style")
	}
	last, err := excelize.CoordinatesToCellName(len(entity.DisplayColumns), 1)
	if err != nil {
		return nil, eris.Wrap(err, "failed to resolve header range")
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return nil, eris.Wrap(err, "failed to style header")
	}

	for i, r := range rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, eris.Wrapf(err, "row %d", i+1)
		}
		values := r.DisplayCells()
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, eris.Wrapf(err, "failed to write row %d", i+1)
		}
	}

	// Nome prodotto is the wide column
	_ = f.SetColWidth(SheetName, "B", "B", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, eris.Wrap(err, "failed to write workbook")
	}
	return buf.Bytes(), nil
}
