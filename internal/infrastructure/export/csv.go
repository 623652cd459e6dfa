package export

import (
	"bytes"
	"context"
	"encoding/csv"

	"github.com/rotisserie/eris"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/domain/repository"
)

type csvExporter struct{}

// NewCSVExporter UTF-8 CSV, comma separated, two decimal prices
func NewCSVExporter() repository.Exporter {
	return csvExporter{}
}

func (csvExporter) Extension() string   { return "csv" }
func (csvExporter) ContentType() string { return "text/csv; charset=utf-8" }

// Export rows; output only depends on rows, so repeated exports are byte-identical
func (csvExporter) Export(ctx context.Context, rows []entity.JoinedRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(entity.DisplayColumns); err != nil {
		return nil, eris.Wrap(err, "failed to write csv header")
	}
	for i, r := range rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := w.Write(r.DisplayValues()); err != nil {
			return nil, eris.Wrapf(err, "failed to write csv row %d", i+1)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "failed to flush csv")
	}
	return buf.Bytes(), nil
}
