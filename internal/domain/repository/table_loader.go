package repository

import (
	"context"

	"github.com/yourusername/price-monitor/internal/domain/entity"
)

// TableLoader reads uploaded files (CSV, TSV, Excel) into raw tables
type TableLoader interface {
	// Load file bytes into a raw table; malformed rows are skipped, not fatal
	Load(ctx context.Context, file entity.SourceFile) (*entity.RawTable, error)
}
