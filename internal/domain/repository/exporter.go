package repository

import (
	"context"

	"github.com/yourusername/price-monitor/internal/domain/entity"
)

// Exporter report rows serializer
type Exporter interface {
	// Export rows in entity.DisplayColumns order
	Export(ctx context.Context, rows []entity.JoinedRecord) ([]byte, error)

	// Extension file extension without the dot
	Extension() string

	// ContentType MIME type of the output
	ContentType() string
}
