package repository

import (
	"context"

	"github.com/yourusername/price-monitor/internal/domain/entity"
)

// SessionRepository uploaded files and pending edits per chat
type SessionRepository interface {
	// Get session copy; an empty session when the chat has none
	Get(ctx context.Context, chatID int64) (entity.Session, error)

	// SetInventory replace the inventory file
	SetInventory(ctx context.Context, chatID int64, file entity.SourceFile) error

	// AddReference add a reference file, replacing one with the same site
	AddReference(ctx context.Context, chatID int64, file entity.SourceFile) error

	// AddEdit append a pending edit
	AddEdit(ctx context.Context, chatID int64, edit entity.Edit) error

	// PopEdit remove and return the last pending edit
	PopEdit(ctx context.Context, chatID int64) (*entity.Edit, error)

	// SetView store filter and sort order
	SetView(ctx context.Context, chatID int64, filter entity.Filter, order entity.SortOrder) error

	// Reset drop everything for the chat
	Reset(ctx context.Context, chatID int64) error
}
