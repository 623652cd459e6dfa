package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/domain/repository"
	"github.com/yourusername/price-monitor/internal/infrastructure/parser"
)

// SessionUseCase per chat state on top of the pipeline: uploaded files,
// current view and the pending edit list
type SessionUseCase interface {
	// UploadInventory checks the file can be read and mapped, then stores it
	UploadInventory(ctx context.Context, chatID int64, file entity.SourceFile) (*entity.SourceStats, error)

	// UploadReference same for a reference file; one file per site is kept
	UploadReference(ctx context.Context, chatID int64, file entity.SourceFile) (*entity.SourceStats, error)

	// Session copy of the stored state
	Session(ctx context.Context, chatID int64) (entity.Session, error)

	// Report runs the pipeline over the session inputs
	Report(ctx context.Context, chatID int64) (*entity.Report, error)

	// SetView replaces filter and sort order
	SetView(ctx context.Context, chatID int64, filter entity.Filter, order entity.SortOrder) error

	// AddEdit queues a bulk edit over the current filter and reruns the pipeline
	AddEdit(ctx context.Context, chatID int64, kind entity.EditKind, amount decimal.Decimal) (*entity.Report, error)

	// Undo drops the last pending edit; nil when there was none
	Undo(ctx context.Context, chatID int64) (*entity.Edit, error)

	// Export runs the pipeline and serializes the view
	Export(ctx context.Context, chatID int64, format string) ([]byte, repository.Exporter, error)

	// Reset forgets files, edits and view
	Reset(ctx context.Context, chatID int64) error
}

type sessionUseCase struct {
	sessions          repository.SessionRepository
	loader            repository.TableLoader
	reports           ReportUseCase
	inventoryEncoding string
}

// NewSessionUseCase session usecase over the store and the pipeline.
// inventoryEncoding must match ReportOptions.InventoryEncoding so uploads are
// checked with the charset the pipeline will use.
func NewSessionUseCase(
	sessions repository.SessionRepository,
	loader repository.TableLoader,
	reports ReportUseCase,
	inventoryEncoding string,
) SessionUseCase {
	return &sessionUseCase{
		sessions:          sessions,
		loader:            loader,
		reports:           reports,
		inventoryEncoding: inventoryEncoding,
	}
}

func (u *sessionUseCase) inspect(ctx context.Context, file entity.SourceFile, schema parser.Schema, role string) (*entity.SourceStats, error) {
	table, err := u.loader.Load(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	mapping := parser.MapColumns(file.Name, table.Header, schema)
	if err := mapping.Err(); err != nil {
		return nil, err
	}
	stats := &entity.SourceStats{
		Source:   file.Name,
		Role:     role,
		Format:   table.Format.String(),
		Encoding: table.Encoding,
		Site:     parser.NormalizeSite(file.Site),
		Rows:     len(table.Records),
		Skipped:  len(table.Skipped),
	}
	if table.Delimiter != 0 {
		stats.Delimiter = string(table.Delimiter)
	}
	return stats, nil
}

// UploadInventory checks the file can be read and mapped, then stores it
func (u *sessionUseCase) UploadInventory(ctx context.Context, chatID int64, file entity.SourceFile) (*entity.SourceStats, error) {
	checked := file
	if checked.Encoding == "" {
		checked.Encoding = u.inventoryEncoding
	}
	stats, err := u.inspect(ctx, checked, parser.InventorySchema, "inventory")
	if err != nil {
		return nil, err
	}
	if err := u.sessions.SetInventory(ctx, chatID, file); err != nil {
		return nil, fmt.Errorf("failed to store inventory: %w", err)
	}
	return stats, nil
}

// UploadReference checks the file can be read and mapped, then stores it
func (u *sessionUseCase) UploadReference(ctx context.Context, chatID int64, file entity.SourceFile) (*entity.SourceStats, error) {
	stats, err := u.inspect(ctx, file, parser.ReferenceSchema, "reference")
	if err != nil {
		return nil, err
	}
	if err := u.sessions.AddReference(ctx, chatID, file); err != nil {
		return nil, fmt.Errorf("failed to store reference: %w", err)
	}
	return stats, nil
}

// Session copy of the stored state
func (u *sessionUseCase) Session(ctx context.Context, chatID int64) (entity.Session, error) {
	return u.sessions.Get(ctx, chatID)
}

// Report runs the pipeline over the session inputs
func (u *sessionUseCase) Report(ctx context.Context, chatID int64) (*entity.Report, error) {
	s, err := u.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return u.reports.Run(ctx, ReportInputs{
		Inventory:  s.Inventory,
		References: s.References,
		Edits:      s.Edits,
		Filter:     s.Filter,
		Sort:       s.Sort,
	})
}

// SetView replaces filter and sort order
func (u *sessionUseCase) SetView(ctx context.Context, chatID int64, filter entity.Filter, order entity.SortOrder) error {
	if err := u.sessions.SetView(ctx, chatID, filter, order); err != nil {
		return fmt.Errorf("failed to store view: %w", err)
	}
	return nil
}

// AddEdit queues a bulk edit over the current filter and reruns the pipeline
func (u *sessionUseCase) AddEdit(ctx context.Context, chatID int64, kind entity.EditKind, amount decimal.Decimal) (*entity.Report, error) {
	s, err := u.sessions.Get(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !s.Ready() {
		return nil, entity.ErrAwaitingInput
	}

	edit := entity.Edit{
		ID:        uuid.New().String(),
		Kind:      kind,
		Amount:    amount,
		Filter:    s.Filter,
		CreatedAt: time.Now(),
	}
	if err := edit.Validate(); err != nil {
		return nil, err
	}
	if err := u.sessions.AddEdit(ctx, chatID, edit); err != nil {
		return nil, fmt.Errorf("failed to store edit: %w", err)
	}
	return u.Report(ctx, chatID)
}

// Undo drops the last pending edit
func (u *sessionUseCase) Undo(ctx context.Context, chatID int64) (*entity.Edit, error) {
	edit, err := u.sessions.PopEdit(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to undo edit: %w", err)
	}
	return edit, nil
}

// Export runs the pipeline and serializes the view
func (u *sessionUseCase) Export(ctx context.Context, chatID int64, format string) ([]byte, repository.Exporter, error) {
	report, err := u.Report(ctx, chatID)
	if err != nil {
		return nil, nil, err
	}
	return u.reports.Export(ctx, report, format)
}

// Reset forgets files, edits and view
func (u *sessionUseCase) Reset(ctx context.Context, chatID int64) error {
	return u.sessions.Reset(ctx, chatID)
}
