package storage

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/price-monitor/internal/domain/entity"
	"github.com/yourusername/price-monitor/internal/domain/repository"
	"github.com/yourusername/price-monitor/internal/infrastructure/parser"
)

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[int64]*entity.Session
	maxEdits int
}

// NewMemorySessionRepository in-memory session store; at most maxEdits pending
// edits are kept per chat (0 = unlimited), the oldest are dropped first
func NewMemorySessionRepository(maxEdits int) repository.SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[int64]*entity.Session),
		maxEdits: maxEdits,
	}
}

// session must be called with the write lock held
func (m *memorySessionRepository) session(chatID int64) *entity.Session {
	s, ok := m.sessions[chatID]
	if !ok {
		s = &entity.Session{ChatID: chatID}
		m.sessions[chatID] = s
	}
	s.UpdatedAt = time.Now()
	return s
}

// Get session copy
func (m *memorySessionRepository) Get(ctx context.Context, chatID int64) (entity.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[chatID]
	if !ok {
		return entity.Session{ChatID: chatID}, nil
	}
	out := *s
	if s.Inventory != nil {
		inv := *s.Inventory
		out.Inventory = &inv
	}
	out.References = append([]entity.SourceFile(nil), s.References...)
	out.Edits = append([]entity.Edit(nil), s.Edits...)
	return out, nil
}

// SetInventory replace the inventory file
func (m *memorySessionRepository) SetInventory(ctx context.Context, chatID int64, file entity.SourceFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session(chatID).Inventory = &file
	return nil
}

// AddReference one reference file per site; a file without site replaces the
// previous file without site
func (m *memorySessionRepository) AddReference(ctx context.Context, chatID int64, file entity.SourceFile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(chatID)
	site := parser.NormalizeSite(file.Site)
	for i, ref := range s.References {
		if parser.NormalizeSite(ref.Site) == site {
			s.References[i] = file
			return nil
		}
	}
	s.References = append(s.References, file)
	return nil
}

// AddEdit append a pending edit
func (m *memorySessionRepository) AddEdit(ctx context.Context, chatID int64, edit entity.Edit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(chatID)
	s.Edits = append(s.Edits, edit)
	if m.maxEdits > 0 && len(s.Edits) > m.maxEdits {
		s.Edits = s.Edits[len(s.Edits)-m.maxEdits:]
	}
	return nil
}

// PopEdit nil when there is nothing to undo
func (m *memorySessionRepository) PopEdit(ctx context.Context, chatID int64) (*entity.Edit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[chatID]
	if !ok || len(s.Edits) == 0 {
		return nil, nil
	}
	last := s.Edits[len(s.Edits)-1]
	s.Edits = s.Edits[:len(s.Edits)-1]
	s.UpdatedAt = time.Now()
	return &last, nil
}

// SetView store filter and sort order
func (m *memorySessionRepository) SetView(ctx context.Context, chatID int64, filter entity.Filter, order entity.SortOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(chatID)
	s.Filter = filter
	s.Sort = order
	return nil
}

// Reset drop everything for the chat
func (m *memorySessionRepository) Reset(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, chatID)
	return nil
}
