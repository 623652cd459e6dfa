package entity

import "time"

// Session files and pending edits uploaded by one chat
type Session struct {
	ChatID     int64
	Inventory  *SourceFile
	References []SourceFile
	Edits      []Edit
	Filter     Filter
	Sort       SortOrder
	UpdatedAt  time.Time
}

// Ready both required inputs are present
func (s Session) Ready() bool {
	return s.Inventory != nil && len(s.References) > 0
}
