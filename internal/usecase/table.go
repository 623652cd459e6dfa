package usecase

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
)

// Table classified join result that filters, sorts and takes bulk edits
type Table struct {
	mode       entity.JoinMode
	thresholds entity.Thresholds
	rows       []entity.JoinedRecord
}

// NewTable copies rows
func NewTable(rows []entity.JoinedRecord, mode entity.JoinMode, thresholds entity.Thresholds) *Table {
	return &Table{
		mode:       mode,
		thresholds: thresholds,
		rows:       append([]entity.JoinedRecord(nil), rows...),
	}
}

// Len number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows copy of every row in join order
func (t *Table) Rows() []entity.JoinedRecord {
	return append([]entity.JoinedRecord(nil), t.rows...)
}

// Select rows matching the filter, in table order
func (t *Table) Select(f entity.Filter) []entity.JoinedRecord {
	var out []entity.JoinedRecord
	for _, r := range t.rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// View filtered and sorted copy
func (t *Table) View(f entity.Filter, order entity.SortOrder) []entity.JoinedRecord {
	view := t.Select(f)
	SortRecords(view, order)
	return view
}

// SortRecords stable sort by percent gap; undefined gaps always go last
func SortRecords(rows []entity.JoinedRecord, order entity.SortOrder) {
	if order == entity.SortNone {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].PercentGap, rows[j].PercentGap
		if !a.Valid || !b.Valid {
			return a.Valid && !b.Valid
		}
		if order == entity.SortGapDesc {
			return a.Decimal.GreaterThan(b.Decimal)
		}
		return a.Decimal.LessThan(b.Decimal)
	})
}

// ApplyEdit runs a bulk edit over the rows selected by e.Filter: the new listed
// price is set, gap and status are recomputed on the edited copies, and the
// copies are merged back by key. Returns the number of rows changed.
func (t *Table) ApplyEdit(e entity.Edit) (int, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	var edited []entity.JoinedRecord
	for _, r := range t.Select(e.Filter) {
		price, ok := e.NewPrice(r)
		if !ok {
			continue
		}
		r.ListedPrice = decimal.NewNullDecimal(price)
		Recompute(&r, t.thresholds)
		edited = append(edited, r)
	}
	return t.Merge(edited), nil
}

// Merge overwrites the rows whose merge key (identifier, plus site when
// joining by site, plus the source rows of the pair) matches an edited row.
// Rows without a match are left untouched. Returns the number overwritten.
func (t *Table) Merge(edited []entity.JoinedRecord) int {
	if len(edited) == 0 {
		return 0
	}
	byKey := make(map[string]entity.JoinedRecord, len(edited))
	for _, r := range edited {
		if key, ok := r.MergeKey(t.mode); ok {
			byKey[key] = r
		}
	}

	merged := 0
	for i, r := range t.rows {
		key, ok := r.MergeKey(t.mode)
		if !ok {
			continue
		}
		if upd, found := byKey[key]; found {
			t.rows[i] = upd
			merged++
		}
	}
	return merged
}

// PriceHistory rows carrying at least one history price
func PriceHistory(rows []entity.JoinedRecord) []entity.JoinedRecord {
	var out []entity.JoinedRecord
	for _, r := range rows {
		if r.LowestPrice.Valid || r.Avg90Price.Valid || r.HighestPrice.Valid {
			out = append(out, r)
		}
	}
	return out
}
