package usecase

import "github.com/yourusername/price-monitor/internal/domain/entity"

type joinPair[L, R any] struct {
	Left  L
	Right R
}

// joinPairs inner join: one pair per (left, right) with equal keys. Output is
// in left order, then right order within a key. Rows whose key is not usable
// never match, so an empty key cannot pair with another empty key.
func joinPairs[L, R any](left []L, right []R, leftKey func(L) (string, bool), rightKey func(R) (string, bool)) []joinPair[L, R] {
	index := make(map[string][]int, len(right))
	for i, r := range right {
		if key, ok := rightKey(r); ok {
			index[key] = append(index[key], i)
		}
	}

	var pairs []joinPair[L, R]
	for _, l := range left {
		key, ok := leftKey(l)
		if !ok {
			continue
		}
		for _, i := range index[key] {
			pairs = append(pairs, joinPair[L, R]{Left: l, Right: right[i]})
		}
	}
	return pairs
}

// Join inventory with reference rows on identifier, or identifier+site
func Join(products []entity.Product, refs []entity.Reference, mode entity.JoinMode) []entity.JoinedRecord {
	pairs := joinPairs(products, refs,
		func(p entity.Product) (string, bool) { return entity.JoinKey(mode, p.Identifier, p.Site) },
		func(r entity.Reference) (string, bool) { return entity.JoinKey(mode, r.Identifier, r.Site) },
	)

	records := make([]entity.JoinedRecord, 0, len(pairs))
	for _, pr := range pairs {
		p, r := pr.Left, pr.Right
		site := p.Site
		if site == "" {
			site = r.Site
		}
		name := p.Name
		if name == "" {
			name = r.Title
		}
		records = append(records, entity.JoinedRecord{
			Identifier:      p.Identifier,
			Site:            site,
			StatusFlag:      p.StatusFlag,
			Name:            name,
			SKU:             p.SKU,
			Quantity:        p.Quantity,
			ListedPrice:     p.ListedPrice,
			ReferencePrice:  r.ReferencePrice,
			LowestPrice:     r.LowestPrice,
			Avg90Price:      r.Avg90Price,
			HighestPrice:    r.HighestPrice,
			ProductRow:      p.Row,
			ReferenceSource: r.Source,
			ReferenceRow:    r.Row,
		})
	}
	return records
}
