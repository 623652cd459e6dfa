package usecase

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// PercentGap (reference - listed) / listed * 100; undefined when either price
// is missing or the listed price is zero
func PercentGap(listed, reference decimal.NullDecimal) decimal.NullDecimal {
	if !listed.Valid || !reference.Valid || listed.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	gap := reference.Decimal.Sub(listed.Decimal).Mul(hundred).Div(listed.Decimal)
	return decimal.NewNullDecimal(gap)
}

// Recompute gap and status of one record
func Recompute(r *entity.JoinedRecord, t entity.Thresholds) {
	r.PercentGap = PercentGap(r.ListedPrice, r.ReferencePrice)
	r.Status = t.Classify(r.PercentGap)
}

// Classify recompute every record in place; returns an undefined_gap issue
// per record whose gap could not be computed
func Classify(records []entity.JoinedRecord, t entity.Thresholds) []entity.Issue {
	var issues []entity.Issue
	for i := range records {
		Recompute(&records[i], t)
		if !records[i].PercentGap.Valid {
			issues = append(issues, undefinedGapIssue(records[i]))
		}
	}
	return issues
}

func undefinedGapIssue(r entity.JoinedRecord) entity.Issue {
	detail := "reference price missing"
	switch {
	case !r.ListedPrice.Valid:
		detail = "listed price missing"
	case r.ListedPrice.Decimal.IsZero():
		detail = "listed price is zero"
	}
	return entity.Issue{
		Kind:   entity.IssueUndefinedGap,
		Row:    r.ProductRow,
		Field:  "percent_gap",
		Detail: r.Identifier + ": " + detail,
	}
}
