package parser

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/price-monitor/internal/domain/entity"
)

// cell bound field value of a record, trimmed
func cell(t *entity.RawTable, m MappingResult, rec entity.RawRecord, f Field) string {
	idx, ok := m.Index(f)
	if !ok {
		return ""
	}
	return strings.TrimSpace(t.Value(rec, idx))
}

// priceCell parses a bound price field; a non-empty value that does not parse
// becomes a missing price plus an unparsable_price issue
func priceCell(t *entity.RawTable, m MappingResult, rec entity.RawRecord, f Field, issues *[]entity.Issue) decimal.NullDecimal {
	raw := cell(t, m, rec, f)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	price, err := ParsePrice(raw)
	if err != nil {
		*issues = append(*issues, entity.Issue{
			Kind:   entity.IssueUnparsablePrice,
			Source: t.Source,
			Row:    rec.Line,
			Field:  string(f),
			Detail: err.Error(),
		})
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(price)
}

// CanonicalProducts inventory rows with a mapped identifier. The mapping must
// be OK; rows without identifier are dropped with an issue.
func CanonicalProducts(t *entity.RawTable, m MappingResult) ([]entity.Product, []entity.Issue) {
	products := make([]entity.Product, 0, len(t.Records))
	var issues []entity.Issue

	for _, rec := range t.Records {
		id := cell(t, m, rec, FieldIdentifier)
		if id == "" {
			issues = append(issues, entity.Issue{
				Kind:   entity.IssueMissingIdentifier,
				Source: t.Source,
				Row:    rec.Line,
				Field:  string(FieldIdentifier),
			})
			continue
		}

		p := entity.Product{
			Identifier: id,
			Site:       NormalizeSite(cell(t, m, rec, FieldSite)),
			StatusFlag: cell(t, m, rec, FieldStatusFlag),
			Name:       cell(t, m, rec, FieldName),
			SKU:        cell(t, m, rec, FieldSKU),
			Source:     t.Source,
			Row:        rec.Line,
		}
		if raw := cell(t, m, rec, FieldQuantity); raw != "" {
			p.Quantity = NormalizeQuantity(raw)
			if p.Quantity == nil {
				issues = append(issues, entity.Issue{
					Kind:   entity.IssueInvalidQuantity,
					Source: t.Source,
					Row:    rec.Line,
					Field:  string(FieldQuantity),
					Detail: raw,
				})
			}
		}
		p.ListedPrice = priceCell(t, m, rec, FieldListedPrice, &issues)
		products = append(products, p)
	}
	return products, issues
}

// CanonicalReferences Keepa rows. site overrides the site column for every row
// (one file per region); fallback only fills rows whose site is still empty.
func CanonicalReferences(t *entity.RawTable, m MappingResult, site, fallback string) ([]entity.Reference, []entity.Issue) {
	refs := make([]entity.Reference, 0, len(t.Records))
	var issues []entity.Issue
	site = NormalizeSite(site)
	fallback = NormalizeSite(fallback)

	for _, rec := range t.Records {
		id := cell(t, m, rec, FieldIdentifier)
		if id == "" {
			issues = append(issues, entity.Issue{
				Kind:   entity.IssueMissingIdentifier,
				Source: t.Source,
				Row:    rec.Line,
				Field:  string(FieldIdentifier),
			})
			continue
		}

		r := entity.Reference{
			Identifier: id,
			Site:       site,
			Title:      cell(t, m, rec, FieldTitle),
			Source:     t.Source,
			Row:        rec.Line,
		}
		if r.Site == "" {
			r.Site = NormalizeSite(cell(t, m, rec, FieldSite))
		}
		if r.Site == "" {
			r.Site = fallback
		}
		r.ReferencePrice = priceCell(t, m, rec, FieldReferencePrice, &issues)
		r.LowestPrice = priceCell(t, m, rec, FieldLowestPrice, &issues)
		r.Avg90Price = priceCell(t, m, rec, FieldAvg90Price, &issues)
		r.HighestPrice = priceCell(t, m, rec, FieldHighestPrice, &issues)
		refs = append(refs, r)
	}
	return refs, issues
}

// NormalizeSite "amazon.it" -> "IT", "Amazon.co.uk" -> "UK", " de " -> "DE"
func NormalizeSite(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
