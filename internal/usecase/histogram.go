package usecase

import "github.com/yourusername/price-monitor/internal/domain/entity"

// DefaultHistogramBins bins of the gap distribution chart
const DefaultHistogramBins = 20

// HistogramBin [Lower, Upper) except the last bin, which includes Upper
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram equal width bins over the defined gaps of rows; nil when no gap
// is defined
func Histogram(rows []entity.JoinedRecord, bins int) []HistogramBin {
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	var gaps []float64
	for _, r := range rows {
		if r.PercentGap.Valid {
			gaps = append(gaps, r.PercentGap.Decimal.InexactFloat64())
		}
	}
	if len(gaps) == 0 {
		return nil
	}

	lo, hi := gaps[0], gaps[0]
	for _, g := range gaps[1:] {
		if g < lo {
			lo = g
		}
		if g > hi {
			hi = g
		}
	}
	if lo == hi {
		return []HistogramBin{{Lower: lo, Upper: hi, Count: len(gaps)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]HistogramBin, bins)
	for i := range out {
		out[i].Lower = lo + float64(i)*width
		out[i].Upper = lo + float64(i+1)*width
	}
	out[bins-1].Upper = hi

	for _, g := range gaps {
		idx := int((g - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}
	return out
}
