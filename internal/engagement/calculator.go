package engagement

import "math"

// Metrics holds the derived engagement values for one post.
type Metrics struct {
	Count int     `json:"engagement_count"`
	Rate  float64 `json:"engagement_rate"`
}

// RateDecimals is the precision engagement rates are stored with.
const RateDecimals = 4

// Compute returns engagement count (reactions + forwards + replies) and the
// view-normalized rate as a percentage. The rate is 0 when views <= 0.
func Compute(views, forwards, replies, reactions int) Metrics {
	count := reactions + forwards + replies
	if views <= 0 {
		return Metrics{Count: count}
	}
	return Metrics{
		Count: count,
		Rate:  Round(float64(count)/float64(views)*100, RateDecimals),
	}
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
