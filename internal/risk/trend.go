package risk

import (
	"time"

	"github.com/swasthya/go-outbreak-alerts/internal/models"
)

// MonthKey formats t as the "YYYY-MM" bucket key used throughout the
// aggregation pipeline.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// BuildTrend produces exactly monthsBack points, oldest to newest. Month i
// (counting back from now) is now minus 30*i days, the same fixed 30-day
// month approximation the aggregation window uses. Months absent from
// counts are filled with zero so chart consumers never see gaps.
func BuildTrend(now time.Time, monthsBack int, counts map[string]int) []models.TrendPoint {
	if monthsBack <= 0 {
		return nil
	}
	trend := make([]models.TrendPoint, 0, monthsBack)
	for i := monthsBack - 1; i >= 0; i-- {
		key := MonthKey(now.AddDate(0, 0, -30*i))
		trend = append(trend, models.TrendPoint{Month: key, Count: counts[key]})
	}
	return trend
}
