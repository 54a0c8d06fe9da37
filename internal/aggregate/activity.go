package aggregate

import "github.com/good-yellow-bee/syncstat/internal/models"

// Activity returns the per-day syncs and transferred bytes of one model on
// one server, oldest day first. Undated records are not counted.
func Activity(records []models.Record, server, model string) []DailyPoint {
	series := make(dailySeries)
	for i := range records {
		r := &records[i]
		if r.Server != server || r.Model != model {
			continue
		}
		series.add(r)
	}
	return series.points()
}
