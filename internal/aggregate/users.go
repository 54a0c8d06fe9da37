package aggregate

import (
	"sort"

	"github.com/good-yellow-bee/syncstat/internal/models"
)

// UserStat is the activity of one user.
type UserStat struct {
	User           string  `json:"user"`
	SyncCount      int     `json:"sync_count"`
	UniqueDays     int     `json:"unique_days"`
	TotalBytes     int64   `json:"total_bytes"`
	TotalMB        float64 `json:"total_mb"`
	AvgBytesPerDay float64 `json:"avg_bytes_per_day"`
	AvgMBPerDay    float64 `json:"avg_mb_per_day"`
}

type userAcc struct {
	syncs int
	days  StringSet
	bytes int64
}

// Users groups records by user. Records without a user are skipped.
// The result is ordered by total bytes descending, then user name.
func Users(records []models.Record) []UserStat {
	accs := make(map[string]*userAcc)

	for i := range records {
		r := &records[i]
		if r.User == "" {
			continue
		}
		acc, ok := accs[r.User]
		if !ok {
			acc = &userAcc{days: NewStringSet()}
			accs[r.User] = acc
		}
		acc.syncs++
		acc.bytes += r.SupportSize
		acc.days.Add(r.DayKey())
	}

	out := make([]UserStat, 0, len(accs))
	for user, acc := range accs {
		days := acc.days.Len()
		avg := safeDiv(float64(acc.bytes), float64(days))
		out = append(out, UserStat{
			User:           user,
			SyncCount:      acc.syncs,
			UniqueDays:     days,
			TotalBytes:     acc.bytes,
			TotalMB:        models.MB(acc.bytes),
			AvgBytesPerDay: avg,
			AvgMBPerDay:    avg / (1024 * 1024),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalBytes != out[j].TotalBytes {
			return out[i].TotalBytes > out[j].TotalBytes
		}
		return out[i].User < out[j].User
	})
	return out
}
