package aggregate

import (
	"sort"
	"time"

	"github.com/good-yellow-bee/syncstat/internal/models"
	"github.com/good-yellow-bee/syncstat/internal/zone"
)

// ServerStat is the load and health of one server.
type ServerStat struct {
	Server          string     `json:"server"`
	SyncCount       int        `json:"sync_count"`
	Users           int        `json:"users"`
	Models          int        `json:"models"`
	SupportBytes    int64      `json:"support_bytes"`
	LastActivity    *time.Time `json:"last_activity,omitempty"`
	TotalModelBytes int64      `json:"total_model_bytes"`
	TotalMB         float64    `json:"total_mb"`
	TotalGB         float64    `json:"total_gb"`
	AvgModelMB      float64    `json:"avg_model_mb"`
	Zones           zone.Zones `json:"zones"`
	Recommendations []string   `json:"recommendations"`
}

// Values returns the metrics the server zones are classified from.
func (s *ServerStat) Values() zone.Values {
	return zone.Values{
		Users:       s.Users,
		Models:      s.Models,
		AvgSizeMB:   s.AvgModelMB,
		TotalSizeGB: s.TotalGB,
	}
}

type serverAcc struct {
	syncs        int
	users        StringSet
	models       StringSet
	supportBytes int64
	lastActivity time.Time
}

// ModelKey identifies a model on a server.
type ModelKey struct {
	Server string
	Model  string
}

// Servers groups records by server. Records without a server are skipped.
//
// The total model volume of a server is the sum over its models of the
// ModelSize reported by each model's most recent dated sync. The result is
// ordered by overall zone severity descending, then server name.
func Servers(records []models.Record) []ServerStat {
	accs := make(map[string]*serverAcc)
	sizes := make(map[ModelKey]*latest)

	for i := range records {
		r := &records[i]
		if r.Server == "" {
			continue
		}

		acc, ok := accs[r.Server]
		if !ok {
			acc = &serverAcc{users: NewStringSet(), models: NewStringSet()}
			accs[r.Server] = acc
		}
		acc.syncs++
		acc.supportBytes += r.SupportSize
		acc.users.Add(r.User)
		acc.models.Add(r.Model)
		if r.HasDate() && r.Date.After(acc.lastActivity) {
			acc.lastActivity = r.Date
		}

		if r.Model == "" {
			continue
		}
		key := ModelKey{Server: r.Server, Model: r.Model}
		l, ok := sizes[key]
		if !ok {
			l = &latest{}
			sizes[key] = l
		}
		l.observe(r.Date, r.ModelSize)
	}

	totals := make(map[string]int64, len(accs))
	for key, l := range sizes {
		totals[key.Server] += l.value
	}

	out := make([]ServerStat, 0, len(accs))
	for server, acc := range accs {
		s := ServerStat{
			Server:          server,
			SyncCount:       acc.syncs,
			Users:           acc.users.Len(),
			Models:          acc.models.Len(),
			SupportBytes:    acc.supportBytes,
			LastActivity:    timePtr(acc.lastActivity),
			TotalModelBytes: totals[server],
		}
		s.TotalMB = models.MB(s.TotalModelBytes)
		s.TotalGB = models.GB(s.TotalModelBytes)
		s.AvgModelMB = safeDiv(s.TotalMB, float64(s.Models))
		s.Zones = zone.ClassifyAll(s.Values())
		s.Recommendations = zone.Recommendations(s.Zones.Overall, s.Values())
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Zones.Overall != out[j].Zones.Overall {
			return out[i].Zones.Overall > out[j].Zones.Overall
		}
		return out[i].Server < out[j].Server
	})
	return out
}

// ZoneCounts returns how many servers fall into each overall zone.
func ZoneCounts(servers []ServerStat) map[zone.Zone]int {
	counts := map[zone.Zone]int{zone.Good: 0, zone.Warning: 0, zone.Critical: 0}
	for i := range servers {
		counts[servers[i].Zones.Overall]++
	}
	return counts
}
