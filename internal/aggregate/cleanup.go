package aggregate

import (
	"sort"
	"time"

	"github.com/good-yellow-bee/syncstat/internal/models"
	"github.com/good-yellow-bee/syncstat/internal/zone"
)

// Support volume thresholds for a single sync of one model.
const (
	CleanupWarningMB  = 150
	CleanupCriticalMB = 200
)

// CleanupStat is a model whose largest single transfer needs attention.
type CleanupStat struct {
	Server         string     `json:"server"`
	Model          string     `json:"model"`
	SyncCount      int        `json:"sync_count"`
	Users          int        `json:"users"`
	MaxSupportSize int64      `json:"max_support_size"`
	MaxSupportMB   float64    `json:"max_support_mb"`
	LastSync       *time.Time `json:"last_sync,omitempty"`
	Status         zone.Zone  `json:"status"`
}

type cleanupAcc struct {
	syncs    int
	users    StringSet
	max      int64
	lastSync time.Time
}

// CleanupStatus classifies the largest single transfer of a model.
func CleanupStatus(maxSupportBytes int64) zone.Zone {
	mb := models.MB(maxSupportBytes)
	switch {
	case mb >= CleanupCriticalMB:
		return zone.Critical
	case mb >= CleanupWarningMB:
		return zone.Warning
	default:
		return zone.Good
	}
}

// Cleanup lists models on servers whose largest SupportSize reaches the
// warning threshold. Records missing server or model are skipped. The result
// is ordered by size descending, then server and model name.
func Cleanup(records []models.Record) []CleanupStat {
	accs := make(map[ModelKey]*cleanupAcc)

	for i := range records {
		r := &records[i]
		if r.Server == "" || r.Model == "" {
			continue
		}
		key := ModelKey{Server: r.Server, Model: r.Model}
		acc, ok := accs[key]
		if !ok {
			acc = &cleanupAcc{users: NewStringSet()}
			accs[key] = acc
		}
		acc.syncs++
		acc.users.Add(r.User)
		if r.SupportSize > acc.max {
			acc.max = r.SupportSize
		}
		if r.HasDate() && r.Date.After(acc.lastSync) {
			acc.lastSync = r.Date
		}
	}

	var out []CleanupStat
	for key, acc := range accs {
		status := CleanupStatus(acc.max)
		if status == zone.Good {
			continue
		}
		out = append(out, CleanupStat{
			Server:         key.Server,
			Model:          key.Model,
			SyncCount:      acc.syncs,
			Users:          acc.users.Len(),
			MaxSupportSize: acc.max,
			MaxSupportMB:   models.MB(acc.max),
			LastSync:       timePtr(acc.lastSync),
			Status:         status,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MaxSupportSize != out[j].MaxSupportSize {
			return out[i].MaxSupportSize > out[j].MaxSupportSize
		}
		if out[i].Server != out[j].Server {
			return out[i].Server < out[j].Server
		}
		return out[i].Model < out[j].Model
	})
	if out == nil {
		out = []CleanupStat{}
	}
	return out
}
