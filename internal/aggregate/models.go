package aggregate

import (
	"sort"
	"time"

	"github.com/good-yellow-bee/syncstat/internal/modelname"
	"github.com/good-yellow-bee/syncstat/internal/models"
)

// ModelStat is the activity and growth of one model on one server.
type ModelStat struct {
	Server       string            `json:"server"`
	Model        string            `json:"model"`
	Project      string            `json:"project"`
	Section      modelname.Section `json:"section"`
	SectionLabel string            `json:"section_label"`
	SyncCount    int               `json:"sync_count"`
	Users        int               `json:"users"`
	SupportBytes int64             `json:"support_bytes"`
	SupportMB    float64           `json:"support_mb"`
	FirstSize    int64             `json:"first_size"`
	LastSize     int64             `json:"last_size"`
	Growth       int64             `json:"growth"`
	FirstSync    *time.Time        `json:"first_sync,omitempty"`
	LastSync     *time.Time        `json:"last_sync,omitempty"`
	Daily        []DailyPoint      `json:"daily"`
}

// Key returns the (server, model) key of the stat.
func (m *ModelStat) Key() ModelKey {
	return ModelKey{Server: m.Server, Model: m.Model}
}

type modelAcc struct {
	syncs        int
	users        StringSet
	supportBytes int64
	first        earliest
	last         latest
	daily        dailySeries
}

// Models groups records by (server, model). Records missing either field are
// skipped. The result is ordered by sync count descending, then server and
// model name.
func Models(records []models.Record) []ModelStat {
	accs := make(map[ModelKey]*modelAcc)

	for i := range records {
		r := &records[i]
		if r.Server == "" || r.Model == "" {
			continue
		}
		key := ModelKey{Server: r.Server, Model: r.Model}
		acc, ok := accs[key]
		if !ok {
			acc = &modelAcc{users: NewStringSet(), daily: make(dailySeries)}
			accs[key] = acc
		}
		acc.syncs++
		acc.supportBytes += r.SupportSize
		acc.users.Add(r.User)
		acc.first.observe(r.Date, r.ModelSize)
		acc.last.observe(r.Date, r.ModelSize)
		acc.daily.add(r)
	}

	out := make([]ModelStat, 0, len(accs))
	for key, acc := range accs {
		section := modelname.SectionOther
		project := ""
		if p := modelname.Parse(key.Model); p != nil {
			section = p.Section
			project = p.Project
		}
		out = append(out, ModelStat{
			Server:       key.Server,
			Model:        key.Model,
			Project:      project,
			Section:      section,
			SectionLabel: section.Label(),
			SyncCount:    acc.syncs,
			Users:        acc.users.Len(),
			SupportBytes: acc.supportBytes,
			SupportMB:    models.MB(acc.supportBytes),
			FirstSize:    acc.first.value,
			LastSize:     acc.last.value,
			Growth:       acc.last.value - acc.first.value,
			FirstSync:    timePtr(acc.first.date),
			LastSync:     timePtr(acc.last.date),
			Daily:        acc.daily.points(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SyncCount != out[j].SyncCount {
			return out[i].SyncCount > out[j].SyncCount
		}
		if out[i].Server != out[j].Server {
			return out[i].Server < out[j].Server
		}
		return out[i].Model < out[j].Model
	})
	return out
}

// TypeStat is the share of one section in the model population.
type TypeStat struct {
	Section      modelname.Section `json:"section"`
	Label        string            `json:"label"`
	Models       int               `json:"models"`
	Syncs        int               `json:"syncs"`
	SupportBytes int64             `json:"support_bytes"`
	SupportMB    float64           `json:"support_mb"`
}

// ModelTypes distributes model stats by section. The result is ordered by
// syncs descending, then label.
func ModelTypes(stats []ModelStat) []TypeStat {
	bySection := make(map[modelname.Section]*TypeStat)

	for i := range stats {
		m := &stats[i]
		t, ok := bySection[m.Section]
		if !ok {
			t = &TypeStat{Section: m.Section, Label: m.Section.Label()}
			bySection[m.Section] = t
		}
		t.Models++
		t.Syncs += m.SyncCount
		t.SupportBytes += m.SupportBytes
	}

	out := make([]TypeStat, 0, len(bySection))
	for _, t := range bySection {
		t.SupportMB = models.MB(t.SupportBytes)
		out = append(out, *t)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Syncs != out[j].Syncs {
			return out[i].Syncs > out[j].Syncs
		}
		return out[i].Label < out[j].Label
	})
	return out
}
