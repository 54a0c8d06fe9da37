package aggregate

import (
	"sort"
	"time"

	"github.com/good-yellow-bee/syncstat/internal/models"
)

// Summary describes a loaded record set and the filtered subset shown.
type Summary struct {
	TotalRecords    int            `json:"total_records"`
	ValidDates      int            `json:"valid_dates"`
	InvalidDates    int            `json:"invalid_dates"`
	FilteredRecords int            `json:"filtered_records"`
	UniqueUsers     int            `json:"unique_users"`
	UniqueServers   int            `json:"unique_servers"`
	UniqueModels    int            `json:"unique_models"`
	SupportBytes    int64          `json:"support_bytes"`
	SupportGB       float64        `json:"support_gb"`
	ServerVolumes   []ServerVolume `json:"server_volumes"`
	Earliest        *time.Time     `json:"earliest,omitempty"`
	Latest          *time.Time     `json:"latest,omitempty"`
}

// ServerVolume is the transferred volume of one server.
type ServerVolume struct {
	Server string  `json:"server"`
	Bytes  int64   `json:"bytes"`
	GB     float64 `json:"gb"`
}

// Summarize counts date validity and the date span over all records and
// distinct users, servers, models and transferred volume over filtered.
func Summarize(all, filtered []models.Record) Summary {
	var s Summary
	s.TotalRecords = len(all)

	var earliest, latest time.Time
	for i := range all {
		r := &all[i]
		if !r.HasDate() {
			continue
		}
		s.ValidDates++
		if earliest.IsZero() || r.Date.Before(earliest) {
			earliest = r.Date
		}
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	s.InvalidDates = s.TotalRecords - s.ValidDates
	s.Earliest = timePtr(earliest)
	s.Latest = timePtr(latest)

	users, servers, modelNames := NewStringSet(), NewStringSet(), NewStringSet()
	volumes := make(map[string]int64)
	for i := range filtered {
		r := &filtered[i]
		users.Add(r.User)
		servers.Add(r.Server)
		modelNames.Add(r.Model)
		if r.Server != "" {
			volumes[r.Server] += r.SupportSize
		}
	}
	s.FilteredRecords = len(filtered)
	s.UniqueUsers = users.Len()
	s.UniqueServers = servers.Len()
	s.UniqueModels = modelNames.Len()

	s.ServerVolumes = make([]ServerVolume, 0, len(volumes))
	for server, bytes := range volumes {
		s.SupportBytes += bytes
		s.ServerVolumes = append(s.ServerVolumes, ServerVolume{Server: server, Bytes: bytes, GB: models.GB(bytes)})
	}
	s.SupportGB = models.GB(s.SupportBytes)

	sort.Slice(s.ServerVolumes, func(i, j int) bool {
		if s.ServerVolumes[i].Bytes != s.ServerVolumes[j].Bytes {
			return s.ServerVolumes[i].Bytes > s.ServerVolumes[j].Bytes
		}
		return s.ServerVolumes[i].Server < s.ServerVolumes[j].Server
	})
	return s
}

// SelectionOptions lists the servers and per-server models a caller can
// select from.
type SelectionOptions struct {
	Servers []string            `json:"servers"`
	Models  map[string][]string `json:"models"`
}

// Options collects sorted server names and the models seen on each server.
// Records missing server or model are skipped.
func Options(records []models.Record) SelectionOptions {
	byServer := make(map[string]StringSet)
	for i := range records {
		r := &records[i]
		if r.Server == "" || r.Model == "" {
			continue
		}
		set, ok := byServer[r.Server]
		if !ok {
			set = NewStringSet()
			byServer[r.Server] = set
		}
		set.Add(r.Model)
	}

	opts := SelectionOptions{
		Servers: make([]string, 0, len(byServer)),
		Models:  make(map[string][]string, len(byServer)),
	}
	for server, set := range byServer {
		opts.Servers = append(opts.Servers, server)
		opts.Models[server] = set.Sorted()
	}
	sort.Strings(opts.Servers)
	return opts
}
