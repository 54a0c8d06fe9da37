package aggregate

import (
	"sort"
	"time"

	"github.com/good-yellow-bee/syncstat/internal/modelname"
	"github.com/good-yellow-bee/syncstat/internal/models"
)

// ProjectSort selects the ordering of the top level of the project hierarchy.
type ProjectSort int

const (
	// ProjectSortSyncs orders projects by total syncs.
	ProjectSortSyncs ProjectSort = iota
	// ProjectSortUsers orders projects by distinct users.
	ProjectSortUsers
)

// ParseProjectSort converts "syncs" or "users" to a ProjectSort.
func ParseProjectSort(s string) (ProjectSort, bool) {
	switch s {
	case "", "syncs":
		return ProjectSortSyncs, true
	case "users":
		return ProjectSortUsers, true
	default:
		return ProjectSortSyncs, false
	}
}

// ProjectStat is the top level of the project hierarchy.
type ProjectStat struct {
	Name       string        `json:"name"`
	TotalSyncs int           `json:"total_syncs"`
	Users      int           `json:"users"`
	Sections   []SectionStat `json:"sections"`
}

// SectionStat groups the models of one discipline within a project.
type SectionStat struct {
	Section    modelname.Section  `json:"section"`
	Label      string             `json:"label"`
	TotalSyncs int                `json:"total_syncs"`
	Users      int                `json:"users"`
	Models     []ProjectModelStat `json:"models"`
}

// ProjectModelStat is the leaf of the project hierarchy.
type ProjectModelStat struct {
	Name      string       `json:"name"`
	Server    string       `json:"server,omitempty"`
	SyncCount int          `json:"sync_count"`
	Users     int          `json:"users"`
	FirstSize int64        `json:"first_size"`
	LastSize  int64        `json:"last_size"`
	Growth    int64        `json:"growth"`
	FirstSync *time.Time   `json:"first_sync,omitempty"`
	LastSync  *time.Time   `json:"last_sync,omitempty"`
	Daily     []DailyPoint `json:"daily"`
}

// Section looks up a section of the project.
func (p *ProjectStat) Section(s modelname.Section) (*SectionStat, bool) {
	for i := range p.Sections {
		if p.Sections[i].Section == s {
			return &p.Sections[i], true
		}
	}
	return nil, false
}

// FindProject looks up a project by name.
func FindProject(projects []ProjectStat, name string) (*ProjectStat, bool) {
	for i := range projects {
		if projects[i].Name == name {
			return &projects[i], true
		}
	}
	return nil, false
}

type projectAcc struct {
	syncs    int
	users    StringSet
	sections map[modelname.Section]*sectionAcc
}

type sectionAcc struct {
	syncs  int
	users  StringSet
	models map[string]*projectModelAcc
}

type projectModelAcc struct {
	server string
	syncs  int
	users  StringSet
	first  earliest
	last   latest
	daily  dailySeries
}

// Projects builds the Project -> Section -> Model hierarchy. Records without
// a model name are skipped. Every level counts each record once and tracks
// distinct users. Sections and models are ordered by syncs descending, then
// name; projects follow by.
func Projects(records []models.Record, by ProjectSort) []ProjectStat {
	accs := make(map[string]*projectAcc)

	for i := range records {
		r := &records[i]
		parsed := modelname.Parse(r.Model)
		if parsed == nil {
			continue
		}

		p, ok := accs[parsed.Project]
		if !ok {
			p = &projectAcc{users: NewStringSet(), sections: make(map[modelname.Section]*sectionAcc)}
			accs[parsed.Project] = p
		}
		p.syncs++
		p.users.Add(r.User)

		s, ok := p.sections[parsed.Section]
		if !ok {
			s = &sectionAcc{users: NewStringSet(), models: make(map[string]*projectModelAcc)}
			p.sections[parsed.Section] = s
		}
		s.syncs++
		s.users.Add(r.User)

		m, ok := s.models[r.Model]
		if !ok {
			m = &projectModelAcc{server: r.Server, users: NewStringSet(), daily: make(dailySeries)}
			s.models[r.Model] = m
		}
		m.syncs++
		m.users.Add(r.User)
		m.first.observe(r.Date, r.ModelSize)
		m.last.observe(r.Date, r.ModelSize)
		m.daily.add(r)
	}

	out := make([]ProjectStat, 0, len(accs))
	for name, p := range accs {
		out = append(out, ProjectStat{
			Name:       name,
			TotalSyncs: p.syncs,
			Users:      p.users.Len(),
			Sections:   materializeSections(p.sections),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if by == ProjectSortUsers && out[i].Users != out[j].Users {
			return out[i].Users > out[j].Users
		}
		if out[i].TotalSyncs != out[j].TotalSyncs {
			return out[i].TotalSyncs > out[j].TotalSyncs
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func materializeSections(accs map[modelname.Section]*sectionAcc) []SectionStat {
	out := make([]SectionStat, 0, len(accs))
	for section, s := range accs {
		out = append(out, SectionStat{
			Section:    section,
			Label:      section.Label(),
			TotalSyncs: s.syncs,
			Users:      s.users.Len(),
			Models:     materializeProjectModels(s.models),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSyncs != out[j].TotalSyncs {
			return out[i].TotalSyncs > out[j].TotalSyncs
		}
		return out[i].Section < out[j].Section
	})
	return out
}

func materializeProjectModels(accs map[string]*projectModelAcc) []ProjectModelStat {
	out := make([]ProjectModelStat, 0, len(accs))
	for name, m := range accs {
		out = append(out, ProjectModelStat{
			Name:      name,
			Server:    m.server,
			SyncCount: m.syncs,
			Users:     m.users.Len(),
			FirstSize: m.first.value,
			LastSize:  m.last.value,
			Growth:    m.last.value - m.first.value,
			FirstSync: timePtr(m.first.date),
			LastSync:  timePtr(m.last.date),
			Daily:     m.daily.points(),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SyncCount != out[j].SyncCount {
			return out[i].SyncCount > out[j].SyncCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}
