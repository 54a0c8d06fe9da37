package batch

import (
	"time"

	"github.com/good-yellow-bee/syncstat/internal/aggregate"
	"github.com/good-yellow-bee/syncstat/internal/zone"
)

// Report contains the complete analysis of a dataset.
type Report struct {
	DatasetID   string                     `json:"dataset_id"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Duration    time.Duration              `json:"duration_ms"`
	Files       []*FileStats               `json:"files"`
	Summary     aggregate.Summary          `json:"summary"`
	Users       []aggregate.UserStat       `json:"users"`
	Servers     []aggregate.ServerStat     `json:"servers"`
	Models      []aggregate.ModelStat      `json:"models"`
	ModelTypes  []aggregate.TypeStat       `json:"model_types"`
	Projects    []aggregate.ProjectStat    `json:"projects"`
	Cleanup     []aggregate.CleanupStat    `json:"cleanup"`
	Activity    []aggregate.DailyPoint     `json:"activity,omitempty"`
	Options     aggregate.SelectionOptions `json:"options"`
	DateRange   *DateRange                 `json:"date_range,omitempty"`
	Errors      []string                   `json:"errors,omitempty"`
}

// DateRange tracks the date span of the dataset and the applied filter.
type DateRange struct {
	Earliest *time.Time `json:"earliest,omitempty"`
	Latest   *time.Time `json:"latest,omitempty"`
	Filtered bool       `json:"filtered"`
	From     time.Time  `json:"from,omitempty"`
	To       time.Time  `json:"to,omitempty"`
}

// ServersInZone counts servers whose overall zone is z.
func (r *Report) ServersInZone(z zone.Zone) int {
	return aggregate.ZoneCounts(r.Servers)[z]
}

// ValidDatePercentage returns the share of dataset records with a valid date.
func (r *Report) ValidDatePercentage() float64 {
	if r.Summary.TotalRecords == 0 {
		return 0
	}
	return float64(r.Summary.ValidDates) / float64(r.Summary.TotalRecords) * 100
}
