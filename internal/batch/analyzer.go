package batch

import (
	"fmt"
	"time"

	"github.com/good-yellow-bee/syncstat/internal/aggregate"
	"github.com/good-yellow-bee/syncstat/internal/models"
)

// AnalyzeOptions configures which records a report covers.
type AnalyzeOptions struct {
	From        time.Time  // Filter: records on or after this time
	To          time.Time  // Filter: records on or before this time
	Selection   *Selection // Server, model and expression selection
	ProjectSort aggregate.ProjectSort

	// ActivityServer and ActivityModel select the pair whose daily series is
	// included in the report. Both must be set.
	ActivityServer string
	ActivityModel  string
}

// Filter applies the date range and the selection, in that order, and
// returns the remaining records with the number of failed evaluations.
func (o AnalyzeOptions) Filter(records []models.Record) ([]models.Record, int) {
	filtered := NewDateFilter(o.From, o.To).Filter(records)
	return o.Selection.Apply(filtered)
}

// Analyze runs every view over the filtered records of a dataset.
func Analyze(ds *Dataset, opts AnalyzeOptions) *Report {
	startTime := time.Now()
	if ds == nil {
		ds = NewDataset(nil)
	}

	filtered, failed := opts.Filter(ds.Records)

	modelStats := aggregate.Models(filtered)
	report := &Report{
		DatasetID:  ds.ID,
		Files:      ds.Files,
		Summary:    aggregate.Summarize(ds.Records, filtered),
		Users:      aggregate.Users(filtered),
		Servers:    aggregate.Servers(filtered),
		Models:     modelStats,
		ModelTypes: aggregate.ModelTypes(modelStats),
		Projects:   aggregate.Projects(filtered, opts.ProjectSort),
		Cleanup:    aggregate.Cleanup(filtered),
		Options:    aggregate.Options(filtered),
		Errors:     append([]string(nil), ds.Errors...),
	}

	if opts.ActivityServer != "" && opts.ActivityModel != "" {
		report.Activity = aggregate.Activity(filtered, opts.ActivityServer, opts.ActivityModel)
	}

	if failed > 0 {
		report.Errors = append(report.Errors, fmt.Sprintf("where expression failed on %d records", failed))
	}

	report.DateRange = &DateRange{
		Earliest: report.Summary.Earliest,
		Latest:   report.Summary.Latest,
	}
	if !opts.From.IsZero() || !opts.To.IsZero() {
		report.DateRange.Filtered = true
		report.DateRange.From = opts.From
		report.DateRange.To = opts.To
	}

	report.GeneratedAt = time.Now()
	report.Duration = report.GeneratedAt.Sub(startTime)
	return report
}
