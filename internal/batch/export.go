package batch

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/good-yellow-bee/syncstat/internal/models"
)

// ExportFormat defines the output format for exports.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ParseExportFormat parses a string to ExportFormat.
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch s {
	case "json":
		return ExportJSON, true
	case "csv":
		return ExportCSV, true
	default:
		return "", false
	}
}

// Exporter handles report and record export to various formats.
type Exporter struct {
	format ExportFormat
	writer io.Writer
}

// NewExporter creates an exporter for the given format.
func NewExporter(format ExportFormat, w io.Writer) *Exporter {
	return &Exporter{
		format: format,
		writer: w,
	}
}

// ExportReport writes the analysis report in the configured format.
func (e *Exporter) ExportReport(report *Report) error {
	switch e.format {
	case ExportCSV:
		return e.exportReportCSV(report)
	default:
		return e.exportJSON(report)
	}
}

// ExportRecords writes normalized records in the configured format.
func (e *Exporter) ExportRecords(records []models.Record) error {
	switch e.format {
	case ExportCSV:
		return e.exportRecordsCSV(records)
	default:
		return e.exportJSON(records)
	}
}

func (e *Exporter) exportJSON(v any) error {
	encoder := json.NewEncoder(e.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func itoa(n int) string { return strconv.Itoa(n) }

func i64(n int64) string { return strconv.FormatInt(n, 10) }

func f2(f float64) string { return strconv.FormatFloat(f, 'f', 2, 64) }

func (e *Exporter) exportReportCSV(report *Report) error {
	w := csv.NewWriter(e.writer)
	defer w.Flush()

	s := report.Summary
	w.Write([]string{"# Summary"})
	w.Write([]string{"total_records", itoa(s.TotalRecords)})
	w.Write([]string{"valid_dates", itoa(s.ValidDates)})
	w.Write([]string{"invalid_dates", itoa(s.InvalidDates)})
	w.Write([]string{"filtered_records", itoa(s.FilteredRecords)})
	w.Write([]string{"unique_users", itoa(s.UniqueUsers)})
	w.Write([]string{"unique_servers", itoa(s.UniqueServers)})
	w.Write([]string{"unique_models", itoa(s.UniqueModels)})
	w.Write([]string{"support_gb", f2(s.SupportGB)})
	w.Write([]string{"duration_ms", i64(report.Duration.Milliseconds())})
	w.Write([]string{})

	w.Write([]string{"# Users"})
	w.Write([]string{"user", "sync_count", "unique_days", "total_bytes", "total_mb", "avg_mb_per_day"})
	for _, u := range report.Users {
		w.Write([]string{u.User, itoa(u.SyncCount), itoa(u.UniqueDays), i64(u.TotalBytes), f2(u.TotalMB), f2(u.AvgMBPerDay)})
	}
	w.Write([]string{})

	w.Write([]string{"# Servers"})
	w.Write([]string{"server", "sync_count", "users", "models", "total_gb", "avg_model_mb",
		"users_zone", "models_zone", "avg_size_zone", "total_size_zone", "overall_zone"})
	for _, srv := range report.Servers {
		z := srv.Zones
		w.Write([]string{srv.Server, itoa(srv.SyncCount), itoa(srv.Users), itoa(srv.Models), f2(srv.TotalGB), f2(srv.AvgModelMB),
			z.Users.String(), z.Models.String(), z.AvgSize.String(), z.TotalSize.String(), z.Overall.String()})
	}
	w.Write([]string{})

	w.Write([]string{"# Models"})
	w.Write([]string{"server", "model", "section", "sync_count", "users", "support_mb", "last_size", "growth"})
	for _, m := range report.Models {
		w.Write([]string{m.Server, m.Model, m.Section.String(), itoa(m.SyncCount), itoa(m.Users), f2(m.SupportMB), i64(m.LastSize), i64(m.Growth)})
	}
	w.Write([]string{})

	w.Write([]string{"# Model Types"})
	w.Write([]string{"section", "label", "models", "syncs", "support_mb"})
	for _, t := range report.ModelTypes {
		w.Write([]string{t.Section.String(), t.Label, itoa(t.Models), itoa(t.Syncs), f2(t.SupportMB)})
	}
	w.Write([]string{})

	w.Write([]string{"# Projects"})
	w.Write([]string{"project", "section", "model", "syncs", "users"})
	for _, p := range report.Projects {
		w.Write([]string{p.Name, "", "", itoa(p.TotalSyncs), itoa(p.Users)})
		for _, sec := range p.Sections {
			w.Write([]string{p.Name, sec.Section.String(), "", itoa(sec.TotalSyncs), itoa(sec.Users)})
			for _, m := range sec.Models {
				w.Write([]string{p.Name, sec.Section.String(), m.Name, itoa(m.SyncCount), itoa(m.Users)})
			}
		}
	}
	w.Write([]string{})

	w.Write([]string{"# Cleanup"})
	w.Write([]string{"server", "model", "max_support_mb", "status"})
	for _, c := range report.Cleanup {
		w.Write([]string{c.Server, c.Model, f2(c.MaxSupportMB), c.Status.String()})
	}

	if len(report.Activity) > 0 {
		w.Write([]string{})
		w.Write([]string{"# Activity"})
		w.Write([]string{"day", "syncs", "support_mb"})
		for _, p := range report.Activity {
			w.Write([]string{p.Day, itoa(p.Syncs), f2(p.SupportMB)})
		}
	}

	w.Flush()
	return w.Error()
}

func (e *Exporter) exportRecordsCSV(records []models.Record) error {
	w := csv.NewWriter(e.writer)
	defer w.Flush()

	w.Write([]string{"day", "server", "model", "user", "support_size", "model_size", "source", "line"})

	for i := range records {
		r := &records[i]
		w.Write([]string{
			r.DayKey(),
			r.Server,
			r.Model,
			r.User,
			i64(r.SupportSize),
			i64(r.ModelSize),
			r.Source,
			i64(r.Line),
		})
	}

	w.Flush()
	return w.Error()
}
