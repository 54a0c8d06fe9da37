package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/syncstat/internal/aggregate"
	"github.com/good-yellow-bee/syncstat/internal/batch"
	"github.com/good-yellow-bee/syncstat/internal/zone"
)

var (
	analyzeFrom     string
	analyzeTo       string
	analyzeServer   string
	analyzeModel    string
	analyzeWhere    string
	analyzeSort     string
	analyzeViews    []string
	analyzeLimit    int
	analyzeExport   string
	analyzeExportTo string
)

// reportViews lists the sections of the table report in print order.
var reportViews = []string{"summary", "users", "servers", "models", "types", "projects", "cleanup", "activity"}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file...]",
	Short: "Analyze synchronization activity logs",
	Long: `Analyze one or more tab-separated activity logs.

Accepts files and glob patterns; "-" reads the log from stdin. Records are
filtered by date range first, then by server, model and --where expression.

The --where expression is evaluated per record. Available fields: server,
model, user, date, day, dated, support_size, model_size, support_mb,
model_mb, project, section, source, line and fields (raw columns by header).

Examples:
  # Full report
  syncstat analyze activity.tsv

  # January only, servers and users
  syncstat analyze exports/*.tsv --from 2024-01-01 --to 2024-01-31 --view servers,users

  # Records of one server with large transfers
  syncstat analyze activity.tsv --server S1 --where 'support_mb > 100'

  # Daily activity of one model
  syncstat analyze activity.tsv --server S1 --model МП4_ШКОЛ_МИНС_БФ_R23.rvt --view activity

  # Export the report as CSV
  syncstat analyze activity.tsv --export csv --export-to report.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "include records on or after date (YYYY-MM-DD or RFC3339)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "include records up to the end of date")
	analyzeCmd.Flags().StringVar(&analyzeServer, "server", "", "only records of this server")
	analyzeCmd.Flags().StringVar(&analyzeModel, "model", "", "only records of this model")
	analyzeCmd.Flags().StringVar(&analyzeWhere, "where", "", "filter expression evaluated per record")
	analyzeCmd.Flags().StringVar(&analyzeSort, "sort", "syncs", "project order (syncs, users)")
	analyzeCmd.Flags().StringSliceVar(&analyzeViews, "view", nil, "report sections to print (default: all)")
	analyzeCmd.Flags().IntVarP(&analyzeLimit, "limit", "n", 20, "rows per table section (0 = all)")
	analyzeCmd.Flags().StringVar(&analyzeExport, "export", "", "export format (json, csv)")
	analyzeCmd.Flags().StringVar(&analyzeExportTo, "export-to", "", "export file path (default: stdout)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	opts, err := analyzeOptions()
	if err != nil {
		return err
	}
	views, err := parseViews(analyzeViews)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			PrintVerbose("Received interrupt, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	ds, err := loadDataset(ctx, cmd.InOrStdin(), args, loadOptions(cfg))
	if err != nil {
		return err
	}
	PrintVerbose("Loaded %s records from %d files in %v", humanize.Comma(int64(ds.Len())), len(ds.Files), ds.Duration.Round(1e6))

	report := batch.Analyze(ds, opts)

	if analyzeExport != "" {
		return exportReport(cmd.OutOrStdout(), report)
	}

	out := cmd.OutOrStdout()
	return outputReport(out, report, views, shouldUseColor(out))
}

// analyzeOptions turns the filter flags into analysis options.
func analyzeOptions() (batch.AnalyzeOptions, error) {
	var opts batch.AnalyzeOptions

	from, err := batch.ParseDateFlag(analyzeFrom)
	if err != nil {
		return opts, fmt.Errorf("invalid --from: %w", err)
	}
	to, err := batch.ParseDateFlagEndOfDay(analyzeTo)
	if err != nil {
		return opts, fmt.Errorf("invalid --to: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return opts, fmt.Errorf("--from %s is after --to %s", analyzeFrom, analyzeTo)
	}

	sel, err := batch.NewSelection(analyzeServer, analyzeModel, analyzeWhere)
	if err != nil {
		return opts, fmt.Errorf("invalid --where: %w", err)
	}

	by, ok := aggregate.ParseProjectSort(analyzeSort)
	if !ok {
		return opts, fmt.Errorf("invalid --sort: %s (use syncs or users)", analyzeSort)
	}

	opts.From = from
	opts.To = to
	opts.Selection = sel
	opts.ProjectSort = by
	opts.ActivityServer = analyzeServer
	opts.ActivityModel = analyzeModel
	return opts, nil
}

func parseViews(names []string) (map[string]bool, error) {
	views := make(map[string]bool, len(reportViews))
	if len(names) == 0 {
		for _, v := range reportViews {
			views[v] = true
		}
		return views, nil
	}
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if !lo.Contains(reportViews, name) {
			return nil, fmt.Errorf("invalid --view: %s (use %s)", name, strings.Join(reportViews, ", "))
		}
		views[name] = true
	}
	return views, nil
}

// loadDataset loads the given patterns, or stdin when the only argument is "-".
func loadDataset(ctx context.Context, stdin io.Reader, args []string, opts *batch.LoadOptions) (*batch.Dataset, error) {
	if len(args) == 1 && args[0] == "-" {
		return batch.LoadReader(stdin, "stdin", opts)
	}
	ds, err := batch.Load(ctx, args, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	for _, e := range ds.Errors {
		PrintVerbose("warning: %s", e)
	}
	return ds, nil
}

func exportReport(stdout io.Writer, report *batch.Report) error {
	format, ok := batch.ParseExportFormat(analyzeExport)
	if !ok {
		return fmt.Errorf("invalid export format: %s (use json or csv)", analyzeExport)
	}

	writer := stdout
	if analyzeExportTo != "" {
		file, err := os.Create(analyzeExportTo)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer file.Close()
		writer = file
	}

	if err := batch.NewExporter(format, writer).ExportReport(report); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if analyzeExportTo != "" {
		PrintVerbose("Report exported to %s", analyzeExportTo)
	}
	return nil
}

func outputReport(w io.Writer, report *batch.Report, views map[string]bool, color bool) error {
	switch GetOutput() {
	case "json":
		return outputReportJSON(w, report)
	case "plain":
		outputReportPlain(w, report)
		return nil
	default:
		outputReportTable(w, report, views, color)
		return nil
	}
}

func outputReportJSON(w io.Writer, report *batch.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func outputReportPlain(w io.Writer, report *batch.Report) {
	s := report.Summary
	fmt.Fprintf(w, "Records: %d | Valid dates: %d | Invalid dates: %d | Filtered: %d\n",
		s.TotalRecords, s.ValidDates, s.InvalidDates, s.FilteredRecords)
	fmt.Fprintf(w, "Users: %d | Servers: %d | Models: %d | Support: %.2f GB\n",
		s.UniqueUsers, s.UniqueServers, s.UniqueModels, s.SupportGB)
	fmt.Fprintf(w, "Zones: good %d | warning %d | critical %d\n",
		report.ServersInZone(zone.Good), report.ServersInZone(zone.Warning), report.ServersInZone(zone.Critical))
	fmt.Fprintf(w, "Cleanup candidates: %d | Duration: %v\n", len(report.Cleanup), report.Duration.Round(1e6))
}

func outputReportTable(w io.Writer, report *batch.Report, views map[string]bool, color bool) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Synchronization Activity Report")
	fmt.Fprintln(w, "===============================")

	if dr := report.DateRange; dr != nil {
		if dr.Filtered {
			fmt.Fprintf(w, "Date Filter: %s → %s\n", formatBound(dr.From), formatBound(dr.To))
		}
		if dr.Earliest != nil && dr.Latest != nil {
			fmt.Fprintf(w, "Actual Range: %s → %s\n",
				dr.Earliest.Format("2006-01-02 15:04:05"), dr.Latest.Format("2006-01-02 15:04:05"))
		}
	}
	fmt.Fprintf(w, "Files: %d | Duration: %v\n", len(report.Files), report.Duration.Round(1e6))
	fmt.Fprintln(w)

	if views["summary"] {
		writeSummary(w, report)
	}
	if views["users"] && len(report.Users) > 0 {
		section(w, "Users", len(report.Users))
		tbl := newTable("USER", "SYNCS", "DAYS", "TRANSFERRED", "AVG MB/DAY").alignRight(1, 2, 3, 4)
		for _, u := range limitRows(report.Users) {
			tbl.add(u.User, itoa(u.SyncCount), itoa(u.UniqueDays), humanize.Bytes(uint64(u.TotalBytes)), mb(u.AvgMBPerDay))
		}
		finish(w, tbl, color, len(report.Users))
	}
	if views["servers"] && len(report.Servers) > 0 {
		section(w, "Servers", len(report.Servers))
		tbl := newTable("SERVER", "USERS", "MODELS", "AVG MB", "TOTAL GB", "ZONE").
			alignRight(1, 2, 3, 4).zoneColumns(5)
		for _, s := range limitRows(report.Servers) {
			tbl.add(s.Server, itoa(s.Users), itoa(s.Models), mb(s.AvgModelMB), mb(s.TotalGB), s.Zones.Overall.String())
		}
		finish(w, tbl, color, len(report.Servers))
		writeRecommendations(w, report.Servers)
	}
	if views["models"] && len(report.Models) > 0 {
		section(w, "Models", len(report.Models))
		tbl := newTable("SERVER", "MODEL", "SECTION", "SYNCS", "USERS", "SUPPORT", "SIZE", "GROWTH").alignRight(3, 4, 5, 6, 7)
		for _, m := range limitRows(report.Models) {
			tbl.add(m.Server, m.Model, m.Section.Code(), itoa(m.SyncCount), itoa(m.Users),
				humanize.Bytes(uint64(m.SupportBytes)), humanize.Bytes(uint64(m.LastSize)), growth(m.Growth))
		}
		finish(w, tbl, color, len(report.Models))
	}
	if views["types"] && len(report.ModelTypes) > 0 {
		section(w, "Model Types", len(report.ModelTypes))
		tbl := newTable("SECTION", "LABEL", "MODELS", "SYNCS", "SUPPORT").alignRight(2, 3, 4)
		for _, t := range report.ModelTypes {
			tbl.add(t.Section.Code(), t.Label, itoa(t.Models), itoa(t.Syncs), humanize.Bytes(uint64(t.SupportBytes)))
		}
		finish(w, tbl, color, len(report.ModelTypes))
	}
	if views["projects"] && len(report.Projects) > 0 {
		section(w, "Projects", len(report.Projects))
		tbl := newTable("PROJECT", "SECTION", "SYNCS", "USERS").alignRight(2, 3)
		for _, p := range limitRows(report.Projects) {
			tbl.add(p.Name, "", itoa(p.TotalSyncs), itoa(p.Users))
			for _, sec := range p.Sections {
				tbl.add("", sec.Label, itoa(sec.TotalSyncs), itoa(sec.Users))
			}
		}
		finish(w, tbl, color, len(report.Projects))
	}
	if views["cleanup"] {
		section(w, "Cleanup Candidates", len(report.Cleanup))
		if len(report.Cleanup) == 0 {
			fmt.Fprintln(w, "  none")
			fmt.Fprintln(w)
		} else {
			tbl := newTable("SERVER", "MODEL", "SYNCS", "MAX SUPPORT MB", "STATUS").alignRight(2, 3).zoneColumns(4)
			for _, c := range limitRows(report.Cleanup) {
				tbl.add(c.Server, c.Model, itoa(c.SyncCount), mb(c.MaxSupportMB), c.Status.String())
			}
			finish(w, tbl, color, len(report.Cleanup))
		}
	}
	if views["activity"] && len(report.Activity) > 0 {
		section(w, "Daily Activity", len(report.Activity))
		tbl := newTable("DAY", "SYNCS", "SUPPORT MB").alignRight(1, 2)
		for _, p := range report.Activity {
			tbl.add(p.Day, itoa(p.Syncs), mb(p.SupportMB))
		}
		finish(w, tbl, color, len(report.Activity))
	}

	if len(report.Errors) > 0 {
		fmt.Fprintf(w, "Warnings (%d):\n", len(report.Errors))
		for i, e := range report.Errors {
			if i >= 5 {
				fmt.Fprintf(w, "  ... and %d more\n", len(report.Errors)-5)
				break
			}
			fmt.Fprintf(w, "  - %s\n", e)
		}
		fmt.Fprintln(w)
	}
}

func writeSummary(w io.Writer, report *batch.Report) {
	s := report.Summary
	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Total Records:   %s\n", humanize.Comma(int64(s.TotalRecords)))
	fmt.Fprintf(w, "  Valid Dates:     %s (%.1f%%)\n", humanize.Comma(int64(s.ValidDates)), report.ValidDatePercentage())
	fmt.Fprintf(w, "  Invalid Dates:   %s\n", humanize.Comma(int64(s.InvalidDates)))
	fmt.Fprintf(w, "  Shown Records:   %s\n", humanize.Comma(int64(s.FilteredRecords)))
	fmt.Fprintf(w, "  Users:           %d\n", s.UniqueUsers)
	fmt.Fprintf(w, "  Servers:         %d\n", s.UniqueServers)
	fmt.Fprintf(w, "  Models:          %d\n", s.UniqueModels)
	fmt.Fprintf(w, "  Transferred:     %s\n", humanize.Bytes(uint64(s.SupportBytes)))
	fmt.Fprintln(w)
}

func writeRecommendations(w io.Writer, servers []aggregate.ServerStat) {
	var printed bool
	for _, s := range servers {
		if s.Zones.Overall == zone.Good {
			continue
		}
		if !printed {
			fmt.Fprintln(w, "Recommendations:")
			printed = true
		}
		fmt.Fprintf(w, "  %s (%s):\n", s.Server, s.Zones.Overall)
		for _, rec := range s.Recommendations {
			fmt.Fprintf(w, "    - %s\n", rec)
		}
	}
	if printed {
		fmt.Fprintln(w)
	}
}

func section(w io.Writer, title string, n int) {
	fmt.Fprintf(w, "%s (%d):\n", title, n)
}

func finish(w io.Writer, tbl *table, color bool, total int) {
	tbl.color = color
	tbl.render(w, "  ")
	if analyzeLimit > 0 && total > analyzeLimit {
		fmt.Fprintf(w, "  ... and %d more\n", total-analyzeLimit)
	}
	fmt.Fprintln(w)
}

func limitRows[T any](rows []T) []T {
	if analyzeLimit > 0 && len(rows) > analyzeLimit {
		return rows[:analyzeLimit]
	}
	return rows
}

func formatBound(t time.Time) string {
	if t.IsZero() {
		return "*"
	}
	return t.Format("2006-01-02 15:04:05")
}

func itoa(n int) string { return strconv.Itoa(n) }

func mb(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) }

func growth(b int64) string {
	if b < 0 {
		return "-" + humanize.Bytes(uint64(-b))
	}
	return "+" + humanize.Bytes(uint64(b))
}
