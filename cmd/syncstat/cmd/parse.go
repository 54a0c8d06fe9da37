package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/syncstat/internal/batch"
	"github.com/good-yellow-bee/syncstat/internal/models"
)

var (
	parseLimit   int
	parseCSV     bool
	parseInvalid bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file...]",
	Short: "Print normalized log records",
	Long: `Read activity logs and print the records as they are normalized:
resolved columns, UTC day, sizes in bytes and the source line.

Useful to check column mapping and date parsing of a new export.

Examples:
  # First 50 records
  syncstat parse activity.tsv -n 50

  # Records whose date could not be parsed
  syncstat parse activity.tsv --invalid

  # All records as CSV
  syncstat parse exports/*.tsv --csv -n 0 > records.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().IntVarP(&parseLimit, "limit", "n", 100, "maximum records to print (0 = all)")
	parseCmd.Flags().BoolVar(&parseCSV, "csv", false, "print records as CSV")
	parseCmd.Flags().BoolVar(&parseInvalid, "invalid", false, "only records without a valid date")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ds, err := loadDataset(context.Background(), cmd.InOrStdin(), args, loadOptions(cfg))
	if err != nil {
		return err
	}

	records := ds.Records
	if parseInvalid {
		records = invalidRecords(records)
	}
	total := len(records)
	if parseLimit > 0 && len(records) > parseLimit {
		records = records[:parseLimit]
	}

	out := cmd.OutOrStdout()
	switch {
	case parseCSV:
		return batch.NewExporter(batch.ExportCSV, out).ExportRecords(records)
	case GetOutput() == "json":
		return batch.NewExporter(batch.ExportJSON, out).ExportRecords(records)
	default:
		printRecords(out, records, shouldUseColor(out))
		if total > len(records) {
			fmt.Fprintf(out, "... %s of %s records shown\n", humanize.Comma(int64(len(records))), humanize.Comma(int64(total)))
		}
		return nil
	}
}

func invalidRecords(records []models.Record) []models.Record {
	var out []models.Record
	for i := range records {
		if !records[i].HasDate() {
			out = append(out, records[i])
		}
	}
	return out
}

func printRecords(w io.Writer, records []models.Record, color bool) {
	tbl := newTable("DAY", "SERVER", "MODEL", "USER", "SUPPORT", "MODEL SIZE", "SOURCE").alignRight(4, 5)
	tbl.color = color
	for i := range records {
		r := &records[i]
		day := r.DayKey()
		if !r.HasDate() {
			day = "-"
		}
		tbl.add(day, r.Server, r.Model, r.User,
			humanize.Bytes(uint64(r.SupportSize)), humanize.Bytes(uint64(r.ModelSize)),
			fmt.Sprintf("%s:%d", r.Source, r.Line))
	}
	tbl.render(w, "")
}
