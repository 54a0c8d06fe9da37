package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/syncstat/internal/modelname"
	"github.com/good-yellow-bee/syncstat/internal/zone"
)

var (
	classifyUsers   int
	classifyModels  int
	classifyAvgMB   float64
	classifyTotalGB float64
)

var classifyCmd = &cobra.Command{
	Use:   "classify [model-name...]",
	Short: "Classify model names or server load",
	Long: `Split model file names into organization, object type, project and
section, or classify server metrics into good, warning and critical zones.

Examples:
  # Model names
  syncstat classify МП4_ШКОЛ_МИНС_БФ_R23.rvt Org_Obj_ALFA_ОВ.rvt

  # Server load
  syncstat classify --users 45 --models 80 --avg-mb 350 --total-gb 70`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().IntVar(&classifyUsers, "users", 0, "distinct users on the server")
	classifyCmd.Flags().IntVar(&classifyModels, "models", 0, "distinct models on the server")
	classifyCmd.Flags().Float64Var(&classifyAvgMB, "avg-mb", 0, "average model size in MB")
	classifyCmd.Flags().Float64Var(&classifyTotalGB, "total-gb", 0, "total model size in GB")
}

// serverClassification is the JSON shape of a server load classification.
type serverClassification struct {
	Values          zone.Values `json:"values"`
	Zones           zone.Zones  `json:"zones"`
	Recommendations []string    `json:"recommendations"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	serverMode := lo.SomeBy([]string{"users", "models", "avg-mb", "total-gb"}, cmd.Flags().Changed)

	switch {
	case serverMode && len(args) > 0:
		return fmt.Errorf("model names and server metrics cannot be combined")
	case serverMode:
		return classifyServer(out)
	case len(args) == 0:
		return fmt.Errorf("at least one model name or a server metric flag is required")
	default:
		return classifyNames(out, args)
	}
}

func classifyNames(w io.Writer, names []string) error {
	parsed := make([]*modelname.ParsedName, 0, len(names))
	for _, name := range names {
		if p := modelname.Parse(name); p != nil {
			parsed = append(parsed, p)
		}
	}

	if GetOutput() == "json" {
		return writeJSON(w, parsed)
	}

	tbl := newTable("NAME", "ORGANIZATION", "OBJECT", "PROJECT", "SECTION")
	for _, p := range parsed {
		tbl.add(p.Full, p.Organization, p.ObjectType, p.Project, p.Section.Label())
	}
	tbl.render(w, "")
	return nil
}

func classifyServer(w io.Writer) error {
	v := zone.Values{
		Users:       classifyUsers,
		Models:      classifyModels,
		AvgSizeMB:   classifyAvgMB,
		TotalSizeGB: classifyTotalGB,
	}
	z := zone.ClassifyAll(v)
	result := serverClassification{
		Values:          v,
		Zones:           z,
		Recommendations: zone.Recommendations(z.Overall, v),
	}

	if GetOutput() == "json" {
		return writeJSON(w, result)
	}

	tbl := newTable("METRIC", "VALUE", "ZONE").alignRight(1).zoneColumns(2)
	tbl.color = shouldUseColor(w)
	tbl.add("users", itoa(v.Users), z.Users.String())
	tbl.add("models", itoa(v.Models), z.Models.String())
	tbl.add("avg size MB", mb(v.AvgSizeMB), z.AvgSize.String())
	tbl.add("total size GB", mb(v.TotalSizeGB), z.TotalSize.String())
	tbl.add("overall", "", z.Overall.String())
	tbl.render(w, "")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Recommendations:")
	for _, rec := range result.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
