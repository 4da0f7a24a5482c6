package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"survey-insights-go/internal/config"
	"survey-insights-go/internal/logger"
	"survey-insights-go/internal/pipeline"
	"survey-insights-go/internal/report"
	"survey-insights-go/internal/store"
)

var (
	runFlagExit       string
	runFlagEngagement string
	runFlagMapping    string
	runFlagKeyMode    string
	runFlagSource     string
	runFlagTable      string
	runFlagChart      string
	runFlagHTML       string
	runFlagNoStore    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the category rollup and write the table and chart",
	Long: `Run loads both survey exports and the mapping file, builds the category
hierarchy, aggregates sentiment per category and writes the percentage table,
the chart spec and a sunburst HTML page. Each run is recorded in the history
database unless --no-store is given.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFlagExit, "exit", "", "Exit survey source (path or URL)")
	runCmd.Flags().StringVar(&runFlagEngagement, "engagement", "", "Engagement survey source (path or URL)")
	runCmd.Flags().StringVar(&runFlagMapping, "mapping", "", "Question category mapping source (path or URL)")
	runCmd.Flags().StringVar(&runFlagKeyMode, "key-mode", "", "Category identity: label or path")
	runCmd.Flags().StringVar(&runFlagSource, "hierarchy-source", "", "Rows that define the hierarchy: responses or mapping")
	runCmd.Flags().StringVar(&runFlagTable, "table", "", "Category table output (.csv or .xlsx)")
	runCmd.Flags().StringVar(&runFlagChart, "chart", "", "Chart spec JSON output")
	runCmd.Flags().StringVar(&runFlagHTML, "html", "", "Sunburst HTML output")
	runCmd.Flags().BoolVar(&runFlagNoStore, "no-store", false, "Do not record the run in the history database")

	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overlays non-empty flags on the loaded configuration.
func applyRunFlags(cfg *config.Config) error {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Sources.ExitSurvey, runFlagExit)
	set(&cfg.Sources.EngagementSurvey, runFlagEngagement)
	set(&cfg.Sources.Mapping, runFlagMapping)
	set(&cfg.Hierarchy.KeyMode, runFlagKeyMode)
	set(&cfg.Hierarchy.Source, runFlagSource)
	set(&cfg.Output.Table, runFlagTable)
	set(&cfg.Output.Chart, runFlagChart)
	set(&cfg.Output.HTML, runFlagHTML)
	if runFlagNoStore {
		cfg.Store.Path = ""
	}
	return cfg.Validate()
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyRunFlags(cfg); err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	if err := pipeline.WriteOutputs(cfg, res.Report); err != nil {
		return fmt.Errorf("writing outputs: %w", err)
	}

	if cfg.Store.Path != "" {
		if err := saveRun(cfg.Store.Path, res); err != nil {
			// History is best effort; the outputs are already written.
			logger.New().WithError(err).Warn("run not recorded")
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Print(report.RenderTerminal(res.Report, useColor(cfg)))
	return nil
}

func saveRun(path string, res pipeline.Result) error {
	db, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer db.Close()
	return pipeline.Save(db, res)
}
