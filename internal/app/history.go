package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"survey-insights-go/internal/store"
)

var historyFlagLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "List recorded runs, or show the categories of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 10, "Number of runs to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store.Path == "" {
		return fmt.Errorf("run history is disabled (store.path is empty)")
	}
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer db.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if len(args) == 1 {
		run, err := db.GetRun(args[0])
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("run %s not found", args[0])
		}
		rows, err := db.GetCategoryStats(run.ID)
		if err != nil {
			return err
		}
		if flagJSON {
			return enc.Encode(struct {
				Run        *store.Run          `json:"run"`
				Categories []store.CategoryRow `json:"categories"`
			}{run, rows})
		}
		fmt.Printf("run %s  %s  key_mode=%s\n\n", run.ID, run.TakenAt.Format("2006-01-02 15:04:05"), run.KeyMode)
		for _, r := range rows {
			fmt.Printf("%-40s %4d%% %4d%% %4d%%  %s\n", r.Name(), r.AgreePct, r.DisagreePct, r.UnansweredPct, r.Status)
		}
		return nil
	}

	runs, err := db.ListRuns(historyFlagLimit)
	if err != nil {
		return err
	}
	if flagJSON {
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  categories=%d  responses=%d  unmatched_questions=%d\n",
			r.ID, r.TakenAt.Format("2006-01-02 15:04:05"), r.Categories, r.SurveyRows, r.UnmatchedQuestions)
	}
	return nil
}
