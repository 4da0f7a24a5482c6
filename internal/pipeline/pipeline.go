// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"survey-insights-go/internal/aggregator"
	"survey-insights-go/internal/config"
	"survey-insights-go/internal/dataset"
	"survey-insights-go/internal/hierarchy"
	"survey-insights-go/internal/logger"
	"survey-insights-go/internal/normalizer"
	"survey-insights-go/internal/report"
	"survey-insights-go/internal/status"
	"survey-insights-go/internal/store"
	"survey-insights-go/internal/types"
)

const (
	SourceResponses = "responses"
	SourceMapping   = "mapping"
)

// Inputs is a full in-memory snapshot of the three input tables.
type Inputs struct {
	ExitSurvey       []types.SurveyRow
	EngagementSurvey []types.SurveyRow
	Mapping          []types.MappingEntry
}

type Options struct {
	KeyMode hierarchy.KeyMode
	// Source is SourceResponses or SourceMapping.
	Source  string
	Aliases map[string]string
}

// Diagnostics counts the non-fatal data problems met during a run.
type Diagnostics struct {
	SurveyRows         int      `json:"survey_rows"`
	MappedRows         int      `json:"mapped_rows"`
	DroppedMalformed   int      `json:"dropped_malformed"`
	DroppedDuplicates  int      `json:"dropped_duplicates"`
	UnmatchedRows      int      `json:"unmatched_rows"`
	UnmatchedQuestions []string `json:"unmatched_questions,omitempty"`
	ParentConflicts    int      `json:"parent_conflicts"`
	NoDataCategories   int      `json:"no_data_categories"`
}

type Result struct {
	Report      report.Report          `json:"report"`
	Diagnostics Diagnostics            `json:"diagnostics"`
	Dataset     dataset.DatasetSummary `json:"dataset"`
}

// OptionsFromConfig validates and converts the engine settings.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, err := hierarchy.ParseKeyMode(cfg.Hierarchy.KeyMode)
	if err != nil {
		return Options{}, err
	}
	src := cfg.Hierarchy.Source
	if src == "" {
		src = SourceResponses
	}
	return Options{KeyMode: mode, Source: src, Aliases: cfg.AliasMap()}, nil
}

// Load reads the three sources concurrently. Any failure is fatal: a source
// that cannot be read is never treated as empty.
func Load(ctx context.Context, cfg *config.Config) (Inputs, error) {
	opts := cfg.DatasetOptions()
	var in Inputs
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := dataset.LoadSurvey(gctx, cfg.Sources.ExitSurvey, opts)
		if err != nil {
			return fmt.Errorf("exit survey: %w", err)
		}
		in.ExitSurvey = rows
		return nil
	})
	g.Go(func() error {
		rows, err := dataset.LoadSurvey(gctx, cfg.Sources.EngagementSurvey, opts)
		if err != nil {
			return fmt.Errorf("engagement survey: %w", err)
		}
		in.EngagementSurvey = rows
		return nil
	})
	g.Go(func() error {
		rows, err := dataset.LoadMapping(gctx, cfg.Sources.Mapping, opts)
		if err != nil {
			return fmt.Errorf("mapping: %w", err)
		}
		in.Mapping = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

// Process runs the engine over a loaded snapshot: clean and join, build the
// hierarchy, normalize, aggregate, classify and assemble. It is synchronous and
// does not touch its inputs.
func Process(in Inputs, opts Options) (Result, error) {
	log := logger.New().WithField("component", "pipeline")

	survey := make([]types.SurveyRow, 0, len(in.ExitSurvey)+len(in.EngagementSurvey))
	survey = append(survey, in.ExitSurvey...)
	survey = append(survey, in.EngagementSurvey...)

	mapping, clean := dataset.CleanMapping(in.Mapping, opts.Aliases)
	if clean.Malformed > 0 || clean.Duplicates > 0 {
		log.WithField("malformed", clean.Malformed).WithField("duplicates", clean.Duplicates).
			Info("dropped mapping rows")
	}

	mapped, join := dataset.Join(survey, mapping)
	if join.Unmatched > 0 {
		log.WithField("rows", join.Unmatched).WithField("questions", len(join.UnmatchedQuestions)).
			Warn("survey questions without mapping excluded")
	}

	var h hierarchy.Hierarchy
	switch opts.Source {
	case SourceMapping:
		h = hierarchy.Build(dataset.MappingCategoryRows(mapping), opts.KeyMode)
	case SourceResponses, "":
		h = hierarchy.Build(dataset.CategoryRows(mapped), opts.KeyMode)
	default:
		return Result{}, fmt.Errorf("unknown hierarchy source %q", opts.Source)
	}
	for _, w := range h.Warnings {
		log.WithField("label", w.Label).WithField("kept_parent", w.KeptParent).
			WithField("conflicting_parent", w.ConflictingParent).
			Warn("category seen under a different parent; keeping the first")
	}

	answers := normalizer.Expand(mapped, opts.KeyMode)
	stats := status.Apply(aggregator.Aggregate(h, answers))

	noData := 0
	for _, s := range stats {
		if s.NoData {
			noData++
			log.WithField("category", s.Category).Warn("category has no answers")
		}
	}

	rep, err := report.Assemble(h, stats)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Report: rep,
		Diagnostics: Diagnostics{
			SurveyRows:         len(survey),
			MappedRows:         len(mapped) - join.Unmatched,
			DroppedMalformed:   clean.Malformed,
			DroppedDuplicates:  clean.Duplicates,
			UnmatchedRows:      join.Unmatched,
			UnmatchedQuestions: join.UnmatchedQuestions,
			ParentConflicts:    len(h.Warnings),
			NoDataCategories:   noData,
		},
		Dataset: dataset.Summarize(survey, in.Mapping),
	}, nil
}

// Run loads the configured sources and processes them under a fresh run ID.
func Run(ctx context.Context, cfg *config.Config) (Result, error) {
	runID := uuid.New().String()
	log := logger.New().WithField("component", "pipeline").WithField("run_id", runID)
	start := time.Now()

	opts, err := OptionsFromConfig(cfg)
	if err != nil {
		return Result{}, err
	}
	log.WithField("exit_survey", cfg.Sources.ExitSurvey).
		WithField("engagement_survey", cfg.Sources.EngagementSurvey).
		WithField("mapping", cfg.Sources.Mapping).Info("loading sources")
	in, err := Load(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("load failed")
		return Result{}, err
	}

	res, err := Process(in, opts)
	if err != nil {
		return Result{}, err
	}
	res.Report.RunID = runID
	log.WithField("categories", len(res.Report.Rows)).
		WithField("duration_ms", time.Since(start).Milliseconds()).Info("rollup complete")
	return res, nil
}

// Save persists a result as a run snapshot.
func Save(db *store.DB, res Result) error {
	rep := res.Report
	run := store.Run{
		ID:                 rep.RunID,
		TakenAt:            rep.GeneratedAt,
		KeyMode:            string(rep.KeyMode),
		SurveyRows:         res.Diagnostics.SurveyRows,
		MappedRows:         res.Diagnostics.MappedRows,
		UnmatchedQuestions: len(res.Diagnostics.UnmatchedQuestions),
		MalformedMappings:  res.Diagnostics.DroppedMalformed,
		DuplicateMappings:  res.Diagnostics.DroppedDuplicates,
		ParentConflicts:    res.Diagnostics.ParentConflicts,
		Categories:         len(rep.Stats),
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	rows := make([]store.CategoryRow, len(rep.Stats))
	for i, s := range rep.Stats {
		rows[i] = store.CategoryRow{Parent: rep.Chart.Parents[i], CategoryStats: s}
	}
	if err := db.SaveRun(run, rows); err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// WriteOutputs writes the table, chart spec and HTML page for every
// configured, non-empty destination.
func WriteOutputs(cfg *config.Config, rep report.Report) error {
	if cfg.Output.Table != "" {
		if err := report.WriteTable(cfg.Output.Table, rep.Rows); err != nil {
			return err
		}
	}
	if cfg.Output.Chart != "" {
		if err := report.WriteChart(cfg.Output.Chart, rep.Chart); err != nil {
			return err
		}
	}
	if cfg.Output.HTML != "" {
		if err := report.WriteHTML(cfg.Output.HTML, "Survey category sentiment", rep.Chart); err != nil {
			return err
		}
	}
	return nil
}
