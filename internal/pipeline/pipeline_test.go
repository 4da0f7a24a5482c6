package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"survey-insights-go/internal/config"
	"survey-insights-go/internal/hierarchy"
	"survey-insights-go/internal/store"
	"survey-insights-go/internal/types"
)

func mapping(q, a, b, c string) types.MappingEntry {
	return types.MappingEntry{QuestionText: q, Categories: types.Categories{Level1: a, Level2: b, Level3: c}}
}

func labelOpts() Options {
	return Options{KeyMode: hierarchy.KeyByLabel, Source: SourceResponses}
}

func TestProcess_TwoQuestionScenario(t *testing.T) {
	in := Inputs{
		ExitSurvey:       []types.SurveyRow{{QuestionText: "Q1", RawAnswer: "Agree"}},
		EngagementSurvey: []types.SurveyRow{{QuestionText: "Q2", RawAnswer: "Disagree"}},
		Mapping:          []types.MappingEntry{mapping("Q1", "A", "B", "C"), mapping("Q2", "A", "D", "E")},
	}

	res, err := Process(in, labelOpts())

	require.NoError(t, err)
	rep := res.Report
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, rep.Chart.Labels)
	assert.Equal(t, []string{"", "A", "B", "A", "D"}, rep.Chart.Parents)
	assert.Equal(t, []string{"Orange", "Green", "Green", "Red", "Red"}, rep.Chart.Colors)

	a := rep.Stats[0]
	assert.Equal(t, 2, a.Total)
	assert.Equal(t, 50, a.AgreePct)
	assert.Equal(t, 50, a.DisagreePct)
	assert.Equal(t, types.Orange, a.Status)

	assert.Equal(t, Diagnostics{SurveyRows: 2, MappedRows: 2}, res.Diagnostics)
	assert.Equal(t, 2, res.Dataset.TotalResponses)
}

func TestProcess_DataQualityIsNonFatal(t *testing.T) {
	in := Inputs{
		ExitSurvey: []types.SurveyRow{
			{QuestionText: "Q1", RawAnswer: "Strongly Agree"},
			{QuestionText: "Unmapped", RawAnswer: "Disagree"},
			{QuestionText: "Q2", RawAnswer: "Prefer not to say"},
			{QuestionText: "Q3", RawAnswer: "Maybe"},
		},
		Mapping: []types.MappingEntry{
			mapping("Q1", "Growth", "Performance and growth", "Reviews"),
			mapping("Q1", "Growth", "Performance and growth", "Reviews"),
			mapping("Q2", "Pay", "", "Pension"),
			mapping("Q2", "Pay", "Benefits", "Pension"),
			mapping("Q3", "Culture", "Benefits", "Trust"),
		},
	}
	opts := labelOpts()
	opts.Aliases = map[string]string{"Performance and growth": "Performance & growth"}

	res, err := Process(in, opts)

	require.NoError(t, err)
	d := res.Diagnostics
	assert.Equal(t, 1, d.DroppedMalformed)
	assert.Equal(t, 1, d.DroppedDuplicates)
	assert.Equal(t, 1, d.UnmatchedRows)
	assert.Equal(t, []string{"Unmapped"}, d.UnmatchedQuestions)
	assert.Equal(t, 1, d.ParentConflicts, "Benefits under Culture conflicts with Benefits under Pay")
	assert.Equal(t, 0, d.NoDataCategories)

	labels := res.Report.Chart.Labels
	assert.Equal(t, []string{"Growth", "Performance & growth", "Reviews", "Pay", "Benefits", "Pension", "Culture", "Trust"}, labels)
	assert.NotContains(t, labels, "")

	byCat := map[string]types.CategoryStats{}
	for _, s := range res.Report.Stats {
		byCat[s.Category] = s
	}
	// Benefits collects the Pay and Culture rows: one unanswered, one other.
	assert.Equal(t, 2, byCat["Benefits"].Total)
	assert.Equal(t, 50, byCat["Benefits"].UnansweredPct)
	assert.Equal(t, types.Orange, byCat["Benefits"].Status)
	assert.Equal(t, types.Grey, byCat["Pension"].Status)
	assert.Equal(t, types.Green, byCat["Growth"].Status)
}

func TestProcess_MappingSourceReportsNoData(t *testing.T) {
	in := Inputs{
		ExitSurvey: []types.SurveyRow{{QuestionText: "Q1", RawAnswer: "Agree"}},
		Mapping:    []types.MappingEntry{mapping("Q1", "A", "B", "C"), mapping("Q9", "A", "B", "Unasked")},
	}
	opts := labelOpts()
	opts.Source = SourceMapping

	res, err := Process(in, opts)

	require.NoError(t, err)
	require.Len(t, res.Report.Stats, 4)
	last := res.Report.Stats[3]
	assert.Equal(t, "Unasked", last.Category)
	assert.True(t, last.NoData)
	assert.Equal(t, 0, last.AgreePct)
	assert.Equal(t, 1, res.Diagnostics.NoDataCategories)
}

func TestProcess_PathMode(t *testing.T) {
	in := Inputs{
		ExitSurvey: []types.SurveyRow{
			{QuestionText: "Q1", RawAnswer: "Agree"},
			{QuestionText: "Q2", RawAnswer: "Disagree"},
		},
		Mapping: []types.MappingEntry{mapping("Q1", "A", "Team", "Trust"), mapping("Q2", "B", "Team", "Trust")},
	}

	res, err := Process(in, Options{KeyMode: hierarchy.KeyByPath})

	require.NoError(t, err)
	assert.Len(t, res.Report.Chart.IDs, 6)
	assert.Equal(t, 0, res.Diagnostics.ParentConflicts)
	assert.Equal(t, "B / Team / Trust", res.Report.Stats[5].Name())
	assert.Equal(t, "B / Team / Trust", res.Report.Rows[5].Category)
	assert.Equal(t, 100, res.Report.Stats[5].DisagreePct)
}

func TestProcess_PathModeSeparatorInsideLabel(t *testing.T) {
	in := Inputs{
		ExitSurvey: []types.SurveyRow{
			{QuestionText: "Q1", RawAnswer: "Agree"},
			{QuestionText: "Q2", RawAnswer: "Disagree"},
		},
		Mapping: []types.MappingEntry{
			mapping("Q1", "Pay / Benefits", "Team", "Trust"),
			mapping("Q2", "Pay", "Benefits", "Leave"),
		},
	}

	res, err := Process(in, Options{KeyMode: hierarchy.KeyByPath})

	require.NoError(t, err)
	require.Len(t, res.Report.Stats, 6)
	assert.Equal(t, 0, res.Diagnostics.ParentConflicts)
	root, child := res.Report.Stats[0], res.Report.Stats[4]
	assert.Equal(t, "Pay / Benefits", root.Name())
	assert.Equal(t, "Pay / Benefits", child.Name())
	assert.Equal(t, 1, root.Total)
	assert.Equal(t, 100, root.AgreePct)
	assert.Equal(t, 1, child.Total)
	assert.Equal(t, 100, child.DisagreePct)
}

func TestProcess_UnknownSource(t *testing.T) {
	_, err := Process(Inputs{}, Options{KeyMode: hierarchy.KeyByLabel, Source: "survey"})
	assert.Error(t, err)
}

func writeInputs(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}
	return &config.Config{
		Sources: config.Sources{
			ExitSurvey:       write("exit.csv", "Question Text,Response Answer\nQ1,Agree\n"),
			EngagementSurvey: write("engagement.csv", "Question Text,Response Answer\nQ2,Disagree\n"),
			Mapping: write("mapping.csv", "Question Text,Question category 1,Question category 2 ,Question category 3\n"+
				"Q1,A,B,C\nQ2,A,D,E\n"),
			Encoding: "utf-8",
		},
		Columns:   config.DefaultColumns,
		Hierarchy: config.DefaultHierarchy,
		Output: config.Output{
			Table: filepath.Join(dir, "table.csv"),
			Chart: filepath.Join(dir, "chart.json"),
			HTML:  filepath.Join(dir, "chart.html"),
		},
	}
}

func TestRun_FromFiles(t *testing.T) {
	cfg := writeInputs(t)

	res, err := Run(context.Background(), cfg)

	require.NoError(t, err)
	assert.NotEmpty(t, res.Report.RunID)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, res.Report.Chart.Labels)

	require.NoError(t, WriteOutputs(cfg, res.Report))
	table, err := os.ReadFile(cfg.Output.Table)
	require.NoError(t, err)
	assert.Equal(t, "Category,Agree Percentage,Disagree Percentage,Unanswered Percentage\n"+
		"A,50,50,0\nB,100,0,0\nC,100,0,0\nD,0,100,0\nE,0,100,0\n", string(table))
	assert.FileExists(t, cfg.Output.Chart)
	assert.FileExists(t, cfg.Output.HTML)
}

func TestRun_MissingSourceIsFatal(t *testing.T) {
	cfg := writeInputs(t)
	cfg.Sources.EngagementSurvey = filepath.Join(t.TempDir(), "missing.csv")

	_, err := Run(context.Background(), cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "engagement survey")
}

func TestSave(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()
	res, err := Run(context.Background(), writeInputs(t))
	require.NoError(t, err)

	require.NoError(t, Save(db, res))

	run, err := db.GetRun(res.Report.RunID)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, 5, run.Categories)
	assert.Equal(t, 2, run.SurveyRows)
	rows, err := db.GetCategoryStats(run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "D", rows[4].Parent)
	assert.Equal(t, types.Red, rows[4].Status)
}
