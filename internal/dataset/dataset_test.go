package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"survey-insights-go/internal/types"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func utf8Opts() Options {
	return Options{Columns: DefaultColumns, Encoding: "utf-8"}
}

func TestLoadSurvey_CSV(t *testing.T) {
	src := writeFile(t, "exit.csv", []byte("Respondent,Question Text,Response Answer\n"+
		"1,I feel valued,Strongly Agree\n"+
		"2,\"Pay is fair, mostly\",Disagree\n"+
		"3,I feel valued\n"))

	rows, err := LoadSurvey(context.Background(), src, utf8Opts())

	require.NoError(t, err)
	assert.Equal(t, []types.SurveyRow{
		{QuestionText: "I feel valued", RawAnswer: "Strongly Agree"},
		{QuestionText: "Pay is fair, mostly", RawAnswer: "Disagree"},
		{QuestionText: "I feel valued", RawAnswer: ""},
	}, rows)
}

func TestLoadSurvey_MacRoman(t *testing.T) {
	// 0x8E is e-acute in Mac Roman
	src := writeFile(t, "exit.csv", []byte("Question Text,Response Answer\nCaf\x8E culture,Agree\n"))

	rows, err := LoadSurvey(context.Background(), src, Options{Columns: DefaultColumns, Encoding: "mac-roman"})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Café culture", rows[0].QuestionText)
}

func TestLoadSurvey_UTF8BOM(t *testing.T) {
	src := writeFile(t, "exit.csv", []byte("\xef\xbb\xbfQuestion Text,Response Answer\nQ1,Agree\n"))

	rows, err := LoadSurvey(context.Background(), src, utf8Opts())

	require.NoError(t, err)
	assert.Equal(t, "Q1", rows[0].QuestionText)
}

func TestLoadMapping_HeaderWhitespace(t *testing.T) {
	src := writeFile(t, "mapping.csv", []byte("Question Text,Question category 1,Question category 2 ,Question category 3\n"+
		"Q1,Culture,Team,Trust\n"+
		"Q2,Pay,,Pension\n"))

	rows, err := LoadMapping(context.Background(), src, utf8Opts())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, types.Categories{Level1: "Culture", Level2: "Team", Level3: "Trust"}, rows[0].Categories)
	assert.Equal(t, "", rows[1].Level2)
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadSurvey(ctx, filepath.Join(t.TempDir(), "missing.csv"), utf8Opts())
	assert.ErrorIs(t, err, os.ErrNotExist)

	src := writeFile(t, "exit.csv", []byte("Question,Answer\nQ1,Agree\n"))
	_, err = LoadSurvey(ctx, src, utf8Opts())
	assert.ErrorIs(t, err, ErrMissingColumn)

	empty := writeFile(t, "empty.csv", nil)
	_, err = LoadSurvey(ctx, empty, utf8Opts())
	assert.ErrorIs(t, err, ErrNoRows)

	pdf := writeFile(t, "exit.pdf", []byte("x"))
	_, err = LoadSurvey(ctx, pdf, utf8Opts())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = LoadSurvey(ctx, src, Options{Columns: DefaultColumns, Encoding: "ebcdic"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoadMapping_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Question Text", "Question category 1", "Question category 2", "Question category 3"},
		{"Q1", "Culture", "Team", "Trust"},
		{"Q2", "Pay", "Benefits", "Pension"},
	}
	for i, r := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &r))
	}
	p := filepath.Join(t.TempDir(), "mapping.xlsx")
	require.NoError(t, f.SaveAs(p))
	require.NoError(t, f.Close())

	got, err := LoadMapping(context.Background(), p, utf8Opts())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Q2", got[1].QuestionText)
	assert.Equal(t, types.Categories{Level1: "Pay", Level2: "Benefits", Level3: "Pension"}, got[1].Categories)
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("Question Text,Response Answer\nQ1,Agree\n"))
	}))
	defer srv.Close()

	rows, err := LoadSurvey(context.Background(), srv.URL+"/exports/exit.csv", utf8Opts())

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, []types.SurveyRow{{QuestionText: "Q1", RawAnswer: "Agree"}}, rows)
}

func TestFetch_ClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := Fetch(context.Background(), srv.URL+"/missing.csv", 5*time.Second)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCleanMapping(t *testing.T) {
	entries := []types.MappingEntry{
		{QuestionText: "Q1", Categories: types.Categories{Level1: "Performance and growth", Level2: "Performance and growth", Level3: "Reviews"}},
		{QuestionText: "Q2", Categories: types.Categories{Level1: "Pay", Level2: "", Level3: "Pension"}},
		{QuestionText: "", Categories: types.Categories{Level1: "Pay", Level2: "Benefits", Level3: "Pension"}},
		{QuestionText: "Q1", Categories: types.Categories{Level1: "Performance and growth", Level2: "Performance and growth", Level3: "Reviews"}},
		{QuestionText: "Q3", Categories: types.Categories{Level1: "Pay", Level2: "Benefits", Level3: "Pension"}},
	}
	aliases := map[string]string{"Performance and growth": "Performance & growth"}

	got, rep := CleanMapping(entries, aliases)

	assert.Equal(t, CleanReport{Malformed: 2, Duplicates: 1}, rep)
	require.Len(t, got, 2)
	assert.Equal(t, "Performance and growth", got[0].Level1, "level 1 is never rewritten")
	assert.Equal(t, "Performance & growth", got[0].Level2)
	assert.Equal(t, "Q3", got[1].QuestionText)
	assert.Equal(t, "Performance and growth", entries[0].Level2, "input is not modified")
}

func TestJoin(t *testing.T) {
	survey := []types.SurveyRow{
		{QuestionText: "Q1", RawAnswer: "Agree"},
		{QuestionText: "Unknown", RawAnswer: "Disagree"},
		{QuestionText: "Q2", RawAnswer: "Prefer not to say"},
		{QuestionText: "Unknown", RawAnswer: "Agree"},
	}
	mapping := []types.MappingEntry{
		{QuestionText: "Q2", Categories: types.Categories{Level1: "A", Level2: "B", Level3: "C"}},
		{QuestionText: "Q1", Categories: types.Categories{Level1: "X", Level2: "Y", Level3: "Z"}},
		{QuestionText: "Q2", Categories: types.Categories{Level1: "A", Level2: "D", Level3: "E"}},
	}

	got, rep := Join(survey, mapping)

	assert.Equal(t, []types.MappedResponse{
		{RawAnswer: "Agree", Categories: types.Categories{Level1: "X", Level2: "Y", Level3: "Z"}},
		{RawAnswer: "Disagree"},
		{RawAnswer: "Prefer not to say", Categories: types.Categories{Level1: "A", Level2: "B", Level3: "C"}},
		{RawAnswer: "Prefer not to say", Categories: types.Categories{Level1: "A", Level2: "D", Level3: "E"}},
		{RawAnswer: "Agree"},
	}, got)
	assert.Equal(t, JoinReport{Unmatched: 2, UnmatchedQuestions: []string{"Unknown"}}, rep)
}

func TestSummarize(t *testing.T) {
	survey := []types.SurveyRow{
		{QuestionText: "Q1", RawAnswer: "Agree"},
		{QuestionText: "Q2", RawAnswer: "Disagree"},
		{QuestionText: "Q1", RawAnswer: "Agree"},
	}

	ds := Summarize(survey, nil)

	assert.Equal(t, 3, ds.TotalResponses)
	assert.Equal(t, 2, ds.DistinctQuestions)
	assert.Equal(t, []AnswerCount{{"Agree", 2}, {"Disagree", 1}}, ds.Answers)
}
