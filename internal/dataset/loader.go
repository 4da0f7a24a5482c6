package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"survey-insights-go/internal/types"
)

var (
	ErrNoRows            = errors.New("no data rows")
	ErrMissingColumn     = errors.New("missing column")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Columns names the headers to read. Matching trims whitespace and ignores case.
type Columns struct {
	Question  string
	Answer    string
	Category1 string
	Category2 string
	Category3 string
}

var DefaultColumns = Columns{
	Question:  "Question Text",
	Answer:    "Response Answer",
	Category1: "Question category 1",
	Category2: "Question category 2",
	Category3: "Question category 3",
}

type Options struct {
	Columns Columns
	// Encoding of CSV sources: "mac-roman" or "utf-8".
	Encoding     string
	FetchTimeout time.Duration
}

// LoadSurvey reads question/answer pairs from a CSV or XLSX source, which may be
// a local path or an http(s) URL.
func LoadSurvey(ctx context.Context, src string, opts Options) ([]types.SurveyRow, error) {
	rows, err := readTable(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndices(rows[0], opts.Columns.Question, opts.Columns.Answer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	out := make([]types.SurveyRow, 0, len(rows)-1)
	for _, r := range rows[1:] {
		out = append(out, types.SurveyRow{
			QuestionText: cell(r, idx[0]),
			RawAnswer:    cell(r, idx[1]),
		})
	}
	return out, nil
}

// LoadMapping reads question/category rows as-is; missing cells become "" and
// are dropped later by CleanMapping.
func LoadMapping(ctx context.Context, src string, opts Options) ([]types.MappingEntry, error) {
	rows, err := readTable(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	c := opts.Columns
	idx, err := columnIndices(rows[0], c.Question, c.Category1, c.Category2, c.Category3)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	out := make([]types.MappingEntry, 0, len(rows)-1)
	for _, r := range rows[1:] {
		out = append(out, types.MappingEntry{
			QuestionText: cell(r, idx[0]),
			Categories: types.Categories{
				Level1: cell(r, idx[1]),
				Level2: cell(r, idx[2]),
				Level3: cell(r, idx[3]),
			},
		})
	}
	return out, nil
}

func readTable(ctx context.Context, src string, opts Options) ([][]string, error) {
	data, err := readSource(ctx, src, opts.FetchTimeout)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	switch ext := sourceExt(src); ext {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(data)
	case ".csv", ".txt", "":
		rows, err = readCSV(data, opts.Encoding)
	default:
		return nil, fmt.Errorf("%s: %w: %s", src, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", src, ErrNoRows)
	}
	return rows, nil
}

func readSource(ctx context.Context, src string, timeout time.Duration) ([]byte, error) {
	if isRemote(src) {
		return Fetch(ctx, src, timeout)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return data, nil
}

func isRemote(src string) bool {
	l := strings.ToLower(src)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func sourceExt(src string) string {
	p := src
	if isRemote(src) {
		if u, err := url.Parse(src); err == nil {
			p = u.Path
		}
	}
	return strings.ToLower(path.Ext(p))
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func readCSV(data []byte, encoding string) ([][]string, error) {
	var r io.Reader = bytes.NewReader(data)
	switch strings.ToLower(strings.ReplaceAll(encoding, "_", "-")) {
	case "mac-roman", "macroman", "macintosh":
		r = charmap.Macintosh.NewDecoder().Reader(r)
	case "", "utf-8", "utf8":
		r = bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	default:
		return nil, fmt.Errorf("%w: encoding %q", ErrUnsupportedFormat, encoding)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func columnIndices(header []string, names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		out[i] = -1
		want := strings.ToLower(strings.TrimSpace(name))
		for j, h := range header {
			if strings.ToLower(strings.TrimSpace(h)) == want {
				out[i] = j
				break
			}
		}
		if out[i] == -1 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return out, nil
}

func cell(r []string, i int) string {
	if i >= 0 && i < len(r) {
		return r[i]
	}
	return ""
}
