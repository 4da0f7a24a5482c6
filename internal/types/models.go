package types

// SurveyRow is one response from an exit or engagement survey export.
type SurveyRow struct {
	QuestionText string `json:"question_text"`
	RawAnswer    string `json:"raw_answer"`
}

// Categories holds the three taxonomy levels a question maps to.
type Categories struct {
	Level1 string `json:"category_1"`
	Level2 string `json:"category_2"`
	Level3 string `json:"category_3"`
}

// Depths is the fixed number of taxonomy levels.
const Depths = 3

// At returns the label at depth d (1-indexed). Out of range depths return "".
func (c Categories) At(d int) string {
	switch d {
	case 1:
		return c.Level1
	case 2:
		return c.Level2
	case 3:
		return c.Level3
	}
	return ""
}

// Complete reports whether every level carries a label.
func (c Categories) Complete() bool {
	return c.Level1 != "" && c.Level2 != "" && c.Level3 != ""
}

type MappingEntry struct {
	QuestionText string `json:"question_text"`
	Categories
}

// MappedResponse is a survey row joined to one mapping entry. Rows without a
// mapping carry empty Categories.
type MappedResponse struct {
	RawAnswer string `json:"raw_answer"`
	Categories
}

type Sentiment string

const (
	Agree       Sentiment = "Agree"
	Disagree    Sentiment = "Disagree"
	NotAnswered Sentiment = "Not Answered"
	Other       Sentiment = "Other"
)

type Status string

const (
	Green  Status = "Green"
	Red    Status = "Red"
	Grey   Status = "Grey"
	Orange Status = "Orange"
)

// HierarchyNode is one node of the display tree. ID is the identity used for
// parent references; in label key mode it equals Label. Path is the readable
// root-to-node path, set in path key mode only.
type HierarchyNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Path   string `json:"path,omitempty"`
	Parent string `json:"parent"`
	Depth  int    `json:"depth"`
}

// Name is the text shown for the node in tables.
func (n HierarchyNode) Name() string {
	if n.Path != "" {
		return n.Path
	}
	return n.ID
}

// NormalizedAnswer is one sentiment observation attributed to one category key.
type NormalizedAnswer struct {
	Sentiment Sentiment `json:"sentiment"`
	Raw       string    `json:"raw"`
	Category  string    `json:"category"`
}

type CategoryStats struct {
	Category      string `json:"category"`
	Label         string `json:"label"`
	Path          string `json:"path,omitempty"`
	Total         int    `json:"total"`
	AgreePct      int    `json:"agree_pct"`
	DisagreePct   int    `json:"disagree_pct"`
	UnansweredPct int    `json:"unanswered_pct"`
	NoData        bool   `json:"no_data,omitempty"`
	Status        Status `json:"status"`
}

// DataQualityWarning records a label seen again under a different parent than
// the one kept for it.
type DataQualityWarning struct {
	Label             string `json:"label"`
	KeptParent        string `json:"kept_parent"`
	ConflictingParent string `json:"conflicting_parent"`
	Row               int    `json:"row"`
}

// Name is the text shown for the category in tables and summaries.
func (s CategoryStats) Name() string {
	if s.Path != "" {
		return s.Path
	}
	return s.Category
}
