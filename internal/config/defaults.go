// Package config provides configuration loading and defaults for surveyinsights.
package config

import (
	"time"

	"survey-insights-go/internal/dataset"
)

// DefaultConfigDir is where the optional config file and run database live.
const DefaultConfigDir = "~/.config/surveyinsights"

// DefaultDBName is the filename of the run history database.
const DefaultDBName = "surveyinsights.db"

// EnvPrefix prefixes environment overrides, e.g. SURVEY_SOURCES_MAPPING.
const EnvPrefix = "SURVEY"

// DefaultSources are the file names the survey exports are delivered under.
var DefaultSources = Sources{
	ExitSurvey:       "dummy_exit_survey_data.csv",
	EngagementSurvey: "dummy_staff_engagement_survey_data.csv",
	Mapping:          "Mapping_file.csv",
	Encoding:         "mac-roman",
	FetchTimeout:     30 * time.Second,
}

// DefaultColumns are the header names of the survey and mapping exports.
var DefaultColumns = Columns{
	Question:  dataset.DefaultColumns.Question,
	Answer:    dataset.DefaultColumns.Answer,
	Category1: dataset.DefaultColumns.Category1,
	Category2: dataset.DefaultColumns.Category2,
	Category3: dataset.DefaultColumns.Category3,
}

// DefaultAliases disambiguates the level-2 label that shares its wording with
// a level-1 label.
var DefaultAliases = []Alias{
	{From: "Performance and growth", To: "Performance & growth"},
}

// DefaultHierarchy keeps label-only identity and scans joined responses.
var DefaultHierarchy = Hierarchy{
	KeyMode: "label",
	Source:  "responses",
}

// DefaultOutput holds the default output destinations.
var DefaultOutput = Output{
	Table: "category_percent_data.csv",
	Chart: "sunburst.json",
	HTML:  "sunburst.html",
	Color: true,
}

const DefaultServerAddr = ":8080"
