package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"survey-insights-go/internal/dataset"
	"survey-insights-go/internal/hierarchy"
)

// Config is the top-level surveyinsights configuration.
type Config struct {
	Sources   Sources   `mapstructure:"sources"`
	Columns   Columns   `mapstructure:"columns"`
	Mapping   Mapping   `mapstructure:"mapping"`
	Hierarchy Hierarchy `mapstructure:"hierarchy"`
	Output    Output    `mapstructure:"output"`
	Store     Store     `mapstructure:"store"`
	Server    Server    `mapstructure:"server"`
	Log       Log       `mapstructure:"log"`
}

// Sources locates the three input tables. Each may be a path or an http(s) URL.
type Sources struct {
	ExitSurvey       string        `mapstructure:"exit_survey"`
	EngagementSurvey string        `mapstructure:"engagement_survey"`
	Mapping          string        `mapstructure:"mapping"`
	Encoding         string        `mapstructure:"encoding"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
}

// Columns holds the header names read from the input tables.
type Columns struct {
	Question  string `mapstructure:"question"`
	Answer    string `mapstructure:"answer"`
	Category1 string `mapstructure:"category_1"`
	Category2 string `mapstructure:"category_2"`
	Category3 string `mapstructure:"category_3"`
}

// Alias rewrites a level-2 category label.
type Alias struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// Mapping configures mapping table preprocessing.
type Mapping struct {
	Aliases []Alias `mapstructure:"aliases"`
}

// Hierarchy configures node identity and the row order used to discover nodes.
type Hierarchy struct {
	KeyMode string `mapstructure:"key_mode"`
	Source  string `mapstructure:"source"`
}

// Output defines output destinations. An empty path disables that output.
type Output struct {
	Table string `mapstructure:"table"`
	Chart string `mapstructure:"chart"`
	HTML  string `mapstructure:"html"`
	Color bool   `mapstructure:"color"`
}

// Store locates the run history database. An empty path disables persistence.
type Store struct {
	Path string `mapstructure:"path"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// applies SURVEY_* environment overrides and returns a validated Config.
// A .env file in the working directory is loaded first when present.
func Load(cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("sources.exit_survey", DefaultSources.ExitSurvey)
	v.SetDefault("sources.engagement_survey", DefaultSources.EngagementSurvey)
	v.SetDefault("sources.mapping", DefaultSources.Mapping)
	v.SetDefault("sources.encoding", DefaultSources.Encoding)
	v.SetDefault("sources.fetch_timeout", DefaultSources.FetchTimeout)
	v.SetDefault("columns.question", DefaultColumns.Question)
	v.SetDefault("columns.answer", DefaultColumns.Answer)
	v.SetDefault("columns.category_1", DefaultColumns.Category1)
	v.SetDefault("columns.category_2", DefaultColumns.Category2)
	v.SetDefault("columns.category_3", DefaultColumns.Category3)
	v.SetDefault("mapping.aliases", DefaultAliases)
	v.SetDefault("hierarchy.key_mode", DefaultHierarchy.KeyMode)
	v.SetDefault("hierarchy.source", DefaultHierarchy.Source)
	v.SetDefault("output.table", DefaultOutput.Table)
	v.SetDefault("output.chart", DefaultOutput.Chart)
	v.SetDefault("output.html", DefaultOutput.HTML)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("store.path", DBPath())
	v.SetDefault("server.addr", DefaultServerAddr)
	// empty keeps LOG_LEVEL / LOG_FORMAT, which the logger reads itself
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.AddConfigPath(".")
		v.SetConfigName("surveyinsights")
	}

	// Missing config file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if cfgFile != "" || !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Store.Path = expandPath(cfg.Store.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if _, err := hierarchy.ParseKeyMode(c.Hierarchy.KeyMode); err != nil {
		return err
	}
	switch c.Hierarchy.Source {
	case "", "responses", "mapping":
	default:
		return fmt.Errorf("unknown hierarchy source %q", c.Hierarchy.Source)
	}
	for _, a := range c.Mapping.Aliases {
		if a.From == "" || a.To == "" {
			return fmt.Errorf("mapping alias needs both from and to: %+v", a)
		}
	}
	return nil
}

// DatasetOptions converts the source and column settings for the loaders.
func (c *Config) DatasetOptions() dataset.Options {
	return dataset.Options{
		Columns: dataset.Columns{
			Question:  c.Columns.Question,
			Answer:    c.Columns.Answer,
			Category1: c.Columns.Category1,
			Category2: c.Columns.Category2,
			Category3: c.Columns.Category3,
		},
		Encoding:     c.Sources.Encoding,
		FetchTimeout: c.Sources.FetchTimeout,
	}
}

// AliasMap returns the level-2 aliases keyed by the label they replace.
func (c *Config) AliasMap() map[string]string {
	m := make(map[string]string, len(c.Mapping.Aliases))
	for _, a := range c.Mapping.Aliases {
		m[a.From] = a.To
	}
	return m
}

// DBPath returns the default path of the run history database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}
