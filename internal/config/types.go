// Package config loads the xmltab profile: which elements are records, how
// derived fields are named, which columns show, and the view defaults.
package config

import (
	"fmt"

	"github.com/oakwood-commons/xmltab/internal/columns"
	"github.com/oakwood-commons/xmltab/internal/detect"
	"github.com/oakwood-commons/xmltab/internal/engine"
	"github.com/oakwood-commons/xmltab/internal/rowbuild"
)

// Config is the merged profile.
type Config struct {
	App     AppConfig           `yaml:"app" json:"app" toml:"app"`
	Records RecordsConfig       `yaml:"records" json:"records" toml:"records"`
	Fields  rowbuild.Fields     `yaml:"fields" json:"fields" toml:"fields"`
	Columns columns.Policy      `yaml:"columns" json:"columns" toml:"columns"`
	View    ViewConfig          `yaml:"view" json:"view" toml:"view"`
	Status  engine.StatusPolicy `yaml:"status" json:"status" toml:"status"`
	Labels  LabelsConfig        `yaml:"labels" json:"labels" toml:"labels"`
	Theme   ThemeConfig         `yaml:"theme" json:"theme" toml:"theme"`
}

// AppConfig holds descriptive metadata shown by --help and version.
type AppConfig struct {
	About AboutConfig `yaml:"about" json:"about" toml:"about"`
	CLI   CLIConfig   `yaml:"cli" json:"cli" toml:"cli"`
}

type AboutConfig struct {
	Name          string `yaml:"name" json:"name" toml:"name"`
	Description   string `yaml:"description" json:"description" toml:"description"`
	License       string `yaml:"license,omitempty" json:"license,omitempty" toml:"license,omitempty"`
	RepositoryURL string `yaml:"repository_url,omitempty" json:"repository_url,omitempty" toml:"repository_url,omitempty"`
}

// CLIConfig holds help text. HelpDescription is a text/template rendered
// with .name and .group_key.
type CLIConfig struct {
	HelpDescription string `yaml:"help_description,omitempty" json:"help_description,omitempty" toml:"help_description,omitempty"`
}

// RecordsConfig controls record detection.
type RecordsConfig struct {
	PreferredTags []string `yaml:"preferred_tags" json:"preferred_tags" toml:"preferred_tags"`
}

// ViewConfig holds the initial view toggles.
type ViewConfig struct {
	Simple           bool `yaml:"simple" json:"simple" toml:"simple"`
	Grouping         bool `yaml:"grouping" json:"grouping" toml:"grouping"`
	SuppressResolved bool `yaml:"suppress_resolved" json:"suppress_resolved" toml:"suppress_resolved"`
}

// LabelsConfig names the synthetic values shown to users.
type LabelsConfig struct {
	NoKey      string `yaml:"no_key" json:"no_key" toml:"no_key"`
	Empty      string `yaml:"empty" json:"empty" toml:"empty"`
	EmptyToken string `yaml:"empty_token" json:"empty_token" toml:"empty_token"`
}

// ThemeConfig holds ANSI colors as lipgloss color strings ("12", "#ff8800").
type ThemeConfig struct {
	HeaderFG       string `yaml:"header_fg" json:"header_fg" toml:"header_fg"`
	HeaderBG       string `yaml:"header_bg" json:"header_bg" toml:"header_bg"`
	KeyColor       string `yaml:"key_color" json:"key_color" toml:"key_color"`
	ValueColor     string `yaml:"value_color" json:"value_color" toml:"value_color"`
	SeparatorColor string `yaml:"separator_color" json:"separator_color" toml:"separator_color"`
	GroupColor     string `yaml:"group_color" json:"group_color" toml:"group_color"`
	DoneColor      string `yaml:"done_color" json:"done_color" toml:"done_color"`
	SelectedFG     string `yaml:"selected_fg" json:"selected_fg" toml:"selected_fg"`
	SelectedBG     string `yaml:"selected_bg" json:"selected_bg" toml:"selected_bg"`
	StatusError    string `yaml:"status_error" json:"status_error" toml:"status_error"`
}

// Validate reports settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Fields.GroupKey == "" {
		return fmt.Errorf("fields.group_key must not be empty")
	}
	if c.Fields.Message == "" {
		return fmt.Errorf("fields.message must not be empty")
	}
	if err := c.Status.Validate(); err != nil {
		return fmt.Errorf("status: %w", err)
	}
	return nil
}

// DetectOptions returns detector options for the profile.
func (c Config) DetectOptions() detect.Options {
	preferred := c.Records.PreferredTags
	if preferred == nil {
		preferred = []string{}
	}
	return detect.Options{Preferred: preferred}
}

// Policy returns the table-engine policy for the profile.
func (c Config) Policy() engine.Policy {
	return engine.Policy{
		GroupKey:   c.Fields.GroupKey,
		CodeKeys:   c.Fields.CodeKeys,
		Status:     c.Status,
		Columns:    c.Columns,
		NoKeyLabel: c.Labels.NoKey,
		EmptyToken: c.Labels.EmptyToken,
		EmptyLabel: c.Labels.Empty,
	}
}
