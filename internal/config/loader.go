package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/xmltab/pkg/settings"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     Config
	embeddedConfigErr  error
)

// DefaultConfigYAML returns a copy of the embedded default config.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default returns the embedded default profile.
func Default() (Config, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		embeddedConfig, embeddedConfigErr = Decode(Config{}, embeddedDefaultConfig)
		if embeddedConfigErr != nil {
			embeddedConfigErr = fmt.Errorf("decode embedded default config: %w", embeddedConfigErr)
		}
	})
	return embeddedConfig.clone(), embeddedConfigErr
}

// Decode applies the YAML in data on top of base. Keys present in data
// replace the corresponding values, lists included; absent keys keep their
// base values. Unknown keys are an error.
func Decode(base Config, data []byte) (Config, error) {
	cfg := base.clone()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, err
	}
	return cfg, nil
}

// Load returns the defaults merged with the config file at path. An empty
// path falls back to the first file found by Locate; no file at all yields
// the defaults.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path == "" {
		path = Locate()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		cfg, err = Decode(cfg, data)
		if err != nil {
			return cfg, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SearchPaths lists the user config locations in lookup order.
func SearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, settings.CliBinaryName, "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", settings.CliBinaryName, "config.yaml")
		if len(paths) == 0 || paths[0] != p {
			paths = append(paths, p)
		}
	}
	return paths
}

// Locate returns the first existing file of SearchPaths, or "".
func Locate() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// HelpDescription renders App.CLI.HelpDescription. Template errors leave the
// text as written.
func (c Config) HelpDescription() string {
	text := c.App.CLI.HelpDescription
	if !strings.Contains(text, "{{") {
		return text
	}
	tmpl, err := template.New("help").Parse(text)
	if err != nil {
		return text
	}
	var buf bytes.Buffer
	data := map[string]any{
		"name":      c.App.About.Name,
		"group_key": c.Fields.GroupKey,
		"version":   settings.VersionInformation.BuildVersion,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return text
	}
	return buf.String()
}

// clone copies the slices so callers can modify the result freely.
func (c Config) clone() Config {
	out := c
	out.Records.PreferredTags = cloneStrings(c.Records.PreferredTags)
	out.Fields.MessageKeys = cloneStrings(c.Fields.MessageKeys)
	out.Fields.CodeKeys = cloneStrings(c.Fields.CodeKeys)
	out.Fields.CodeParents = cloneStrings(c.Fields.CodeParents)
	out.Columns.Hidden = cloneStrings(c.Columns.Hidden)
	out.Columns.Priority = cloneStrings(c.Columns.Priority)
	if c.Status.Rules != nil {
		out.Status.Rules = append(c.Status.Rules[:0:0], c.Status.Rules...)
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string{}, s...)
}
