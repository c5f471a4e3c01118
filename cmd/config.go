package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/xmltab/internal/config"
)

var (
	configOutput  string // for configCmd (default: yaml)
	configDefault bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the merged xmltab profile",
	Long: "Print the profile xmltab runs with: the built-in defaults merged with --config-file,\n" +
		"or with $XDG_CONFIG_HOME/xmltab/config.yaml (~/.config/xmltab/config.yaml) when present.",
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if configDefault {
			fmt.Print(string(config.DefaultConfigYAML())) //nolint:forbidigo
			return nil
		}
		cfg, err := config.Load(configFile)
		if err != nil {
			return runError(err)
		}
		data, err := encodeConfig(cfg, configOutput)
		if err != nil {
			return err
		}
		fmt.Print(string(data)) //nolint:forbidigo
		return nil
	},
}

func encodeConfig(cfg config.Config, format string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return buf.Bytes(), nil
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return append(data, '\n'), nil
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config: %w", err)
		}
		return data, nil
	default:
		return nil, usageErrorf("invalid output for config: %s (use yaml|json|toml)", format)
	}
}

func init() { //nolint:gochecknoinits
	configCmd.Flags().StringVar(&configFile, "config-file", "", "path to a YAML profile merged over the defaults")
	configCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json|toml")
	configCmd.Flags().BoolVar(&configDefault, "default", false, "print the built-in default profile verbatim")
}
