package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/veritas/internal/config"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configForce bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Veritas configuration",
	Long: `Manage Veritas configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (VERITAS_*, e.g. VERITAS_LLM_PROVIDER)
3. Config file (~/.veritas/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfig.Source != "" {
			cmd.PrintErrf("Configuration file: %s\n\n", appConfig.Source)
		} else {
			cmd.PrintErrf("No configuration file found (using defaults)\n\n")
		}

		shown := *appConfig
		if shown.LLM.APIKey != "" {
			shown.LLM.APIKey = "********"
		}

		data, err := yaml.Marshal(&shown)
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Create a configuration file with every option at its default value (~/.veritas/config.yaml unless --config is given).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = filepath.Join(config.HomeDir(), "config.yaml")
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}

		data, err := yaml.Marshal(config.Default())
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}

		header := "# Veritas configuration\n" +
			"#\n" +
			"# API keys are best kept in the environment:\n" +
			"#   export GEMINI_API_KEY=...      (provider: gemini)\n" +
			"#   export OPENAI_API_KEY=sk-...   (provider: openai)\n" +
			"#   export ANTHROPIC_API_KEY=...   (provider: anthropic)\n" +
			"# Ollama needs base_url (default http://localhost:11434) and a model.\n\n"

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return eris.Wrap(err, "create config directory")
		}
		if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
			return eris.Wrap(err, "write config")
		}

		cmd.Printf("✓ Created default configuration: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
}
