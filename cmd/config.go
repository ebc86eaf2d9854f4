// cmd/config.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aceteam-ai/hacker-dash/internal/config"
	"github.com/aceteam-ai/hacker-dash/internal/tui"
	"github.com/aceteam-ai/hacker-dash/internal/ui"
)

var configShow bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure API keys and the default provider",
	Long: `Prompt for an API key per provider (input is hidden; press Enter to keep
the current key) and pick the default provider. Keys are stored in the
config file with owner-only permissions.

Environment variables override stored keys:
  ANTHROPIC_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY, HACKER_DASH_PROVIDER`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShow, "show", false, "Print the current configuration with keys masked")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	if configShow {
		showConfig(cfg, path)
		return nil
	}

	fmt.Println(tui.TitleStyle.Render("═══ Hacker Dash Configuration ═══"))

	var configured []ui.Choice
	for _, name := range config.ProviderNames() {
		current := cfg.Provider(name).APIKey
		hint := "Enter to skip"
		if current != "" {
			hint = "Enter to keep " + config.MaskKey(current)
		}
		fmt.Println(tui.SubtitleStyle.Render(name) + " " + tui.MutedStyle.Render("("+hint+")"))

		key, err := ui.AskSecret("API Key: ")
		if err != nil {
			return err
		}
		if key != "" {
			cfg.SetAPIKey(name, key)
			current = key
		}
		if current != "" {
			configured = append(configured, ui.Choice{Label: name, Note: config.MaskKey(current)})
		}
	}

	sl := ui.NewStatusLine()
	if len(configured) == 0 {
		sl.Fail("You must provide at least one API key!")
		return config.ErrNoAPIKey
	}

	def := configured[0].Label
	if len(configured) > 1 {
		def, err = ui.AskSelect("Which provider should be the default?", configured, cfg.ResolveProvider(""))
		if err != nil {
			return err
		}
	}
	cfg.DefaultProvider = def

	if err := config.Save(path, cfg); err != nil {
		return err
	}
	sl.Success("Configuration saved to " + path)
	sl.Info("Default provider: " + def)
	return nil
}

func showConfig(cfg *config.Config, path string) {
	pairs := [][2]string{
		{"Config file", path},
		{"Default provider", cfg.ResolveProvider("")},
	}
	for _, name := range config.ProviderNames() {
		pc := cfg.Provider(name)
		key := "not set"
		if pc.APIKey != "" {
			key = config.MaskKey(pc.APIKey)
		}
		if pc.Model != "" {
			key += " (" + pc.Model + ")"
		}
		pairs = append(pairs, [2]string{name, key})
	}
	fmt.Println(tui.KeyValueBlock(pairs))
}
