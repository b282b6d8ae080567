package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/trendscreen/internal/strategyconfig"
	"github.com/wonny/trendscreen/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect strategy files",
	Long: `Validates or prints a strategy YAML file.

Without a file argument the --strategy flag is used, then STRATEGY_FILE,
then the built-in defaults.

Example:
  go run ./cmd/screener config validate strategy.yaml
  go run ./cmd/screener config show`,
}

var (
	configValidateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a strategy file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigValidate,
	}

	configShowCmd = &cobra.Command{
		Use:   "show [file]",
		Short: "Print the normalized strategy and its hash",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigShow,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}

// strategyPath resolves the file a config subcommand should read.
func strategyPath(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	if strategyFile != "" {
		return strategyFile
	}
	if cfg, err := config.Load(); err == nil {
		return cfg.Screen.StrategyFile
	}
	return ""
}

func loadStrategy(args []string) (*strategyconfig.Config, string, error) {
	path := strategyPath(args)
	cfg, err := strategyconfig.LoadOrDefault(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadStrategy(args)
	if err != nil {
		PrintError(err.Error())
		return fmt.Errorf("invalid strategy")
	}

	if path == "" {
		path = "built-in defaults"
	}
	PrintSuccess("Strategy is valid: " + path)

	warnings := strategyconfig.Warn(cfg)
	if len(warnings) > 0 {
		fmt.Fprintln(out)
		items := make([]string, 0, len(warnings))
		for _, w := range warnings {
			items = append(items, fmt.Sprintf("[%s] %s", w.Code, w.Message))
		}
		PrintWarning(fmt.Sprintf("%d warning(s)", len(warnings)))
		PrintList(items)
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadStrategy(args)
	if err != nil {
		return err
	}

	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return err
	}
	data, err := strategyconfig.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "# hash: %s\n", hash)
	fmt.Fprint(out, string(data))
	return nil
}
