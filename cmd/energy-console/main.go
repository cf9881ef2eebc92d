package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"energy-admin/config"
	"energy-admin/internal/console"
	"energy-admin/internal/listctl"
	"energy-admin/internal/logging"
	"energy-admin/internal/remote"
	"energy-admin/internal/resource"
	"energy-admin/internal/session"
)

var (
	configPath string
	apiURL     string
	theme      string
)

var rootCmd = &cobra.Command{
	Use:           "energy-console",
	Short:         "Terminal admin console for the factory energy API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config/config.yaml"
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", defaultPath, "path to the YAML configuration")
	rootCmd.Flags().StringVar(&apiURL, "api", "", "energyd base URL (overrides console.api_url)")
	rootCmd.Flags().StringVar(&theme, "theme", "", "light or dark (overrides console.theme)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}
	if apiURL != "" {
		cfg.Console.APIURL = apiURL
	}
	if theme != "" {
		cfg.Console.Theme = theme
	}

	logger, err := logging.NewFile(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := remote.New(&cfg.Console, logger.Named("remote"))
	if err != nil {
		return err
	}
	sess := session.NewStore(client)
	client.UseTokens(sess)

	app := console.New(resource.Default(), client, client, sess, console.Options{
		Theme:   cfg.Console.Theme,
		Timeout: cfg.Console.Timeout,
		List: listctl.Config{
			Debounce:    cfg.Console.Debounce,
			RowsPerPage: cfg.Console.RowsPerPage,
			FlashTTL:    cfg.Console.Flash,
		},
	}, logger)
	defer app.Close()

	logger.Info("console starting", zap.String("api", cfg.Console.APIURL))
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
