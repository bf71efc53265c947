package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tempo/internal/app"
	"github.com/dori/tempo/internal/config"
	"github.com/dori/tempo/internal/ui"
	"github.com/dori/tempo/internal/ui/theme"
	"github.com/spf13/cobra"
)

var Version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, themeName string

	rootCmd := &cobra.Command{
		Use:           "tempo",
		Short:         "tempo - todos with reminders and work sessions",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg, themeName)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.config/tempo/config.yaml)")
	rootCmd.Flags().StringVar(&themeName, "theme", "", "Theme name (nord, dracula)")

	rootCmd.AddCommand(addCmd(&configPath))
	rootCmd.AddCommand(listCmd(&configPath))
	rootCmd.AddCommand(exportCmd(&configPath))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tempo v%s\n", Version)
		},
	}
}

// openCommand loads config and opens the store without taking the TUI lock
func openCommand(ctx context.Context, configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, app.ModeCommand)
	if err != nil {
		return nil, err
	}
	if err := a.Start(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func runTUI(ctx context.Context, cfg *config.Config, themeName string) error {
	if themeName == "" {
		themeName = cfg.UI.Theme
	}
	t, ok := theme.ByName(themeName)
	if !ok {
		return fmt.Errorf("unknown theme %q", themeName)
	}
	theme.SetTheme(t)

	application, err := app.New(cfg, app.ModeInteractive)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Start(ctx); err != nil {
		return err
	}

	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
		tea.WithContext(application.Context()),
	)

	_, err = p.Run()
	return err
}
