package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"cmdpal/internal/config"
	"cmdpal/internal/eventbus"
	"cmdpal/internal/logging"
	"cmdpal/internal/ui"
)

// errAborted ends the run without a choice, like fzf on Esc
var errAborted = errors.New("aborted")

var (
	configPath string
	logPath    string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "cmdpal",
	Short: "A keyboard-driven command palette for the terminal",
	Long: `cmdpal shows a filterable, grouped list of commands loaded from a TOML file.

Type to narrow the list, move with the arrow keys and press Enter to choose.
The chosen command's output value is printed on stdout so cmdpal can be
used from shell scripts:

  eval "$(cmdpal)"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logPath == "" {
			return nil
		}
		return logging.Init(logPath, debug)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
	RunE: runPalette,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "palette file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "write logs to this file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errAborted) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func runPalette(cmd *cobra.Command, args []string) error {
	// Create context for graceful shutdown
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bus := eventbus.New()
	defer bus.Close()

	bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.ErrorEvent); ok {
			logging.Error(event.Message, "error", event.Err)
		}
	})
	bus.Subscribe(eventbus.EventPaletteReady, func(e eventbus.DomainEvent) {
		if event, ok := e.(eventbus.PaletteReadyEvent); ok {
			logging.Debug("palette ready", "items", event.Items)
		}
	})

	cfg, err := config.NewConfigServiceWithBus(configPath, bus).Load()
	if err != nil {
		return err
	}

	model, err := ui.NewModel(bus, cfg)
	if err != nil {
		return err
	}

	// The UI draws on stderr so stdout carries only the chosen value
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
	)
	model.SetProgram(p)

	logging.Info("starting palette", "config", configPath)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return errAborted
		}
		return errors.Wrap(err, "palette failed")
	}

	chosen, ok := model.Chosen()
	if !ok {
		return errAborted
	}
	fmt.Fprintln(cmd.OutOrStdout(), chosen.Output)
	return nil
}
