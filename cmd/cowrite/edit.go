package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/csheth/cowrite/internal/completion"
	"github.com/csheth/cowrite/internal/logging"
	"github.com/csheth/cowrite/internal/tui"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the draft editor",
	Long: `edit opens the form editor. Tab and Shift+Tab move between fields, Ctrl+N
adds a section and Ctrl+S posts the draft to the completion endpoint. Request
failures are written to the log file, never to the screen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(cmd)
	},
}

func init() {
	addEditFlags(editCmd)
	rootCmd.AddCommand(editCmd)
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().String("endpoint", completion.DefaultEndpoint, "completion URL the draft is posted to")
	cmd.Flags().Bool("no-alt-screen", false, "disable the alternate screen buffer")
	cmd.Flags().String("log-file", "cowrite.log", "file that receives editor logs (empty disables logging)")
}

func runEdit(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"endpoint": "endpoint",
		"log.file": "log-file",
	})
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.Init(cfg.Log.Level, cfg.Log.Format, logOut)
	logger.Info("editor starting", "endpoint", cfg.Endpoint)

	client := completion.New(completion.Config{Endpoint: cfg.Endpoint})

	noAltScreen, _ := cmd.Flags().GetBool("no-alt-screen")
	opts := []tea.ProgramOption{}
	if !noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Client: client,
			Logger: logger,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
