package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"texshrink/internal/config"
	"texshrink/internal/processor"
	"texshrink/internal/tui"
)

// execute validates cfg, runs the processor and prints the report.
func execute(cmd *cobra.Command, cfg config.Config, f runFlags) error {
	out := cmd.OutOrStdout()

	if err := cfg.Validate(); err != nil {
		return err
	}

	if _, ignored := cfg.Policy(); ignored {
		fmt.Fprintln(out, noticeStyle.Render("Note: --overwrite is active; --output will be ignored and files will be modified in place."))
		fmt.Fprintln(out)
	}

	logger := zap.NewNop()
	if f.debug {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
		defer func() { _ = logger.Sync() }()
	}
	logger.Debug("configuration", zap.Stringer("config", cfg))

	opts := cfg.Options()
	opts.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var updates chan processor.ProgressUpdate
	uiDone := make(chan struct{})
	if f.noProgress || f.debug {
		close(uiDone)
	} else {
		updates = make(chan processor.ProgressUpdate, 64)
		model := tui.NewModel(cmd.Root().Name(), updates).WithInterrupt(stop)
		program := tea.NewProgram(model, tea.WithOutput(out))
		go func() {
			_, _ = program.Run()
			close(uiDone)
		}()
	}

	outcome, runErr := processor.Run(ctx, opts, updates)
	if updates != nil {
		close(updates)
	}
	<-uiDone

	for _, o := range outcome.Outcomes {
		if o.Status == processor.StatusSkipped && !cfg.Verbose {
			continue
		}
		fmt.Fprintln(out, tui.RenderOutcome(o))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Done.")
	fmt.Fprintln(out, tui.RenderSummary(tui.OutcomeRows(outcome)))
	if cfg.DryRun {
		fmt.Fprintln(out)
		fmt.Fprintln(out, noticeStyle.Render("(dry-run mode: no files were written)"))
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("interrupted after %d file(s)", outcome.Total())
		}
		return runErr
	}
	if outcome.Errored > 0 {
		return fmt.Errorf("%d file(s) failed: %w", outcome.Errored, errPartial)
	}
	return nil
}

var noticeStyle = lipgloss.NewStyle().Foreground(tui.ColorWarn)
