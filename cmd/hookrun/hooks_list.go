package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yanmxa/hookrun/internal/audit"
	"github.com/yanmxa/hookrun/internal/config"
	"github.com/yanmxa/hookrun/internal/event"
	"github.com/yanmxa/hookrun/internal/hooks"
)

var listEventType string

func init() {
	hooksListCmd.Flags().StringVarP(&listEventType, "event", "e", "", "only show hooks matching this event type")

	hooksCmd.AddCommand(hooksListCmd)
	rootCmd.AddCommand(hooksCmd)
}

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Inspect the configured hooks",
}

var hooksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured hooks in execution order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions()
		if err != nil {
			return err
		}

		settings, err := config.NewLoader(opts.ProjectRoot).Load()
		if err != nil {
			return fmt.Errorf("load hooks config: %w", err)
		}

		list := settings.Hooks
		if listEventType != "" {
			list = hooks.Match(list, event.New(listEventType, nil))
		}

		printHooks(cmd.OutOrStdout(), list)
		return nil
	},
}

func printHooks(w io.Writer, list []config.Hook) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no hooks configured")
		return
	}
	for i, h := range list {
		fmt.Fprintf(w, "%d. %s\n", i+1, h.Name)
		fmt.Fprintf(w, "   script: %s\n", h.Script)
		fmt.Fprintf(w, "   timeout: %ds  fail_mode: %s\n", h.TimeoutSeconds, h.FailMode)
		if h.Filter.Events != "" || len(h.Filter.Fields) > 0 {
			fmt.Fprintf(w, "   filter: events=%q fields=%v\n", h.Filter.Events, h.Filter.Fields)
		}
	}
}

// resolveOptions merges environment-derived options with CLI overrides.
func resolveOptions() (config.Options, error) {
	opts, err := config.OptionsFromEnv()
	if err != nil {
		return config.Options{}, err
	}
	if flagProjectRoot != "" {
		opts.ProjectRoot = flagProjectRoot
	}
	if flagHooksRoot != "" {
		opts.HooksRoot = flagHooksRoot
	}
	if flagAuditDir != "" {
		opts.AuditDir = flagAuditDir
	}
	return opts, nil
}

// newDispatcher wires the engine for the resolved options.
func newDispatcher(opts config.Options) (*hooks.Dispatcher, error) {
	auditLog, err := audit.New(opts.AuditDir)
	if err != nil {
		return nil, err
	}
	return hooks.NewDispatcher(opts.ProjectRoot, opts.HooksRoot, auditLog), nil
}
