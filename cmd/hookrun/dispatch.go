package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanmxa/hookrun/internal/config"
	"github.com/yanmxa/hookrun/internal/event"
	"github.com/yanmxa/hookrun/internal/hooks"
)

var (
	dispatchEventType    string
	dispatchFields       []string
	dispatchPayloadStdin bool
	dispatchDryRun       bool
)

func init() {
	dispatchCmd.Flags().StringVarP(&dispatchEventType, "event", "e", "", "event type to dispatch (required)")
	dispatchCmd.Flags().StringArrayVarP(&dispatchFields, "field", "f", nil, "payload field as key=value (repeatable)")
	dispatchCmd.Flags().BoolVar(&dispatchPayloadStdin, "payload-stdin", false, "read payload fields as a JSON object from stdin")
	dispatchCmd.Flags().BoolVar(&dispatchDryRun, "dry-run", false, "report which hooks would run without executing them")
	_ = dispatchCmd.MarkFlagRequired("event")

	rootCmd.AddCommand(dispatchCmd)
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Dispatch a lifecycle event to the configured hooks",
	Long: `Dispatch matches the configured hooks against an event and runs
them sequentially. Each hook receives the serialized event on stdin.
The command exits non-zero when a security error or a stop-mode
failure aborts the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := resolveOptions()
		if err != nil {
			return err
		}

		settings, err := config.NewLoader(opts.ProjectRoot).Load()
		if err != nil {
			return fmt.Errorf("load hooks config: %w", err)
		}

		payload, err := buildPayload()
		if err != nil {
			return err
		}
		ev := event.New(dispatchEventType, payload)

		engine, err := newDispatcher(opts)
		if err != nil {
			return err
		}

		if dispatchDryRun {
			printDryRun(cmd.OutOrStdout(), engine.DryRun(ev, settings.Hooks))
			return nil
		}

		results, dispatchErr := engine.Dispatch(cmd.Context(), ev, settings.Hooks)
		printResults(cmd.OutOrStdout(), ev, results)
		return dispatchErr
	},
}

// buildPayload assembles the event payload from --field flags and,
// optionally, a JSON object piped on stdin. Flags win over stdin keys.
func buildPayload() (map[string]any, error) {
	payload := make(map[string]any)

	if dispatchPayloadStdin {
		data, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return nil, fmt.Errorf("read payload from stdin: %w", err)
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &payload); err != nil {
				return nil, fmt.Errorf("parse payload JSON: %w", err)
			}
		}
	}

	for _, f := range dispatchFields {
		key, value, ok := strings.Cut(f, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --field %q, expected key=value", f)
		}
		payload[key] = value
	}
	return payload, nil
}

func printDryRun(w io.Writer, matched []config.Hook) {
	if len(matched) == 0 {
		fmt.Fprintln(w, "no hooks would run")
		return
	}
	fmt.Fprintf(w, "%d hook(s) would run:\n", len(matched))
	for _, h := range matched {
		fmt.Fprintf(w, "  %s  (script=%s timeout=%ds fail_mode=%s)\n",
			h.Name, h.Script, h.TimeoutSeconds, h.FailMode)
	}
}

func printResults(w io.Writer, ev event.Event, results []hooks.HookResult) {
	fmt.Fprintf(w, "event %s (%s): %d hook(s) ran\n", ev.Type, ev.ID, len(results))
	for _, r := range results {
		line := fmt.Sprintf("  %-8s %s  %dms", r.Status, r.HookName, r.DurationMs)
		if r.ExitCode != nil {
			line += fmt.Sprintf("  exit=%d", *r.ExitCode)
		}
		if r.ErrorMessage != "" {
			line += "  " + r.ErrorMessage
		}
		fmt.Fprintln(w, line)
	}
}
