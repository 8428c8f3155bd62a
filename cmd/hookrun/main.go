package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yanmxa/hookrun/internal/log"
)

var (
	version = "0.1.0"
)

func init() {
	// Load .env file if it exists (silent fail if not found)
	_ = godotenv.Load()

	// Initialize logging (enabled via HOOKRUN_DEBUG=1)
	_ = log.Init()
}

func main() {
	defer log.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hookrun",
	Short: "hookrun - sandboxed lifecycle hook runner",
	Long: `hookrun runs repository-supplied hook scripts in response to
lifecycle events, enforcing a path/environment sandbox, bounded
execution time, deterministic ordering and a JSONL audit trail.

Hooks are configured in .hookrun/hooks.yaml (project level) and
~/.hookrun/hooks.yaml (user level).`,
	SilenceUsage: true,
}

var (
	flagProjectRoot string
	flagHooksRoot   string
	flagAuditDir    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProjectRoot, "project-root", "", "project root (default: cwd or HOOKRUN_PROJECT_ROOT)")
	rootCmd.PersistentFlags().StringVar(&flagHooksRoot, "hooks-root", "", "hooks root (default: <project>/.hookrun/hooks or HOOKRUN_HOOKS_ROOT)")
	rootCmd.PersistentFlags().StringVar(&flagAuditDir, "audit-dir", "", "audit log directory (default: <project>/.hookrun or HOOKRUN_AUDIT_DIR)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hookrun version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("hookrun " + version)
	},
}
