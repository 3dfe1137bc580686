package cmd

import (
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/spf13/cobra"
)

var whichCmd = &cobra.Command{
	Use:   "which <command>",
	Short: "Show the executable a command resolves to",
	Long: `Resolve command the way a shim invocation would, without running it:
which platform tool or package owns it, its version, and the path to the
binary that would be exec'd.

Examples:
  volta which node
  volta which tsc`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		commandName := args[0]

		sess, err := newSession()
		if err != nil {
			fail(err)
		}
		exec, err := newExecutor(sess)
		if err != nil {
			ui.Error("%v", err)
			return
		}

		loc, err := exec.Locate(commandName)
		if err != nil {
			ui.Error("%v", err)
			return
		}

		ui.Header("Command: %s", ui.Highlight(commandName))
		if loc.PackageName != "" {
			ui.Info("Package:    %s", loc.PackageName)
		} else {
			ui.Info("Tool:       %s", loc.Kind)
		}
		ui.Info("Version:    %s", ui.HighlightVersion(loc.Version))
		ui.Info("Executable: %s", loc.Path)
	},
}

func init() {
	rootCmd.AddCommand(whichCmd)
}
