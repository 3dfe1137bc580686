package cmd

import (
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/spf13/cobra"
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <package>",
	Short: "Remove an installed package",
	Long: `Remove a package's install prefix, its record, and its exposed shims.

Only third-party packages can be uninstalled this way. To stop using a
platform tool (node, npm, pnpm, yarn) as your default, install a different
version instead.

Examples:
  volta uninstall typescript`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tool, err := parseToolArg(args[0])
		if err != nil {
			ui.Error("%v", err)
			return
		}
		if tool.Kind != toolkind.Package {
			ui.Error("uninstall only supports packages, not platform tools")
			ui.Info("install a different %s version instead: volta install %s@<version>", tool.Kind, tool.Kind)
			return
		}

		sess, err := newSession()
		if err != nil {
			fail(err)
		}
		installer, err := newInstaller(sess)
		if err != nil {
			ui.Error("%v", err)
			return
		}

		spinner := ui.NewSpinner("Removing " + tool.Package + "...")
		spinner.Start()
		if err := installer.Uninstall(tool.Package); err != nil {
			spinner.Error("Uninstall failed")
			ui.Error("%v", err)
			return
		}
		spinner.Success(tool.Package + " removed")
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
}
