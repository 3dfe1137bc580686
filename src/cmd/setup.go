package cmd

import (
	"github.com/voltajs/volta/src/internal/layout"
	"github.com/voltajs/volta/src/internal/pathenv"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set up Volta's directories and shell PATH",
	Long: `Create Volta's home directory layout and add its bin/ directory to your
shell profile's PATH.

Run this once after installing Volta.

Example:
  volta setup`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ui.Header("Setting up Volta...")

		l := layout.Default()
		spinner := ui.NewSpinner("Creating directories...")
		spinner.Start()
		if err := l.EnsureDirectories(); err != nil {
			spinner.Error("Failed to create directories")
			ui.Error("%v", err)
			return
		}
		spinner.Success("Directories created")

		if err := pathenv.Setup(l.Bin); err != nil {
			ui.Error("Failed to configure PATH: %v", err)
			ui.Info("You can manually add %s to your PATH", l.Bin)
			return
		}

		ui.Success("Volta is set up")
		ui.Info("\nNext steps:")
		ui.Info("  1. Restart your shell (required for PATH changes)")
		ui.Info("  2. Run: volta install node@latest")
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
