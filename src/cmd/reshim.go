package cmd

import (
	"github.com/voltajs/volta/src/internal/shim"
	"github.com/voltajs/volta/src/internal/toolchain"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/spf13/cobra"
)

var reshimCmd = &cobra.Command{
	Use:   "reshim",
	Short: "Regenerate every shim link",
	Long: `Recreate the shim link for every registered platform tool and every
installed package's exposed binaries.

Run this after a shim link is deleted or appears corrupted.

Example:
  volta reshim`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sess, err := newSession()
		if err != nil {
			fail(err)
		}

		var names []string
		for _, p := range toolchain.Default().GetAll() {
			names = append(names, p.Shims()...)
		}

		installer, err := newInstaller(sess)
		if err != nil {
			ui.Error("%v", err)
			return
		}
		records, err := installer.ListInstalled()
		if err != nil {
			ui.Error("%v", err)
			return
		}
		for _, r := range records {
			names = append(names, r.Shims...)
		}

		manager, err := shim.NewManager(sess.Layout())
		if err != nil {
			ui.Error("%v", err)
			return
		}

		spinner := ui.NewSpinner("Regenerating shims...")
		spinner.Start()
		if err := manager.CreateAll(names); err != nil {
			spinner.Error("Failed to regenerate shims")
			ui.Error("%v", err)
			return
		}
		spinner.Success("Regenerated shims")
	},
}

func init() {
	rootCmd.AddCommand(reshimCmd)
}
