package cmd

import (
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tools and packages in the local inventory",
	Long: `List every platform tool version fetched into the inventory, and every
installed package.

Examples:
  volta list`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sess, err := newSession()
		if err != nil {
			fail(err)
		}

		inv := sess.Inventory()
		ui.Header("Tools:")
		any := false
		for _, kind := range toolkind.PlatformKinds() {
			versions := inv.ListVersions(kind)
			if len(versions) == 0 {
				continue
			}
			any = true
			ui.Printf("  %s:\n", ui.Highlight(kind.String()))
			for _, v := range versions {
				ui.Printf("    %s\n", ui.HighlightVersion(v))
			}
		}
		if !any {
			ui.Info("  no tools fetched yet")
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

		ui.Header("Packages:")
		if len(records) == 0 {
			ui.Info("  no packages installed")
			return
		}
		for _, r := range records {
			ui.Printf("  %s %s\n", ui.Highlight(r.Name), ui.HighlightVersion(r.Version))
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
