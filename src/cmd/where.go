package cmd

import (
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/spf13/cobra"
)

var whereCmd = &cobra.Command{
	Use:   "where <tool> <version>",
	Short: "Show the inventory directory for a fetched tool version",
	Long: `Display the full path to where a platform tool version is unpacked
in the local inventory.

Examples:
  volta where node 18.16.0
  volta where yarn 1.22.19`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		kind, ok := toolkind.Parse(args[0])
		if !ok || kind == toolkind.Package {
			ui.Error("unknown platform tool: %s", args[0])
			return
		}
		version := args[1]

		sess, err := newSession()
		if err != nil {
			fail(err)
		}
		inv := sess.Inventory()
		if !inv.Has(kind, version) {
			ui.Error("%s %s is not in the inventory", kind, version)
			ui.Info("fetch it first: volta fetch %s@%s", kind, version)
			return
		}

		ui.Println(inv.UnpackedRoot(kind, version))
	},
}

func init() {
	rootCmd.AddCommand(whereCmd)
}
