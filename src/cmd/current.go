package cmd

import (
	"github.com/voltajs/volta/src/internal/project"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the active platform",
	Long: `Show the default platform and, if the current directory is inside a
project, the project's pinned platform.

Examples:
  volta current`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sess, err := newSession()
		if err != nil {
			fail(err)
		}

		def, err := sess.DefaultPlatform()
		if err != nil {
			ui.Error("%v", err)
			return
		}
		ui.Header("Default platform:")
		printPlatform(def)

		proj, err := sess.Project()
		if err != nil {
			ui.Error("%v", err)
			return
		}
		if proj == nil {
			return
		}

		ui.Header("Project platform (%s):", proj.ManifestPath)
		printPlatform(proj.Platform)
	},
}

func printPlatform(p project.Platform) {
	if p.Node == "" {
		ui.Info("  node: (none)")
	} else {
		ui.Printf("  node: %s\n", ui.HighlightVersion(p.Node))
	}
	if p.Npm != "" {
		ui.Printf("  npm: %s\n", ui.HighlightVersion(p.Npm))
	}
	if p.Pnpm != "" {
		ui.Printf("  pnpm: %s\n", ui.HighlightVersion(p.Pnpm))
	}
	if p.Yarn != "" {
		ui.Printf("  yarn: %s\n", ui.HighlightVersion(p.Yarn))
	}
}

func init() {
	rootCmd.AddCommand(currentCmd)
}
