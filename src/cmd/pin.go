package cmd

import (
	"context"

	"github.com/voltajs/volta/src/internal/errs"
	"github.com/voltajs/volta/src/internal/project"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/spf13/cobra"
)

var pinCmd = &cobra.Command{
	Use:   "pin <tool>[@version]",
	Short: "Pin a tool version into the current project",
	Long: `Fetch a tool version and write it into the nearest package.json's "volta" key.

Fails if no package.json is found from the current directory upward.

Examples:
  volta pin node@18.16.0
  volta pin npm@9`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tool, err := parseToolArg(args[0])
		if err != nil {
			ui.Error("%v", err)
			return
		}
		if tool.Kind == toolkind.Package {
			ui.Error("pin only supports platform tools (node, npm, pnpm, yarn)")
			return
		}

		sess, err := newSession()
		if err != nil {
			fail(err)
		}

		proj, err := sess.Project()
		if err != nil {
			ui.Error("%v", err)
			return
		}
		if proj == nil {
			ui.Error("%v", errs.New(errs.NotInProject, "pin tool version", nil).WithTool(tool.Kind.String(), ""))
			ui.Info("run this from a directory containing a package.json")
			return
		}

		resolver, err := sess.Resolver()
		if err != nil {
			ui.Error("%v", err)
			return
		}

		ctx := context.Background()
		spinner := ui.NewSpinner("Resolving " + tool.Kind.String() + "...")
		spinner.Start()
		resolved, err := resolver.Resolve(ctx, tool.Kind, tool.Spec)
		if err != nil {
			spinner.Error("Resolution failed")
			ui.Error("%v", err)
			return
		}
		spinner.Success("Resolved " + tool.Kind.String() + " " + resolved.String())

		fetcher := newFetcher(sess)
		spinner = ui.NewSpinner("Fetching " + tool.Kind.String() + " " + resolved.String() + "...")
		spinner.Start()
		if err := fetcher.Fetch(ctx, tool.Kind, resolved.String()); err != nil {
			spinner.Error("Fetch failed")
			ui.Error("%v", err)
			return
		}
		spinner.Success("Fetched " + tool.Kind.String() + " " + resolved.String())

		platform := proj.Platform
		setPlatformField(&platform, tool.Kind, resolved.String())
		if err := project.Pin(proj.ManifestPath, platform); err != nil {
			ui.Error("%v", err)
			return
		}

		ui.Success("pinned %s %s in %s", tool.Kind, resolved.String(), proj.ManifestPath)
	},
}

func init() {
	rootCmd.AddCommand(pinCmd)
}
