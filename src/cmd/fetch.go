package cmd

import (
	"context"

	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <tool>[@version]",
	Short: "Fetch a tool into the local inventory without activating it",
	Long: `Download and cache a tool version without changing any default or project pin.

Examples:
  volta fetch node@18.16.0
  volta fetch yarn@latest`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tool, err := parseToolArg(args[0])
		if err != nil {
			ui.Error("%v", err)
			return
		}
		if tool.Kind == toolkind.Package {
			ui.Error("fetch only supports platform tools (node, npm, pnpm, yarn)")
			ui.Info("packages are downloaded as part of 'volta install %s'", tool.Package)
			return
		}

		sess, err := newSession()
		if err != nil {
			fail(err)
		}
		resolver, err := sess.Resolver()
		if err != nil {
			ui.Error("%v", err)
			return
		}

		spinner := ui.NewSpinner("Resolving " + tool.Kind.String() + "...")
		spinner.Start()
		ctx := context.Background()
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
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
