package cmd

import (
	"context"
	"os"

	"github.com/voltajs/volta/src/internal/image"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/voltajs/volta/src/internal/version"
	"github.com/spf13/cobra"
)

var (
	runNode string
	runNpm  string
	runPnpm string
	runYarn string
)

var runCmd = &cobra.Command{
	Use:   "run -- <command> [args...]",
	Short: "Run a command with a one-off platform override",
	Long: `Run a command with --node/--npm/--pnpm/--yarn overriding the resolved
platform for just this invocation, ahead of the project pin and default.

Examples:
  volta run --node 20.11.0 -- node --version
  volta run --npm 8.19.2 -- npm install`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		override, err := parseRunOverride()
		if err != nil {
			ui.Error("%v", err)
			return
		}

		sess, err := newSession()
		if err != nil {
			fail(err)
		}
		exec, err := newExecutor(sess)
		if err != nil {
			ui.Error("%v", err)
			return
		}

		proj, err := sess.Project()
		if err != nil {
			ui.Error("%v", err)
			return
		}
		def, err := sess.DefaultPlatform()
		if err != nil {
			ui.Error("%v", err)
			return
		}
		img, err := (image.Resolver{Default: def}).Resolve(proj, override)
		if err != nil {
			ui.Error("%v", err)
			return
		}

		ctx := context.Background()
		fetcher := newFetcher(sess)
		for _, kind := range toolkind.PlatformKinds() {
			sourced, ok := img.Get(kind)
			if !ok {
				continue
			}
			if err := fetcher.Fetch(ctx, kind, sourced.Value.String()); err != nil {
				ui.Error("%v", err)
				return
			}
		}

		os.Exit(exec.RunOverride(ctx, override, args))
	},
}

func parseRunOverride() (image.Override, error) {
	var override image.Override
	if runNode != "" {
		v, err := version.Parse(runNode)
		if err != nil {
			return image.Override{}, err
		}
		override.Runtime = &v
	}
	if runNpm != "" {
		v, err := version.Parse(runNpm)
		if err != nil {
			return image.Override{}, err
		}
		override.Npm = &v
	}
	if runPnpm != "" {
		v, err := version.Parse(runPnpm)
		if err != nil {
			return image.Override{}, err
		}
		override.Pnpm = &v
	}
	if runYarn != "" {
		v, err := version.Parse(runYarn)
		if err != nil {
			return image.Override{}, err
		}
		override.Yarn = &v
	}
	return override, nil
}

func init() {
	runCmd.Flags().StringVar(&runNode, "node", "", "override the node version for this invocation")
	runCmd.Flags().StringVar(&runNpm, "npm", "", "override the npm version for this invocation")
	runCmd.Flags().StringVar(&runPnpm, "pnpm", "", "override the pnpm version for this invocation")
	runCmd.Flags().StringVar(&runYarn, "yarn", "", "override the yarn version for this invocation")
	rootCmd.AddCommand(runCmd)
}
