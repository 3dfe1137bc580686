package cmd

import (
	"context"

	"github.com/voltajs/volta/src/internal/image"
	"github.com/voltajs/volta/src/internal/session"
	"github.com/voltajs/volta/src/internal/toolkind"
	"github.com/voltajs/volta/src/internal/ui"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install <tool>[@version]",
	Short: "Fetch a tool and set it as your default",
	Long: `Fetch a tool version and make it the default used outside any pinned project.

For a package (anything that isn't node, npm, pnpm, or yarn), this runs the
package's own installer inside a temporary image and exposes its binaries
on your PATH.

Examples:
  volta install node@18.16.0
  volta install yarn@latest
  volta install typescript@5.4.2`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tool, err := parseToolArg(args[0])
		if err != nil {
			ui.Error("%v", err)
			return
		}

		sess, err := newSession()
		if err != nil {
			fail(err)
		}
		ctx := context.Background()

		if tool.Kind == toolkind.Package {
			installPackage(ctx, sess, tool)
			return
		}
		installPlatformTool(ctx, sess, tool)
	},
}

func installPlatformTool(ctx context.Context, sess *session.Session, tool toolArg) {
	resolver, err := sess.Resolver()
	if err != nil {
		ui.Error("%v", err)
		return
	}

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

	def, err := sess.DefaultPlatform()
	if err != nil {
		ui.Error("%v", err)
		return
	}
	setPlatformField(&def, tool.Kind, resolved.String())
	if err := sess.SetDefaultPlatform(def); err != nil {
		ui.Error("%v", err)
		return
	}

	ui.Success("set %s %s as the default", tool.Kind, resolved.String())
}

func installPackage(ctx context.Context, sess *session.Session, tool toolArg) {
	installer, err := newInstaller(sess)
	if err != nil {
		ui.Error("%v", err)
		return
	}

	def, err := sess.DefaultPlatform()
	if err != nil {
		ui.Error("%v", err)
		return
	}
	resolver := image.Resolver{Default: def}
	proj, err := sess.Project()
	if err != nil {
		ui.Error("%v", err)
		return
	}
	img, err := resolver.Resolve(proj, image.Override{})
	if err != nil {
		ui.Error("%v", err)
		ui.Info("install a node version first: volta install node@latest")
		return
	}

	spinner := ui.NewSpinner("Installing " + tool.Package + "...")
	spinner.Start()
	record, err := installer.Install(ctx, tool.Package, tool.Spec, img)
	if err != nil {
		spinner.Error("Install failed")
		ui.Error("%v", err)
		return
	}
	spinner.Success("Installed " + tool.Package + " " + record.Version)
	ui.Info("exposed binaries: %v", record.Shims)
}

func init() {
	rootCmd.AddCommand(installCmd)
}
