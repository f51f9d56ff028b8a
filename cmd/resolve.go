package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"go.quickrt.io/quickrt/js/modules"
	"go.quickrt.io/quickrt/lib/fsext"
	"go.quickrt.io/quickrt/loader"
)

// getResolveCmd returns the "resolve" subcommand: a diagnostic tool that
// runs a specifier through the resolution cascade and prints the outcome,
// so users can see which file and format an import would pick up.
func getResolveCmd(root *rootCommand) *cobra.Command {
	var parentURL string

	cmd := &cobra.Command{
		Use:   "resolve <specifier>",
		Short: "Resolve a module specifier and print its URL and format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs := fsext.NewOsFs()
			resolver := modules.NewResolver(
				fs, root.logger, root.opts.WorkDir, modules.DefaultBuiltins(), nil)
			resolver.SetPlatform(root.opts.Platform)
			registry := modules.NewRegistry(fs, root.logger, resolver)

			rctx := &modules.ResolveContext{}
			if parentURL != "" {
				parent, err := loader.ParseFileURL(parentURL)
				if err != nil {
					return err
				}
				rctx.ParentURL = parent
			}

			res, err := registry.Resolve(args[0], rctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "url:    %s\n", color.CyanString(res.URL.String()))
			fmt.Fprintf(out, "format: %s\n", color.GreenString(string(res.Format)))
			if res.Synthetic() {
				fmt.Fprintf(out, "source: %s\n", color.YellowString("synthetic (%d bytes)", len(res.Source)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&parentURL, "parent", "",
		"file:// URL of the importing module; empty means entry-point resolution")
	return cmd
}
