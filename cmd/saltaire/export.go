package main

import (
	"fmt"

	"github.com/spf13/cobra"

	guide "github.com/saltaire-guide/site"
)

func (c *cli) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [dir]",
		Short: "Render the whole site to static files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := "dist"
			if len(args) == 1 {
				out = args[0]
			}
			cfg, err := c.siteConfig()
			if err != nil {
				return err
			}
			if cfg.FormEndpoint == "" {
				c.log.Warn("no form endpoint configured; exported forms will post to /forms/ which a static host cannot answer")
			}
			app := guide.New(cfg)
			stats, err := app.Export(cmd.Context(), out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pages, %d images, %d assets written to %s\n",
				stats.Pages, stats.Images, stats.Assets, out)
			return nil
		},
	}
	cmd.Flags().String("static", "", "directory of files copied under /public/")
	return cmd
}
