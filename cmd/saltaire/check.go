package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	guide "github.com/saltaire-guide/site"
	"github.com/saltaire-guide/site/audit"
	"github.com/saltaire-guide/site/content"
	"github.com/saltaire-guide/site/views"
)

func (c *cli) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the content and audit every rendered page",
		Long: `check loads the content tree, renders every page and reports broken internal
links, structured data that disagrees with the visible page, wrong canonical
URLs and declared sections that rendered empty. It exits non-zero on any issue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.siteConfig()
			if err != nil {
				return err
			}
			app := guide.New(cfg)
			site, err := app.LoadSite()
			if err != nil {
				return err
			}
			a := audit.New(site, app.Config.URL)
			a.Assets = app.PublicFS()
			rep, err := a.Check(cmd.Context(), func(ctx context.Context, w io.Writer, p *content.Page) error {
				return app.RenderPage(ctx, w, site, p, views.FormState{})
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, is := range rep.Issues {
				fmt.Fprintln(out, is)
			}
			if !rep.OK() {
				return fmt.Errorf("%d issues in %d pages", len(rep.Issues), rep.Pages)
			}
			fmt.Fprintf(out, "%d pages checked, no issues\n", rep.Pages)
			return nil
		},
	}
}
