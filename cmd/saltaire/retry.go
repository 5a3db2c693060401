package main

import (
	"fmt"

	"github.com/spf13/cobra"

	guide "github.com/saltaire-guide/site"
)

func (c *cli) retryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Forward pending and failed form submissions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.siteConfig()
			if err != nil {
				return err
			}
			app := guide.New(cfg)
			if err := app.Setup(); err != nil {
				return err
			}
			defer app.Close()
			n, err := app.RetryPending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "forwarded %d submissions\n", n)
			return nil
		},
	}
}
