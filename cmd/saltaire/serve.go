package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	guide "github.com/saltaire-guide/site"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		Long: `serve starts the HTTP server: content pages, feeds, OG images, the form
endpoints and, when an admin password is configured, the submission inbox.
With --watch, edits under the content directory are picked up without a restart.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.siteConfig()
			if err != nil {
				return err
			}
			app := guide.New(cfg)
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() { errc <- app.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			c.log.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.Echo.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return <-errc
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :3000)")
	cmd.Flags().Bool("watch", false, "reload content when files change")
	cmd.Flags().String("static", "", "directory of files served under /public/")
	return cmd
}
