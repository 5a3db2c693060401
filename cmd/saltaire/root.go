package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	guide "github.com/saltaire-guide/site"
)

// cli carries the state shared by every subcommand.
type cli struct {
	cfgFile string
	v       *viper.Viper
	log     *log.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{log: log.New("saltaire")}
	c.log.SetHeader("${time_rfc3339} ${level} ${prefix}")
	c.log.SetLevel(log.INFO)

	root := &cobra.Command{
		Use:           "saltaire",
		Short:         "Saltaire Guide site engine",
		Long:          "saltaire serves the Saltaire Guide, renders it to static files and audits the rendered pages.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./saltaire.yaml)")
	root.PersistentFlags().String("content", "", "content directory (default: embedded content)")
	root.PersistentFlags().String("url", "", "public base URL of the site")

	root.AddCommand(
		c.serveCmd(),
		c.exportCmd(),
		c.checkCmd(),
		c.retryCmd(),
		c.versionCmd(),
	)
	return root
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"content": "content.dir",
	"url":     "site.url",
	"addr":    "server.addr",
	"watch":   "content.watch",
	"static":  "static.dir",
}

func (c *cli) initConfig(cmd *cobra.Command) error {
	v := viper.New()

	v.SetDefault("site.name", "")
	v.SetDefault("site.url", "http://localhost:3000")
	v.SetDefault("site.description", "")
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("database.path", "data/submissions.db")
	v.SetDefault("content.dir", "")
	v.SetDefault("content.watch", false)
	v.SetDefault("content.ttl", "0s")
	v.SetDefault("static.dir", "public")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.session_secret", "")
	v.SetDefault("admin.cookie_secure", false)
	v.SetDefault("forms.endpoint", "")
	v.SetDefault("forms.rate_limit", 5)
	v.SetDefault("forms.retry_interval", "5m")
	v.SetDefault("forms.max_attempts", 5)
	v.SetDefault("forms.timeout", "15s")
	v.SetDefault("analytics.enabled", false)
	v.SetDefault("analytics.retention_days", 365)

	if c.cfgFile != "" {
		v.SetConfigFile(c.cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("saltaire")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SALTAIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && c.cfgFile == "":
			c.log.Debug("no saltaire.yaml found; using defaults and environment")
		case errors.Is(err, os.ErrNotExist), errors.As(err, &notFound):
			return fmt.Errorf("config file %s not found: %w", c.cfgFile, err)
		default:
			return fmt.Errorf("read config: %w", err)
		}
	} else {
		c.log.Infof("using config file %s", v.ConfigFileUsed())
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return bindErr
	}

	c.v = v
	return nil
}

// siteConfig builds the engine configuration from the loaded settings.
func (c *cli) siteConfig() (guide.SiteConfig, error) {
	v := c.v
	cfg := guide.SiteConfig{
		Name:          v.GetString("site.name"),
		URL:           v.GetString("site.url"),
		Description:   v.GetString("site.description"),
		Addr:          v.GetString("server.addr"),
		DatabasePath:  v.GetString("database.path"),
		ContentDir:    v.GetString("content.dir"),
		WatchContent:  v.GetBool("content.watch"),
		StaticDir:     v.GetString("static.dir"),
		AdminPassword: v.GetString("admin.password"),
		SessionSecret: v.GetString("admin.session_secret"),
		CookieSecure:  v.GetBool("admin.cookie_secure"),
		FormEndpoint:  v.GetString("forms.endpoint"),
		FormRateLimit: v.GetInt("forms.rate_limit"),
		MaxAttempts:   v.GetInt("forms.max_attempts"),

		AnalyticsEnabled:       v.GetBool("analytics.enabled"),
		AnalyticsRetentionDays: v.GetInt("analytics.retention_days"),
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"content.ttl", &cfg.ContentTTL},
		{"forms.retry_interval", &cfg.RetryInterval},
		{"forms.timeout", &cfg.ForwardTimeout},
	}
	for _, d := range durations {
		dur, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = dur
	}
	return cfg, nil
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the saltaire version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "saltaire %s\n", version)
			return nil
		},
	}
}
