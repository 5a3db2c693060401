package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

// loadConfig runs initConfig against a throwaway command carrying the root
// flags, with args parsed as given.
func loadConfig(t *testing.T, yaml string, args ...string) *cli {
	t.Helper()
	cfgFile := filepath.Join(t.TempDir(), "saltaire.yaml")
	if err := os.WriteFile(cfgFile, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	c := &cli{cfgFile: cfgFile, log: log.New("test")}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("url", "", "")
	cmd.Flags().String("content", "", "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	if err := c.initConfig(cmd); err != nil {
		t.Fatalf("initConfig failed: %v", err)
	}
	return c
}

func TestSiteConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(t, "site:\n  name: Saltaire Guide\n").siteConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "Saltaire Guide" || cfg.URL != "http://localhost:3000" || cfg.Addr != ":3000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.RetryInterval != 5*time.Minute || cfg.ForwardTimeout != 15*time.Second || cfg.MaxAttempts != 5 {
		t.Errorf("forms = %v, %v, %d", cfg.RetryInterval, cfg.ForwardTimeout, cfg.MaxAttempts)
	}
}

func TestSiteConfigURLFromEnvironment(t *testing.T) {
	t.Setenv("SALTAIRE_SITE_URL", "https://saltaire.guide")
	cfg, err := loadConfig(t, "site:\n  url: https://example.org\n").siteConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.URL != "https://saltaire.guide" {
		t.Errorf("URL = %q, want the environment value", cfg.URL)
	}
}

func TestSiteConfigURLFlagWins(t *testing.T) {
	t.Setenv("SALTAIRE_SITE_URL", "https://saltaire.guide")
	cfg, err := loadConfig(t, "", "--url", "https://staging.saltaire.guide", "--content", "site").siteConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.URL != "https://staging.saltaire.guide" {
		t.Errorf("URL = %q, want the flag value", cfg.URL)
	}
	if cfg.ContentDir != "site" {
		t.Errorf("ContentDir = %q, want site", cfg.ContentDir)
	}
}

func TestSiteConfigRejectsBadDuration(t *testing.T) {
	t.Setenv("SALTAIRE_FORMS_RETRY_INTERVAL", "soon")
	_, err := loadConfig(t, "").siteConfig()
	if err == nil || !strings.Contains(err.Error(), "forms.retry_interval") {
		t.Errorf("err = %v, want a forms.retry_interval error", err)
	}
}

func TestSiteConfigDurationFromFile(t *testing.T) {
	cfg, err := loadConfig(t, "content:\n  ttl: 90s\nforms:\n  timeout: 5s\n").siteConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ContentTTL != 90*time.Second || cfg.ForwardTimeout != 5*time.Second {
		t.Errorf("ttl = %v, timeout = %v", cfg.ContentTTL, cfg.ForwardTimeout)
	}
}
