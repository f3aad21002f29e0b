// Package cli implements the evisync command line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voltfolio/evisync/internal/adapters/driven/auth"
	configfile "github.com/voltfolio/evisync/internal/adapters/driven/config/file"
	"github.com/voltfolio/evisync/internal/connectors/sharepoint"
	"github.com/voltfolio/evisync/internal/core/ports/driven"
	"github.com/voltfolio/evisync/internal/core/ports/driving"
	"github.com/voltfolio/evisync/internal/core/services"
	"github.com/voltfolio/evisync/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services wired by initEngine for commands that talk to the remote store.
var (
	configStore     driven.ConfigStore
	evidenceService driving.EvidenceService
)

var rootCmd = &cobra.Command{
	Use:   "evisync",
	Short: "Synchronize qualification evidence with the remote document store",
	Long: `evisync uploads electrical qualification evidence into the remote
document store's Evidence/<unit>/<criteria> hierarchy and lets assessors
review and annotate it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.evisync)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig opens the config store if it is not already open.
func loadConfig() (driven.ConfigStore, error) {
	if configStore != nil {
		return configStore, nil
	}
	store, err := configfile.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	configStore = store
	return configStore, nil
}

// initEngine wires the evidence service from configuration. Commands that
// only touch local state (version, config) never call it.
func initEngine() error {
	if evidenceService != nil {
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	siteID := cfg.GetString(configfile.KeyStoreSiteID)
	if siteID == "" {
		return errors.New("store.site_id is not configured; run: evisync config set store.site_id <site>")
	}

	tokens, err := auth.NewProviderFromConfig(cfg)
	if err != nil {
		return err
	}

	client := sharepoint.NewClient(tokens, cfg.GetString(configfile.KeyStoreBaseURL), siteID)
	evidenceService = services.NewEvidenceService(client)
	return nil
}
