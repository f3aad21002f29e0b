package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	configfile "github.com/voltfolio/evisync/internal/adapters/driven/config/file"
	"github.com/voltfolio/evisync/internal/adapters/driven/storage/sqlite"
	"github.com/voltfolio/evisync/internal/core/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a local inbox directory and upload new evidence",
	Long: `Watches a directory laid out as <dir>/<unit>/<criteria>/<file> and
uploads files as they appear. Completed uploads are journaled locally so a
restart does not re-upload unchanged files.

The directory defaults to watch.dir from configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := initEngine(); err != nil {
		return err
	}

	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		dir = configStore.GetString(configfile.KeyWatchDir)
	}
	if dir == "" {
		return errors.New("no watch directory: pass one or set watch.dir")
	}

	journal, err := sqlite.NewStore(configStore.GetString(configfile.KeyDataDir))
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer journal.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher := services.NewWatcher(evidenceService, journal, dir)
	if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
