package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id-or-url]",
	Short: "Delete an evidence file from the remote store",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := initEngine(); err != nil {
		return err
	}

	ref := refFromArg(args[0])
	if err := evidenceService.DeleteEvidence(cmd.Context(), ref); err != nil {
		return fmt.Errorf("deleting evidence: %w", err)
	}

	cmd.Println("Evidence deleted.")
	return nil
}
