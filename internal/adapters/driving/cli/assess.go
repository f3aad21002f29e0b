package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voltfolio/evisync/internal/core/domain"
)

var (
	assessStatus   string
	assessFeedback string
	assessAssessor string
)

var assessCmd = &cobra.Command{
	Use:   "assess [id-or-url]",
	Short: "Record an assessment outcome on an evidence file",
	Long: `Writes assessment status, feedback and assessor name back to the
remote store. The evidence is addressed by its remote id or viewer URL.`,
	Args: cobra.ExactArgs(1),
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().StringVarP(&assessStatus, "status", "s", "", "outcome: approved, rejected, needs_revision or pending (required)")
	assessCmd.Flags().StringVarP(&assessFeedback, "feedback", "f", "", "feedback for the candidate")
	assessCmd.Flags().StringVarP(&assessAssessor, "assessor", "a", "", "assessor name")
	assessCmd.MarkFlagRequired("status") //nolint:errcheck
	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) error {
	if err := initEngine(); err != nil {
		return err
	}

	ref := refFromArg(args[0])
	status := domain.ParseStatus(assessStatus)

	if err := evidenceService.UpdateAssessment(cmd.Context(), ref, status, assessFeedback, assessAssessor); err != nil {
		return fmt.Errorf("updating assessment: %w", err)
	}

	cmd.Printf("Assessment recorded: %s\n", status)
	return nil
}

// refFromArg treats URL-shaped arguments as viewer URLs and everything else
// as remote ids.
func refFromArg(arg string) domain.EvidenceRef {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return domain.EvidenceRef{WebURL: arg}
	}
	return domain.EvidenceRef{ID: arg}
}
