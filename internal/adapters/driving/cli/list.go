package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voltfolio/evisync/internal/core/domain"
)

var (
	listUnit string
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List evidence files in the remote store",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listUnit, "unit", "u", "", "only list evidence for this unit code")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if err := initEngine(); err != nil {
		return err
	}

	records, err := evidenceService.ListEvidence(cmd.Context(), listUnit)
	if err != nil {
		return fmt.Errorf("listing evidence: %w", err)
	}

	if listJSON {
		return outputListJSON(cmd, records)
	}
	return outputListTable(cmd, records)
}

func outputListJSON(cmd *cobra.Command, records []domain.EvidenceRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputListTable(cmd *cobra.Command, records []domain.EvidenceRecord) error {
	if len(records) == 0 {
		cmd.Println("No evidence found.")
		return nil
	}

	for i := range records {
		rec := &records[i]
		cmd.Printf("[%s %s] %s\n", rec.UnitCode, rec.CriteriaCode, rec.Name)
		cmd.Printf("    status: %s", rec.Assessment.Status)
		if rec.Assessment.AssessorName != "" {
			cmd.Printf("  assessor: %s", rec.Assessment.AssessorName)
		}
		cmd.Println()
		if rec.Assessment.Feedback != "" {
			cmd.Printf("    feedback: %s\n", rec.Assessment.Feedback)
		}
		if rec.WebURL != "" {
			cmd.Printf("    url: %s\n", rec.WebURL)
		}
	}
	cmd.Printf("\n%d evidence file(s)\n", len(records))
	return nil
}
