package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/voltfolio/evisync/internal/core/ports/driving"
)

var (
	uploadUnit     string
	uploadCriteria string
	uploadMIME     string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload an evidence file",
	Long: `Uploads a local file into Evidence/<unit>/<criteria> in the remote
store. Dots in unit and criteria codes become underscores in folder names;
compound criteria like 1.2.3.4 file under their first pair (1.2).`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadUnit, "unit", "u", "", "qualification unit code, e.g. ELTK.03 (required)")
	uploadCmd.Flags().StringVarP(&uploadCriteria, "criteria", "c", "", "criteria code, e.g. 1.2 (required)")
	uploadCmd.Flags().StringVar(&uploadMIME, "mime", "", "content type (default: derived from extension)")
	uploadCmd.MarkFlagRequired("unit")     //nolint:errcheck
	uploadCmd.MarkFlagRequired("criteria") //nolint:errcheck
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := initEngine(); err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	mimeType := uploadMIME
	if mimeType == "" {
		mimeType = mime.TypeByExtension(filepath.Ext(path))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	lastPercent := -1
	rec, err := evidenceService.UploadEvidence(cmd.Context(), driving.UploadInput{
		Data:         data,
		MIMEType:     mimeType,
		FileName:     filepath.Base(path),
		UnitCode:     uploadUnit,
		CriteriaCode: uploadCriteria,
		Reread:       func() ([]byte, error) { return os.ReadFile(path) },
		OnProgress: func(percent int) {
			if percent != lastPercent {
				lastPercent = percent
				fmt.Fprintf(cmd.ErrOrStderr(), "\rUploading... %d%%", percent)
			}
		},
	})
	if lastPercent >= 0 {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	cmd.Printf("Uploaded %s (%d bytes)\n", rec.Name, rec.Size)
	cmd.Printf("  Unit:     %s\n", rec.UnitCode)
	cmd.Printf("  Criteria: %s\n", rec.CriteriaCode)
	cmd.Printf("  ID:       %s\n", rec.ID)
	if rec.WebURL != "" {
		cmd.Printf("  URL:      %s\n", rec.WebURL)
	}
	return nil
}
