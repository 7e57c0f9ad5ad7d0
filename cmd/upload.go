package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/resume"
	"github.com/JayWang0902/AI-job-matching/internal/transfer"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a resume (.pdf, .doc or .docx) for processing",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		upload(args[0])
	},
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func upload(path string) {
	a := newApp()
	a.requireAuth()

	orc := a.orchestrator()
	if err := orc.SelectFile(path); err != nil {
		a.logger.Fatal("selecting file", zap.Error(err))
	}

	result, err := orc.Upload(a.ctx)
	if err != nil {
		fatalUpload(a, err)
	}

	fmt.Printf("Uploaded. Resume %s accepted for processing.\n", result.ResumeID)
	if result.Record != nil {
		fmt.Printf("Current status: %s\n", result.Record.Status)
	}
	fmt.Println("Run 'jobmatch matches' once processing finishes.")
}

// fatalUpload turns the upload-path error taxonomy into recoverable,
// user-facing messages. Every branch leaves the user one re-initiated attempt
// away from retrying; nothing retries automatically.
func fatalUpload(a *appState, err error) {
	var storageErr *resume.StorageRejectedError
	var netErr *transfer.NetworkError
	var httpErr *transfer.HTTPError

	switch {
	case errors.Is(err, resume.ErrPresignMissing):
		a.logger.Fatal("upload failed",
			zap.String("reason", "the service did not issue an upload destination"),
			zap.String("hint", "please try again"),
		)
	case errors.As(err, &storageErr):
		a.logger.Fatal("upload failed",
			zap.String("reason", "storage rejected the file"),
			zap.Int("status", storageErr.Status),
			zap.String("hint", "the upload window may have expired; please try again"),
		)
	case errors.Is(err, resume.ErrConfirmRejected):
		a.logger.Fatal("upload failed",
			zap.String("reason", "could not confirm the upload with the service"),
			zap.String("hint", "please try again"),
		)
	case errors.As(err, &netErr):
		a.logger.Fatal("upload failed",
			zap.String("reason", "network problem"),
			zap.String("hint", "check your connection and try again"),
		)
	case errors.As(err, &httpErr):
		a.logger.Fatal("upload failed",
			zap.Int("status", httpErr.Status),
			zap.String("detail", httpErr.Detail()),
		)
	default:
		a.logger.Fatal("upload failed", zap.Error(err))
	}
}
