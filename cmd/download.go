package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/resume"
)

var downloadCmd = &cobra.Command{
	Use:   "download [resume-id]",
	Short: "Print a short-lived download address for a resume (latest by default)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		id := ""
		if len(args) == 1 {
			id = args[0]
		}
		download(id)
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func download(id string) {
	a := newApp()
	a.requireAuth()

	resumes := a.resumes()

	if id == "" {
		latest, err := resumes.Latest(a.ctx)
		if err != nil {
			a.logger.Fatal("getting latest resume", zap.Error(err))
		}
		if latest == nil {
			a.logger.Fatal("no resume uploaded yet",
				zap.String("hint", "run 'jobmatch upload <file>' first"),
			)
		}
		id = latest.ID
	}

	url, err := resumes.DownloadURL(a.ctx, id)
	if err != nil {
		if errors.Is(err, resume.ErrDownloadUnavailable) {
			a.logger.Fatal("download unavailable",
				zap.String("resume_id", id),
				zap.String("hint", "the file may still be uploading; try again shortly"),
			)
		}
		a.logger.Fatal("requesting download address", zap.Error(err))
	}

	// The address is presigned and expires; print it and let the user's
	// browser or curl do the transfer.
	fmt.Println(url)
}
