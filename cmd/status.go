package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the processing status of the uploaded resume",
	Run: func(cmd *cobra.Command, _ []string) {
		status(cmd)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolP("all", "a", false, "list every uploaded resume instead of only the latest status")
	statusCmd.Flags().Int("limit", 20, "maximum records to list with --all")
}

func status(cmd *cobra.Command) {
	a := newApp()
	a.requireAuth()

	if cmd.Flag("all").Value.String() == "true" {
		limit, _ := cmd.Flags().GetInt("limit")
		listResumes(a, limit)
		return
	}

	display, err := a.orchestrator().DisplayStatus(a.ctx)
	if err != nil {
		a.logger.Fatal("getting resume status", zap.Error(err))
	}

	fmt.Printf("Resume status: %s\n", display)
}

func listResumes(a *appState, limit int) {
	out, err := a.resumes().List(a.ctx, 0, limit)
	if err != nil {
		a.logger.Fatal("listing resumes", zap.Error(err))
	}

	if len(out.Resumes) == 0 {
		fmt.Println("No resume uploaded.")
		return
	}

	for _, rec := range out.Resumes {
		size := "-"
		if rec.FileSize != nil {
			size = fmt.Sprintf("%d bytes", *rec.FileSize)
		}
		fmt.Printf("%s  %-30s %-12s %-12s %s\n",
			rec.ID, rec.OriginalFilename, rec.Status, size, rec.UploadedAt)
	}
	fmt.Printf("\n%d of %d resumes shown\n", len(out.Resumes), out.Total)
}
