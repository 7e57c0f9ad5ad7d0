package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	promptYes = "Yes"
	promptNo  = "No"
)

var rmCmd = &cobra.Command{
	Use:   "rm <resume-id>",
	Short: "Delete an uploaded resume and its stored file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		removeResume(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)

	rmCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

func removeResume(cmd *cobra.Command, id string) {
	a := newApp()
	a.requireAuth()

	if cmd.Flag("yes").Value.String() == "false" {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Delete resume %s? This cannot be undone", id),
			Items: []string{promptNo, promptYes},
		}
		_, choice, err := prompt.Run()
		if err != nil {
			a.logger.Fatal("exiting", zap.Error(err))
		}
		if choice != promptYes {
			a.logger.Info("exiting", zap.String("reason", "deletion not confirmed"))
			return
		}
	}

	if err := a.resumes().Delete(a.ctx, id); err != nil {
		a.logger.Fatal("deleting resume", zap.Error(err))
	}

	fmt.Println("Deleted.")
}
