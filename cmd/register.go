package cmd

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/identity"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account on the service",
	Run: func(cmd *cobra.Command, _ []string) {
		register(cmd)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringP("email", "e", "", "email address to register with")
}

func register(cmd *cobra.Command) {
	a := newApp()

	email := cmd.Flag("email").Value.String()
	if email == "" {
		prompt := promptui.Prompt{Label: "Email", Validate: notEmpty("email")}
		entered, err := prompt.Run()
		if err != nil {
			a.logger.Fatal("exiting", zap.Error(err))
		}
		email = entered
	}

	passwordPrompt := promptui.Prompt{Label: "Password", Mask: '*', Validate: notEmpty("password")}
	password, err := passwordPrompt.Run()
	if err != nil {
		a.logger.Fatal("exiting", zap.Error(err))
	}

	confirmPrompt := promptui.Prompt{Label: "Confirm password", Mask: '*'}
	confirm, err := confirmPrompt.Run()
	if err != nil {
		a.logger.Fatal("exiting", zap.Error(err))
	}
	if confirm != password {
		a.logger.Fatal("registration aborted", zap.String("reason", "passwords do not match"))
	}

	if err := a.identity().Register(a.ctx, email, password); err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			a.logger.Fatal("registration failed", zap.String("reason", "this email is already registered"))
		}
		a.logger.Fatal("registration failed", zap.Error(err))
	}

	fmt.Println("Registration successful. Run 'jobmatch login' to sign in.")
}
