package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/JayWang0902/AI-job-matching/internal/secrets"
	"github.com/JayWang0902/AI-job-matching/internal/transfer"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the service and store the session credential",
	Run: func(cmd *cobra.Command, _ []string) {
		login(cmd)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringP("username", "u", "", "username to log in with")
	loginCmd.Flags().String("token-file", "", "file with an already-issued token; skips the password prompt")

	viper.BindPFlag("token-file", loginCmd.Flags().Lookup("token-file"))
}

func login(cmd *cobra.Command) {
	a := newApp()

	// Non-interactive path: an already-issued token from a file.
	if tokenFile := resolveTokenFile(a.config); tokenFile != "" {
		token, err := secrets.Load(secrets.Source{Name: "session token", File: tokenFile})
		if err != nil {
			a.logger.Fatal("loading session token", zap.Error(err))
		}
		if err := a.store.Login(token); err != nil {
			a.logger.Fatal("storing credential", zap.Error(err))
		}
		a.logger.Info("logged in", zap.String("source", "token file"))
		return
	}

	username := cmd.Flag("username").Value.String()
	if username == "" {
		prompt := promptui.Prompt{Label: "Username", Validate: notEmpty("username")}
		entered, err := prompt.Run()
		if err != nil {
			a.logger.Fatal("exiting", zap.Error(err))
		}
		username = entered
	}

	passwordPrompt := promptui.Prompt{Label: "Password", Mask: '*', Validate: notEmpty("password")}
	password, err := passwordPrompt.Run()
	if err != nil {
		a.logger.Fatal("exiting", zap.Error(err))
	}

	token, err := a.identity().Login(a.ctx, username, password)
	if err != nil {
		var httpErr *transfer.HTTPError
		switch {
		case errors.As(err, &httpErr) && (httpErr.Status == 401 || httpErr.Status == 403):
			a.logger.Fatal("login failed", zap.String("reason", "check your credentials"))
		default:
			a.logger.Fatal("login failed", zap.Error(err))
		}
	}

	if err := a.store.Login(token); err != nil {
		a.logger.Fatal("storing credential", zap.Error(err))
	}

	fmt.Printf("Logged in as %s. Try 'jobmatch status' or 'jobmatch matches'.\n", username)
}

func resolveTokenFile(config *Config) string {
	if f := strings.TrimSpace(viper.GetString("token-file")); f != "" {
		return f
	}
	return strings.TrimSpace(config.TokenFile)
}

func notEmpty(name string) func(string) error {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
		return nil
	}
}
