package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Erase the stored session credential",
	Run: func(_ *cobra.Command, _ []string) {
		a := newApp()

		// Logout is purely local and always succeeds; no network call.
		a.store.Logout()
		fmt.Println("Logged out.")
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
