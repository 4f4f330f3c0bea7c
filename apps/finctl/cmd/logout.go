package cmd

import (
	"fmt"
	"log"

	"github.com/finboard/finboard/apps/finctl/internal/client"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session token",
	Run: func(cmd *cobra.Command, args []string) {
		if err := client.DeleteToken(baseURL()); err != nil {
			log.Fatalf("failed to remove token: %v", err)
		}
		fmt.Println("Logged out")
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
