package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/finboard/finboard/apps/finctl/internal/client"
	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show information about the current authenticated user",
	Run: func(cmd *cobra.Command, args []string) {
		token, err := client.LoadToken(baseURL())
		if err != nil {
			log.Fatalf("no stored token. Please run 'finctl login' first")
		}

		c := client.New(baseURL(), token)
		user, err := c.Verify(context.Background())
		if err != nil {
			if errors.Is(err, client.ErrUnauthorized) {
				_ = client.DeleteToken(baseURL())
				log.Fatalf("unauthorized (401). Please run 'finctl login' to re-authenticate")
			}
			log.Fatalf("failed to verify token: %v", err)
		}

		fmt.Printf("Logged in: %s <%s>\n", user.Name, user.Email)
		fmt.Printf("ID: %s\n", user.ID)
		fmt.Printf("Provider: %s\n", user.AuthProvider)
		fmt.Printf("Verified: %t\n", user.IsVerified)
	},
}

func init() {
	rootCmd.AddCommand(meCmd)
}
