package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/finboard/finboard/apps/finctl/internal/client"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with email and password",
	Long: `Log in to the finboard server with your email and password.

The minted token is stored in the OS keyring, keyed by the server's base
URL, and used automatically by subsequent commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		reader := bufio.NewReader(os.Stdin)

		if email == "" {
			fmt.Print("Email: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				log.Fatalf("failed to read email: %v", err)
			}
			email = strings.TrimSpace(line)
		}

		fmt.Print("Password: ")
		pw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			log.Fatalf("failed to read password: %v", err)
		}

		c := client.New(baseURL(), "")
		resp, err := c.Login(context.Background(), email, string(pw))
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}

		fmt.Printf("Logged in as: %s <%s>\n", resp.User.Name, resp.User.Email)

		if err := client.SaveToken(baseURL(), resp.Token); err != nil {
			log.Printf("warning: failed to save token to keyring: %v", err)
		} else {
			fmt.Println("Access token saved")
		}
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email (prompted if omitted)")
	rootCmd.AddCommand(loginCmd)
}
