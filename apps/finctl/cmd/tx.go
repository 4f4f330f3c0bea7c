package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/finboard/finboard/apps/finctl/internal/client"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Work with transactions",
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your transactions",
	Run: func(cmd *cobra.Command, args []string) {
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")
		txType, _ := cmd.Flags().GetString("type")

		token, err := client.LoadToken(baseURL())
		if err != nil {
			log.Fatalf("no stored token. Please run 'finctl login' first")
		}

		c := client.New(baseURL(), token)
		list, err := c.ListTransactions(context.Background(), page, limit, txType)
		if err != nil {
			if errors.Is(err, client.ErrUnauthorized) {
				log.Fatalf("unauthorized (401). Please run 'finctl login' to re-authenticate")
			}
			log.Fatalf("failed to list transactions: %v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tTYPE\tCATEGORY\tAMOUNT\tSTATUS\tDESCRIPTION")
		for _, tx := range list.Transactions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
				tx.Date.Format("2006-01-02"), tx.Type, tx.Category, tx.Amount, tx.Status, tx.Description)
		}
		w.Flush()

		fmt.Printf("\nPage %d of %d (%d total)\n", list.CurrentPage, list.TotalPages, list.Total)
	},
}

func init() {
	txListCmd.Flags().Int("page", 1, "Page number")
	txListCmd.Flags().Int("limit", 10, "Rows per page")
	txListCmd.Flags().String("type", "", "Filter by type: revenue or expense")
	txCmd.AddCommand(txListCmd)
	rootCmd.AddCommand(txCmd)
}
