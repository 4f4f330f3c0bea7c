package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "FINBOARD"
	baseURLKey = "base-url"
)

var rootCmd = &cobra.Command{
	Use:   "finctl",
	Short: "CLI for the finboard API (auth, transactions)",
	Long: `finctl is a small command-line tool for interacting with a running
finboard server. Use login/logout to manage your session token (stored in
the OS keyring), me to inspect the current account, and tx to browse your
transactions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetEnvPrefix(envPrefix)
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()
		return viper.BindPFlags(cmd.Flags())
	},
}

func baseURL() string {
	url := viper.GetString(baseURLKey)
	if url == "" {
		url = "http://localhost:5000"
	}
	return strings.TrimRight(url, "/")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String(baseURLKey, "", "Base URL of the finboard server (or FINBOARD_BASE_URL)")
}
