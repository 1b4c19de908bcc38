// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-campus-auth",
	Short: "GoCampusAuth reconciles external identity assertions into local accounts",
	Long: `GoCampusAuth is an identity reconciliation service. It validates CAS
tickets, Shibboleth proxy assertions, OIDC authorization codes and local
credentials, derives the local account, profile and access-group state from
the asserted attributes and answers signed token pairs.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
