package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// command for issuing bearer tokens carrying a caller identity
var tokenCmd = &cobra.Command{
	Use:   "token <caller>",
	Short: "issue a bearer token for caller",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := provideAuthenticator().Issue(args[0])
		if err != nil {
			return err
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
