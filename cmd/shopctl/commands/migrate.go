package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Run gorm AutoMigrate for users, categories, products and reviews.

The server migrates on start as well; this command is for preparing a
database ahead of a deploy.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeDB, err := openRepo(commandContext(cmd))
		if err != nil {
			return err
		}
		defer closeDB()

		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
