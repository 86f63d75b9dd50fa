package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/hash"
)

var (
	adminEmail    string
	adminPassword string
)

// No API route can grant the first admin, so it is bootstrapped here.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing user",
	Long: `Create an admin with the given email and password. If the email is
already registered the user is promoted and the password flag is ignored.

Examples:
  shopctl create-admin --email ops@shop.io --password 's3cret!'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		r, closeDB, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		users := &service.UserService{Repo: r, Hasher: hash.Bcrypt{Cost: cfg.BcryptCost}}
		u, created, err := users.BootstrapAdmin(ctx, adminEmail, adminPassword)
		if err != nil {
			return err
		}

		verb := "promoted"
		if created {
			verb = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s admin %s (id %d)\n", verb, u.Email, u.ID)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password for a newly created admin")
	_ = createAdminCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(createAdminCmd)
}
