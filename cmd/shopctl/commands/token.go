package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var tokenEmail string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for an existing user",
	Long: `Issue a bearer token for the user with the given email without a
password check. Requires JWT_SECRET to match the server's.

Examples:
  shopctl token --email ops@shop.io
  curl -H "Authorization: Bearer $(shopctl token --email ops@shop.io | jq -r .access_token)" ...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(cfg.JWTSecret) == 0 {
			return errors.New("JWT_SECRET is not set")
		}

		ctx := commandContext(cmd)
		r, closeDB, err := openRepo(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		user, err := r.GetUserByEmail(ctx, service.NormalizeEmail(tokenEmail))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("no user with email %q", tokenEmail)
			}
			return err
		}

		access := &service.AccessService{Repo: r, Tokens: tokens.NewCodec(cfg.JWTSecret, cfg.AccessTokenTTL)}
		res, err := access.IssueToken(ctx, user)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Email of the user the token is for")
	_ = tokenCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(tokenCmd)
}
