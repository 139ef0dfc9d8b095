package cli

import (
	"context"
	"fmt"
	"time"

	"inventory-api/internal/repository"
	"inventory-api/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newKeysCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "keys",
		Aliases: []string{"key"},
		Short:   "Issue and revoke API keys without going through HTTP",
	}

	cmd.AddCommand(newKeysIssueCmd(v))
	cmd.AddCommand(newKeysRevokeCmd(v))

	return cmd
}

func newKeysIssueCmd(v *viper.Viper) *cobra.Command {
	var expiresIn string

	cmd := &cobra.Command{
		Use:     "issue",
		Short:   "Issue a new API key",
		Example: "  inventory-api keys issue --expires-in 7d",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyStore(v, func(ctx context.Context, keys *service.KeyStore) error {
				key, err := keys.Issue(ctx, expiresIn)
				if err != nil {
					return err
				}
				fmt.Println("API Key issued:")
				fmt.Println()
				fmt.Printf("  Key:     %s\n", key.Key)
				fmt.Printf("  Expires: %s\n", key.ExpiresAt.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&expiresIn, "expires-in", service.DefaultKeyLifetime, "lifetime such as 12h, 1d or 2w")

	return cmd
}

func newKeysRevokeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <api-key>",
		Short: "Revoke an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withKeyStore(v, func(ctx context.Context, keys *service.KeyStore) error {
				if err := keys.Revoke(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println("API key revoked")
				return nil
			})
		},
	}
}

func withKeyStore(v *viper.Viper, fn func(context.Context, *service.KeyStore) error) error {
	cfg, log, err := setup(v)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	store, err := repository.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	keys := service.NewKeyStore(store, log)
	if err := keys.Load(ctx); err != nil {
		return err
	}
	return fn(ctx, keys)
}
