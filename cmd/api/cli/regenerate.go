package cli

import (
	"context"
	"fmt"

	"inventory-api/internal/repository"
	"inventory-api/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRegenerateCmd(v *viper.Viper) *cobra.Command {
	var (
		count int
		seed  uint64
	)

	cmd := &cobra.Command{
		Use:   "regenerate",
		Short: "Replace the stored catalog with freshly generated products",
		Long:  "Regenerate writes a new catalog to storage. A running server only picks it up after a restart.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(v)
			if err != nil {
				return err
			}
			defer log.Sync()

			if count == 0 {
				count = cfg.Catalog.DefaultCount
			}
			if count < 1 || count > cfg.Catalog.MaxCount {
				return fmt.Errorf("count must be between 1 and %d", cfg.Catalog.MaxCount)
			}

			ctx := context.Background()
			store, err := repository.Open(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer store.Close()

			generator := service.NewRandomGenerator()
			if cmd.Flags().Changed("seed") {
				generator = service.NewGenerator(seed)
			}

			catalog := service.NewCatalog(store, generator, cfg.Catalog.DefaultCount, log)
			n, err := catalog.Regenerate(ctx, count)
			if err != nil {
				return err
			}
			fmt.Printf("Generated %d products\n", n)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "number of products (default CATALOG_DEFAULT_COUNT)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "seed for reproducible catalogs")

	return cmd
}
