package cli

import (
	"fmt"

	"inventory-api/internal/service"

	"github.com/spf13/cobra"
)

func newHashMasterKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "hash-master-key <master-key>",
		Short:   "Print a bcrypt hash suitable for MASTER_KEY_HASH",
		Example: "  MASTER_KEY_HASH=$(inventory-api hash-master-key s3cret) inventory-api serve",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashMasterKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
