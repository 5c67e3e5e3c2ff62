package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExpireReservationsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expire-reservations",
		Short: "Expira las reservas activas vencidas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := opts.container(ctx, cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			n, err := c.Reservations.ExpireDue(ctx, c.Ledger.Now())
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), map[string]int{"expired": n},
				fmt.Sprintf("reservas expiradas: %d", n))
		},
	}
}
