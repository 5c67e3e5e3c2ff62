package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica el esquema del ledger en PostgreSQL",
		Long: `Aplica los scripts SQL embebidos en orden de nombre.

Los scripts son idempotentes (IF NOT EXISTS), así que puede ejecutarse en cada despliegue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			if cfg.App.StoreDriver != config.StoreDriverPostgres {
				return fmt.Errorf("migrate requiere STORE_DRIVER=%s (actual: %s)", config.StoreDriverPostgres, cfg.App.StoreDriver)
			}
			ctx := cmd.Context()
			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				return fmt.Errorf("conexión a PostgreSQL: %w", err)
			}
			defer pool.Close()

			applied, err := postgres.Migrate(ctx, pool)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), map[string]any{"applied": applied},
				fmt.Sprintf("migraciones aplicadas: %s", strings.Join(applied, ", ")))
		},
	}
}
