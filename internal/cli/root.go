// Package cli comandos batch de stockctl: migraciones, barrido de reservas y recálculo de reposición.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RootOptions flags globales y dependencias de los comandos.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// LoadConfig por defecto config.Load; los tests inyectan una configuración fija.
	LoadConfig func() (*config.Config, error)
}

// ValidFormats formatos de salida admitidos.
var ValidFormats = []string{"text", "json"}

// NewRootCommand comando raíz de stockctl.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{LoadConfig: config.Load})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stockctl",
		Short: "Tareas batch del ledger de stock",
		Long:  "Herramientas de operación del ledger de stock: migraciones, expiración de reservas y recálculo de reposición.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("formato inválido %q: debe ser uno de %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "salida detallada")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (json|text)")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newExpireReservationsCommand(opts))
	cmd.AddCommand(newRecomputeCommand(opts))
	return cmd
}

// logger logs a stderr para no mezclar con la salida JSON.
func (o *RootOptions) logger(cmd *cobra.Command) *logger.Logger {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	return logger.NewWithWriter(cmd.ErrOrStderr(), level)
}

// container carga la configuración y arma los casos de uso.
func (o *RootOptions) container(ctx context.Context, cmd *cobra.Command) (*bootstrap.Container, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	return bootstrap.New(ctx, cfg, o.logger(cmd))
}

// print escribe v como JSON o el texto dado según --format.
func (o *RootOptions) print(w io.Writer, v any, text string) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
