package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

const (
	recomputeReorder = "reorder"
	recomputeABC     = "abc"
	recomputeAll     = "all"
)

type recomputeResult struct {
	CompanyID     string                  `json:"company_id"`
	ReorderPoints *dto.RecomputeResultDTO `json:"reorder_points,omitempty"`
	ABC           *dto.RecomputeResultDTO `json:"abc,omitempty"`
}

func newRecomputeCommand(opts *RootOptions) *cobra.Command {
	var (
		companies []string
		only      string
	)
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recalcula puntos de reorden y clasificación ABC",
		Long: `Recalcula el consumo diario promedio, el punto de reorden y la clasificación ABC.

Sin --company se procesan las empresas de SCHEDULER_COMPANIES o, si está vacío,
todas las empresas con productos activos.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch only {
			case recomputeReorder, recomputeABC, recomputeAll:
			default:
				return fmt.Errorf("--only inválido %q: reorder, abc o all", only)
			}
			ctx := cmd.Context()
			c, err := opts.container(ctx, cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			if len(companies) == 0 {
				companies = c.Config.Scheduler.Companies
			}
			if len(companies) == 0 {
				if companies, err = c.Replenishment.Companies(ctx); err != nil {
					return err
				}
			}

			results := make([]recomputeResult, 0, len(companies))
			var lines []string
			for _, companyID := range companies {
				res := recomputeResult{CompanyID: companyID}
				if only != recomputeABC {
					if res.ReorderPoints, err = c.Replenishment.CalculateReorderPoints(ctx, companyID); err != nil {
						return fmt.Errorf("empresa %s: %w", companyID, err)
					}
					lines = append(lines, fmt.Sprintf("%s reorden: %d procesados, %d actualizados",
						companyID, res.ReorderPoints.Processed, res.ReorderPoints.Updated))
				}
				if only != recomputeReorder {
					if res.ABC, err = c.Replenishment.CalculateABCClassification(ctx, companyID); err != nil {
						return fmt.Errorf("empresa %s: %w", companyID, err)
					}
					lines = append(lines, fmt.Sprintf("%s ABC: %d procesados, %d actualizados",
						companyID, res.ABC.Processed, res.ABC.Updated))
				}
				results = append(results, res)
			}
			if len(lines) == 0 {
				lines = append(lines, "sin empresas para procesar")
			}
			return opts.print(cmd.OutOrStdout(), results, strings.Join(lines, "\n"))
		},
	}
	cmd.Flags().StringSliceVarP(&companies, "company", "c", nil, "empresas a procesar (repetible)")
	cmd.Flags().StringVar(&only, "only", recomputeAll, "qué recalcular (reorder|abc|all)")
	return cmd
}
