package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

func memoryOptions() *RootOptions {
	return &RootOptions{LoadConfig: func() (*config.Config, error) {
		return &config.Config{
			App: config.AppConfig{Name: "stock-ledger", StoreDriver: config.StoreDriverMemory},
			Ledger: config.LedgerConfig{
				ABCCutoffA:    decimal.RequireFromString("0.80"),
				ABCCutoffB:    decimal.RequireFromString("0.95"),
				ABCWindowDays: 365,
			},
		}, nil
	}}
}

// execute corre el comando raíz con args y devuelve stdout.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "stockctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"migrate", "expire-reservations", "recompute"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "debe existir el comando %s", name)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
}

func TestFormatoInvalido(t *testing.T) {
	_, err := execute(t, memoryOptions(), "expire-reservations", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "formato inválido")
}

func TestExpireReservations_JSON(t *testing.T) {
	out, err := execute(t, memoryOptions(), "expire-reservations", "--format", "json")
	require.NoError(t, err)

	var body map[string]int
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 0, body["expired"])
}

func TestRecompute_EmpresaExplicita(t *testing.T) {
	out, err := execute(t, memoryOptions(), "recompute", "--company", "c1", "--format", "json")
	require.NoError(t, err)

	var results []recomputeResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].CompanyID)
	require.NotNil(t, results[0].ReorderPoints)
	require.NotNil(t, results[0].ABC)
	assert.Equal(t, 0, results[0].ABC.Processed)
}

func TestRecompute_SoloReorden(t *testing.T) {
	out, err := execute(t, memoryOptions(), "recompute", "-c", "c1", "--only", "reorder")
	require.NoError(t, err)
	assert.Contains(t, out, "c1 reorden")
	assert.NotContains(t, out, "ABC")
}

func TestRecompute_SinEmpresas(t *testing.T) {
	out, err := execute(t, memoryOptions(), "recompute")
	require.NoError(t, err)
	assert.Contains(t, out, "sin empresas para procesar")
}

func TestRecompute_OnlyInvalido(t *testing.T) {
	_, err := execute(t, memoryOptions(), "recompute", "--only", "todo")
	assert.Error(t, err)
}

func TestMigrate_RequierePostgres(t *testing.T) {
	_, err := execute(t, memoryOptions(), "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER=postgres")
}
