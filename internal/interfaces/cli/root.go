// Package cli implementa invctl, la herramienta de operación de la API:
// migraciones, alta de administradores e importación de productos.
package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/api-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/api-inventario/pkg/config"
	"github.com/jhoicas/api-inventario/pkg/logger"
)

// env dependencias compartidas por los subcomandos; se resuelven de forma perezosa
// para que hash-password funcione sin base de datos.
type env struct {
	loadConfig func() (*config.Config, error)
	openPool   func(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error)
	log        *logger.Logger
}

func defaultEnv() *env {
	return &env{
		loadConfig: config.Load,
		openPool:   postgres.NewPool,
	}
}

func (e *env) config() (*config.Config, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	if e.log == nil {
		e.log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	}
	return cfg, nil
}

// pool abre la conexión; el llamador debe cerrarla.
func (e *env) pool(ctx context.Context) (*pgxpool.Pool, *config.Config, error) {
	cfg, err := e.config()
	if err != nil {
		return nil, nil, err
	}
	pool, err := e.openPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return pool, cfg, nil
}

func newRootCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "invctl",
		Short:         "Herramienta de operación de api-inventario",
		Long:          "invctl aplica migraciones, crea administradores e importa productos usando la misma configuración que la API (variables de entorno o .env).",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newMigrateCmd(e))
	cmd.AddCommand(newSeedAdminCmd(e))
	cmd.AddCommand(newHashPasswordCmd())
	cmd.AddCommand(newImportProductsCmd(e))
	return cmd
}

// Execute ejecuta invctl con os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd(defaultEnv()).ExecuteContext(ctx)
}
