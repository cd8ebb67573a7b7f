package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/api-inventario/internal/infrastructure/postgres"
)

func newMigrateCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Gestiona el esquema de la base de datos",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, _, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := postgres.ApplyMigrations(cmd.Context(), pool)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "esquema al día")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "aplicada %s\n", v)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revierte la última migración aplicada",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, _, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			version, err := postgres.RollbackMigration(cmd.Context(), pool)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revertida %s\n", version)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Muestra la versión actual del esquema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, _, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			current, err := postgres.CurrentSchemaVersion(cmd.Context(), pool)
			if err != nil {
				return err
			}
			all, err := postgres.LoadMigrations()
			if err != nil {
				return err
			}
			if current == "" {
				current = "(ninguna)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "versión actual: %s\n", current)
			fmt.Fprintf(cmd.OutOrStdout(), "última disponible: %s\n", all[len(all)-1].Version)
			return nil
		},
	})
	return cmd
}
