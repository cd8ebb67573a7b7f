package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/api-inventario/internal/application/auth"
	"github.com/jhoicas/api-inventario/internal/infrastructure/postgres"
)

const minPasswordLen = 8

func newSeedAdminCmd(e *env) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Crea un usuario ADMIN",
		Long:  "Crea un usuario con rol ADMIN. El registro público de la API solo permite CLIENTE.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email es requerido")
			}
			if len(password) < minPasswordLen {
				return fmt.Errorf("--password debe tener al menos %d caracteres", minPasswordLen)
			}
			pool, cfg, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			uc := auth.NewAuthUseCase(postgres.NewUserRepository(pool), auth.JWTConfig{
				Secret:     cfg.JWT.Secret,
				ExpMinutes: cfg.JWT.Expiration,
				Issuer:     cfg.JWT.Issuer,
			})
			user, err := uc.CreateAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return fmt.Errorf("crear administrador: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "administrador creado: id=%d email=%s\n", user.ID, user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrador", "nombre visible")
	cmd.Flags().StringVar(&email, "email", "", "email de acceso")
	cmd.Flags().StringVar(&password, "password", "", "contraseña (mínimo 8 caracteres)")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Imprime el hash bcrypt de una contraseña",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
				return fmt.Errorf("--cost debe estar entre %d y %d", bcrypt.MinCost, bcrypt.MaxCost)
			}
			hash, err := auth.HashPassword(args[0], cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "costo bcrypt")
	return cmd
}
