package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"projectflow/internal/models"
	"projectflow/internal/repositories"
	"projectflow/internal/services"
)

const minPasswordLength = 6

func newCreateSuperAdminCommand() *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "create-super-admin",
		Short: "Create a cross-tenant operator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			name = strings.TrimSpace(name)
			if email == "" || name == "" {
				return errors.New("--email and --name are required")
			}
			if len(password) < minPasswordLength {
				return fmt.Errorf("--password must be at least %d characters", minPasswordLength)
			}

			r, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer r.close()

			hash, err := services.NewPasswordHasher(bcrypt.DefaultCost).Hash(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			user := &models.User{
				ID:           uuid.New(),
				Email:        email,
				PasswordHash: hash,
				FullName:     name,
				Role:         models.RoleSuperAdmin,
				IsActive:     true,
			}
			err = repositories.NewUserRepo(r.pool).CreateSuperAdmin(cmd.Context(), user)
			if errors.Is(err, repositories.ErrDuplicate) {
				return fmt.Errorf("a super admin with email %s already exists", email)
			}
			if err != nil {
				return fmt.Errorf("create super admin: %w", err)
			}
			r.log.Info("super admin created", zap.String("id", user.ID.String()), zap.String("email", email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	cmd.Flags().StringVar(&name, "name", "", "full name")
	return cmd
}
