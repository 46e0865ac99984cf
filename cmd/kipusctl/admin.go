package main

import (
	"github.com/kipusaplus/kipus-api/internal/infrastructure/postgres"
	"github.com/kipusaplus/kipus-api/internal/usecase"
	"github.com/spf13/cobra"
)

var adminFlags struct {
	email    string
	name     string
	password string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := openPool(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		uc := usecase.NewAdminUsecase(usecase.AdminDeps{
			Users: postgres.NewUserRepository(pool, logger),
		}, logger, nil)

		user, err := uc.CreateAdmin(cmd.Context(), adminFlags.email, adminFlags.name, adminFlags.password)
		if err != nil {
			return err
		}
		logger.Info("admin created", "id", user.ID, "email", user.Email)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	f := createAdminCmd.Flags()
	f.StringVar(&adminFlags.email, "email", "", "admin email (required)")
	f.StringVar(&adminFlags.name, "name", "", "full name (required)")
	f.StringVar(&adminFlags.password, "password", "", "initial password, at least 8 characters (required)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("password")
}
