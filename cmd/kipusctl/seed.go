package main

import (
	"github.com/kipusaplus/kipus-api/internal/infrastructure/postgres"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert regions, communes and evaluation catalogs",
	Long: `Inserts the reference data the API needs. Safe to run repeatedly:
rows that already exist are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := openPool(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := postgres.Seed(cmd.Context(), pool); err != nil {
			return err
		}
		logger.Info("seed complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
