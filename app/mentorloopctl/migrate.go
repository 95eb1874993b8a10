package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yoockh/mentorloop/config"
	"github.com/yoockh/mentorloop/internal/bootstrap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create Mongo indexes and apply Postgres migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	defer bootstrap.Close(context.WithoutCancel(cmd.Context()))

	if err := config.InitMongo(); err != nil {
		return err
	}
	if err := config.EnsureMongoIndexes(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(out, "mongo indexes ensured")

	ok, err := config.InitPostgres()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "POSTGRES_URI not set, skipping migrations")
		return nil
	}
	fmt.Fprintln(out, "postgres migrations applied")
	return nil
}
