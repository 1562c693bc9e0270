package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/tomato/config"
	"github.com/shashiranjanraj/tomato/database/seeders"
	"github.com/shashiranjanraj/tomato/pkg/database"
)

// tomato seed — run all registered seeders.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run the database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		cfg := config.App()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer db.Close(context.Background())

		fmt.Println("Seeding", cfg.MongoDB)
		return seeders.RunAll(ctx, db)
	},
}
