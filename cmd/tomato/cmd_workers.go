package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/tomato/app/jobs"
	"github.com/shashiranjanraj/tomato/config"
	"github.com/shashiranjanraj/tomato/pkg/cache"
	"github.com/shashiranjanraj/tomato/pkg/database"
	"github.com/shashiranjanraj/tomato/pkg/queue"
)

var queueWorkersFlag int

// tomato queue:work — run queue workers without the HTTP server.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		cfg := config.App()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer db.Close(context.Background())
		queue.UseCollection(db.Collection(database.FailedJobsCollection))

		if err := cache.Connect(); err == nil && cache.RDB != nil {
			queue.SetDriver(queue.NewRedisDriver(cache.RDB))
		}
		queue.Register("*jobs.ConfirmationMailJob", func() queue.Job { return &jobs.ConfirmationMailJob{} })

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 4
		}

		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		fmt.Println("\nQueue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 4, "number of concurrent workers")
}
