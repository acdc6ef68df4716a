package main

import (
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/fastshift/internal/logger"
	"github.com/iliyamo/fastshift/internal/queue"
)

func eventlogCmd() *cobra.Command {
	var (
		file  string
		level string
	)
	cmd := &cobra.Command{
		Use:   "eventlog",
		Short: "Print parcel lifecycle events published by the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			url := os.Getenv("RABBITMQ_URL")
			if url == "" {
				return errors.New("RABBITMQ_URL is not set")
			}
			log := logger.New(level)
			defer func() { _ = log.Sync() }()

			var out io.Writer = cmd.OutOrStdout()
			if file != "" {
				f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				out = f
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			c := &queue.Consumer{Log: log, Out: out}
			return c.Run(ctx, url)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "append lines to this file instead of stdout")
	cmd.Flags().StringVar(&level, "log-level", "info", "log level")
	return cmd
}
