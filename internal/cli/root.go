// Package cli implements catalogctl, the operator tool for the catalog
// aggregator: schema migrations, test event publishing and admin tokens.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/example/catalog-aggregator/internal/config"
	"github.com/example/catalog-aggregator/internal/infrastructure/kafka"
	"github.com/spf13/cobra"
)

// publisher is satisfied by *kafka.Producer.
type publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

// app carries what subcommands share. Tests swap newPublisher.
type app struct {
	configPath   string
	cfg          config.Config
	log          *slog.Logger
	newPublisher func(brokers []string, topic string) publisher
}

func NewRootCmd(out io.Writer) *cobra.Command {
	a := &app{
		newPublisher: func(brokers []string, topic string) publisher {
			return kafka.NewProducer(brokers, topic)
		},
	}
	return a.rootCmd(out)
}

func (a *app) rootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Operator tool for the catalog aggregator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if env, ok := os.LookupEnv("CATALOG_CONFIG_FILE"); ok && path == "" {
				path = env
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level, _ := config.ParseLevel(cfg.LogLevel)
			a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (YAML)")

	root.AddCommand(a.migrateCmd(), a.publishCmd(), a.tokenCmd())
	return root
}

// Execute runs catalogctl with os.Args.
func Execute() error {
	return NewRootCmd(os.Stdout).Execute()
}
