// Package main provides bevflowctl, the operator CLI of the order pipeline.
//
// Usage:
//
//	bevflowctl provision
//	bevflowctl migrate
//	bevflowctl subscribe --email orders@brewco.ie
//	bevflowctl publish --file order.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeevanjot011/bevflow/internal/app"
	"github.com/jeevanjot011/bevflow/internal/config"
	"github.com/jeevanjot011/bevflow/internal/domain/models"
	"github.com/jeevanjot011/bevflow/internal/repository/summary"
	"github.com/jeevanjot011/bevflow/pkg/databases/postgres"
	"github.com/jeevanjot011/bevflow/pkg/logger"
)

var version = "dev"

type globals struct {
	configPath string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "bevflowctl",
		Short:         "Operate the bevflow order pipeline",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config file")

	rootCmd.AddCommand(
		newProvisionCmd(g),
		newMigrateCmd(g),
		newSubscribeCmd(g),
		newPublishCmd(g),
	)

	return rootCmd
}

func (g *globals) load() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}

	return cfg, logger.SetupLogger(cfg.Env), nil
}

func (g *globals) app(ctx context.Context) (*app.App, error) {
	cfg, log, err := g.load()
	if err != nil {
		return nil, err
	}

	return app.NewApp(ctx, log, &cfg)
}

func newProvisionCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Create or converge every pipeline resource and print the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := g.app(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = application.Stop() }()

			report, ensureErr := application.Provisioner.EnsureAll(cmd.Context())

			if err = printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}

			return ensureErr
		},
	}
}

func newMigrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres summary store migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load()
			if err != nil {
				return err
			}

			db, err := postgres.NewPostgresDB(cmd.Context(), log, cfg.PostgresDSN())
			if err != nil {
				return err
			}
			defer db.Close()

			changed, err := summary.Migrate(db.GetDB().DB)
			if err != nil {
				return err
			}

			if changed {
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "no change")
			}

			return nil
		},
	}
}

func newSubscribeCmd(g *globals) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe an e-mail address to the order topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := g.app(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = application.Stop() }()

			created, err := application.Publisher.SubscribeEmail(cmd.Context(), email)
			if err != nil {
				return err
			}

			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "subscription requested for %s, confirm via e-mail\n", email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already subscribed\n", email)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "address to subscribe (required)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newPublishCmd(g *globals) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish an order message read from a JSON file (- for stdin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := readInput(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			msg, err := models.DecodeOrderMessage(body)
			if err != nil {
				return err
			}

			application, err := g.app(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = application.Stop() }()

			if err = application.Publisher.Publish(cmd.Context(), msg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "order %s enqueued\n", msg.OrderID)

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "order JSON file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readInput(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(file)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
