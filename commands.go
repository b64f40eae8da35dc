package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shopadmin/internal/config"
	"shopadmin/internal/database"
	"shopadmin/internal/logger"
	"shopadmin/internal/mailer"
	"shopadmin/pkg/rabbitmq"
)

const revokedPurgeInterval = time.Hour

func newRootCmd() *cobra.Command {
	var migrate bool

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(migrate)
		},
	}
	serveCmd.Flags().BoolVar(&migrate, "migrate", false, "Apply schema migrations before serving")

	rootCmd := &cobra.Command{
		Use:           "shopadmin",
		Short:         "Catalog administration backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCreateSuperuserCmd())
	rootCmd.AddCommand(newMailWorkerCmd())
	return rootCmd
}

// bootstrap loads configuration and builds the process logger.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel, "shopadmin")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return cfg, log, nil
}

func runServe(migrate bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	app, err := newApplication(cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	if migrate {
		if err := database.Migrate(app.db); err != nil {
			return err
		}
		log.Info("Database migrated")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.purgeRevokedTokens(ctx, revokedPurgeInterval)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.AppPort))
		listenErr <- app.fiber.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")
	if err := app.fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
	return nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			log.Info("Database migrated")
			return nil
		},
	}
}

func newCreateSuperuserCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a staff account, or promote an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			app, err := newApplication(cfg, log)
			if err != nil {
				return err
			}
			defer app.close()

			user, created, err := app.auth.EnsureSuperuser(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Superuser %s created\n", user.Email)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "User %s promoted to superuser\n", user.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email of the staff account")
	cmd.Flags().StringVar(&password, "password", "", "Password of the staff account")
	return cmd
}

func newMailWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mail-worker",
		Short: "Deliver queued emails over SMTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			client, err := rabbitmq.NewClient(rabbitmq.Config{
				URL:    cfg.RabbitMQURL,
				Queues: []string{cfg.MailQueue},
			}, log)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			done, err := client.Consume(cfg.MailQueue, mailer.DeliveryHandler(newSMTPMailer(cfg), log.Named("mail-worker")))
			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				log.Info("Mail worker stopped")
			case <-done:
				return errors.New("mail queue consumer closed unexpectedly")
			}
			return nil
		},
	}
}
