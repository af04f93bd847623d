package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dropshipManagement/internal/config"
	"dropshipManagement/internal/db"
	"dropshipManagement/internal/notify"
	"dropshipManagement/internal/server"
	"dropshipManagement/internal/workflow"
	"dropshipManagement/models"
	"dropshipManagement/repository"
)

var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Dropship back-office shipment-processing service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = zap.NewProduction()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate-rollback",
	Short: "Roll back the most recently applied database migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithDefaults()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		d, err := db.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer d.Close()
		if err := db.RollbackLast(d); err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		logger.Info("rolled back last migration", zap.String("db", cfg.Database.Path))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a demo admin, customer, and shipments in status Received",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithDefaults()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		d, err := db.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer d.Close()
		return seed(cmd.Context(), repository.NewUserRepository(d), repository.NewShipmentRepository(d))
	},
}

func runServe() error {
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Warn("close db", zap.Error(err))
		}
	}()

	users := repository.NewUserRepository(d)
	shipments := repository.NewShipmentRepository(d)

	notifier := notify.Notifier(notify.NewLogNotifier(logger))
	if cfg.Kafka.Enabled {
		kn := notify.NewKafkaNotifier(cfg.Kafka.Broker, cfg.Kafka.Topic)
		defer func() {
			if err := kn.Close(); err != nil {
				logger.Warn("close kafka writer", zap.Error(err))
			}
		}()
		notifier = notify.Multi(notify.NewLogNotifier(logger), kn)
	}

	engine := workflow.NewEngine(shipments, notifier, logger)
	srv := &server.Server{
		Users:     users,
		Shipments: shipments,
		Engine:    engine,
		Secret:    cfg.Auth.JWTSecret,
		Log:       logger,
	}

	shutdown, err := server.Start(cfg, srv)
	if err != nil {
		return fmt.Errorf("start http: %w", err)
	}
	logger.Info("http server listening", zap.String("address", cfg.HTTP.Address))

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	return nil
}

func seed(ctx context.Context, users *repository.UserRepository, shipments *repository.ShipmentRepository) error {
	admin, err := users.GetByUsername(ctx, "admin")
	if err != nil {
		return err
	}
	if admin == nil {
		if admin, err = users.Create(ctx, "admin", models.RoleAdmin); err != nil {
			return err
		}
	}
	customer, err := users.GetByUsername(ctx, "demo")
	if err != nil {
		return err
	}
	if customer == nil {
		if customer, err = users.Create(ctx, "demo", models.RoleCustomer); err != nil {
			return err
		}
	}
	demo := []models.Shipment{
		{
			ID:                "SP-2125",
			CustomerName:      "Arun Kumar",
			Destination:       "Chennai",
			EstimatedDelivery: "2026-09-12",
			SubmittedBy:       customer.ID,
			Details: models.ShipmentDetails{
				SenderName:    "Demo Store",
				ReceiverName:  "Arun Kumar",
				Courier:       "BlueDart",
				PackageMethod: "Box",
				WeightKG:      2.4,
				PaymentMode:   "Prepaid",
			},
		},
		{
			ID:                "SP-2126",
			CustomerName:      "Priya Nair",
			Destination:       "Kochi",
			EstimatedDelivery: "2026-09-15",
			SubmittedBy:       customer.ID,
			Details: models.ShipmentDetails{
				SenderName:    "Demo Store",
				ReceiverName:  "Priya Nair",
				Courier:       "Delhivery",
				PackageMethod: "Envelope",
				WeightKG:      0.6,
				PaymentMode:   "COD",
			},
		},
	}
	for i := range demo {
		if existing, err := shipments.GetByID(ctx, demo[i].ID); err != nil {
			return err
		} else if existing != nil {
			continue
		}
		if _, err := shipments.Create(ctx, &demo[i]); err != nil {
			return err
		}
	}
	logger.Info("seed complete", zap.Int64("admin_id", admin.ID), zap.Int64("customer_id", customer.ID))
	return nil
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateRollbackCmd, seedCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
