package main

import (
	"fmt"
	"os"
	"time"

	"appointment-scheduler/cmd/bootstrap"
	"appointment-scheduler/config"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/infrastructure/database"
	"appointment-scheduler/internal/repository"
	"appointment-scheduler/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "appointment-scheduler",
		Short: "Doctor appointment scheduling API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}

			// SQLite is a throwaway local store; keep its schema current on start
			if cfg.DB.Driver == config.DriverSQLite {
				if err := database.MigrateUp(app.DB, cfg.DB); err != nil {
					app.Close()
					return err
				}
			}

			return app.Run()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, db *gorm.DB) error {
				return database.MigrateUp(db, cfg.DB)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, db *gorm.DB) error {
				return database.MigrateDown(db, cfg.DB)
			})
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo doctors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(cfg *config.Config, db *gorm.DB) error {
				seeder := database.NewSeeder(db, logrus.StandardLogger(), repository.NewUserRepository(), repository.NewDoctorProfileRepository())
				created, err := seeder.Seed()
				if err != nil {
					return fmt.Errorf("seed failed: %w", err)
				}
				fmt.Printf("Created %d doctor(s).\n", created)
				return nil
			})
		},
	}
}

// tokenCmd issues an access token for local testing of the API
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			userIDFlag, _ := cmd.Flags().GetString("user-id")
			roleFlag, _ := cmd.Flags().GetString("role")
			expiry, _ := cmd.Flags().GetDuration("expiry")

			userID, err := uuid.Parse(userIDFlag)
			if err != nil {
				return fmt.Errorf("invalid --user-id: %w", err)
			}
			role := entity.Role(roleFlag)
			if !role.IsValid() {
				return fmt.Errorf("invalid --role %q, use DOCTOR or PATIENT", roleFlag)
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if expiry > 0 {
				cfg.JWT.AccessExpiry = expiry
			}

			token, _, err := jwt.NewJWTService(cfg.JWT).GenerateAccessToken(userID, string(role))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("user-id", "", "User ID to issue the token for")
	cmd.Flags().String("role", string(entity.RolePatient), "DOCTOR or PATIENT")
	cmd.Flags().Duration("expiry", 24*time.Hour, "Token lifetime")
	cmd.MarkFlagRequired("user-id")
	return cmd
}

func withDB(fn func(cfg *config.Config, db *gorm.DB) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	bootstrap.SetupLogger(cfg)

	db, err := database.NewConnection(cfg.DB, cfg.App)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	return fn(cfg, db)
}
