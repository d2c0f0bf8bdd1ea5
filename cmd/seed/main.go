package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/playmatatu/pinball/internal/config"
	"github.com/playmatatu/pinball/internal/database"
	"github.com/playmatatu/pinball/internal/logger"
	"github.com/playmatatu/pinball/internal/migrations"
	"github.com/playmatatu/pinball/internal/store"
	"github.com/playmatatu/pinball/internal/table"
)

func main() {
	layoutPath := flag.String("layout", "", "table layout JSON to store in addition to the demo table")
	migrate := flag.Bool("migrate", true, "apply migrations before seeding")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(logger.Config{Environment: cfg.Environment, LogLevel: cfg.LogLevel, ServiceName: "pinball-seed"})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if *migrate {
		if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	st := store.New(db)

	username := os.Getenv("OPERATOR_USERNAME")
	if username == "" {
		username = "operator"
		log.Info("using default operator username", zap.String("username", username))
	}
	password := os.Getenv("OPERATOR_PASSWORD")
	if password == "" {
		password = "change-me-in-production"
		log.Warn("using default operator password, set OPERATOR_PASSWORD in production")
	}
	op, err := st.UpsertOperator(ctx, username, password)
	if err != nil {
		log.Fatal("failed to create operator", zap.Error(err))
	}
	log.Info("operator created/updated", zap.Int64("id", op.ID), zap.String("username", op.Username))

	layouts := []*table.Layout{table.Demo()}
	if *layoutPath != "" {
		data, err := os.ReadFile(*layoutPath)
		if err != nil {
			log.Fatal("failed to read layout", zap.Error(err))
		}
		l, err := table.Parse(data)
		if err != nil {
			log.Fatal("invalid layout", zap.String("path", *layoutPath), zap.Error(err))
		}
		layouts = append(layouts, l)
	}
	for _, l := range layouts {
		rec, err := st.SaveTable(ctx, l)
		if err != nil {
			log.Fatal("failed to store table", zap.String("table", l.Name), zap.Error(err))
		}
		log.Info("table stored", zap.Int64("id", rec.ID), zap.String("table", rec.Name), zap.Int("items", len(l.Items)))
	}
}
