package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/appetiteclub/apt"

	pmongo "github.com/passlineclub/passline/internal/mongo"
	"github.com/passlineclub/passline/internal/station"
)

const (
	appName    = "passline-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config, err := apt.LoadConfig("PASSLINE", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel, _ := config.GetString("log.level")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := apt.NewLogger(logLevel)

	ctx := context.Background()
	command := os.Args[1]

	switch command {
	case "seed-demo":
		withDatabase(ctx, config, logger, func(base *pmongo.BaseRepo) error {
			return station.SeedDemo(ctx, base.GetDatabase(), logger)
		})
		logger.Info("Demo seeding completed")

	case "clear-demo":
		withDatabase(ctx, config, logger, func(base *pmongo.BaseRepo) error {
			return station.ClearDemo(ctx, base.GetDatabase(), logger)
		})
		logger.Info("Demo data cleared")

	case "sweep":
		withDatabase(ctx, config, logger, func(base *pmongo.BaseRepo) error {
			tickets := pmongo.NewTicketRepo(base.GetDatabase())
			station.NewSweeper(tickets, config, logger).Sweep(ctx)
			return nil
		})
		logger.Info("Retention sweep completed")

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func withDatabase(ctx context.Context, config *apt.Config, logger apt.Logger, run func(*pmongo.BaseRepo) error) {
	base := pmongo.NewBaseRepo(config, logger)
	if err := base.Start(ctx); err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer base.Stop(ctx)

	if err := run(base); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

func printUsage() {
	fmt.Printf(`%s - Passline utility commands

Usage:
  %s <command> [options]

Commands:
  seed-demo    Apply demo seeding (creates a sample order with station tickets)
  clear-demo   Remove demo data and the seed marker
  sweep        Run one retention sweep over served kitchen tickets
  version      Print version information
  help         Show this help message

Environment Variables:
  PASSLINE_DB_MONGO_URL    MongoDB connection URL (default: mongodb://localhost:27017)
  PASSLINE_DB_MONGO_NAME   Database name (default: passline)
  PASSLINE_LOG_LEVEL       Log level: debug, info, warn, error (default: info)

Examples:
  %s seed-demo
  %s clear-demo
  PASSLINE_DB_MONGO_URL=mongodb://localhost:27017 %s sweep

`, appName, appName, appName, appName, appName)
}
