package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/passlineclub/passline/internal/audit"
	"github.com/passlineclub/passline/internal/bus"
	"github.com/passlineclub/passline/internal/identity"
	"github.com/passlineclub/passline/internal/mongo"
	"github.com/passlineclub/passline/internal/order"
	"github.com/passlineclub/passline/internal/station"
)

const (
	appNamespace = "PASSLINE"
	appName      = "passline"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	baseRepo := mongo.NewBaseRepo(config, logger)
	if err := baseRepo.Start(ctx); err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	ticketRepo := mongo.NewTicketRepo(db)
	orderRepo := mongo.NewOrderRepo(db)
	itemRepo := mongo.NewOrderItemRepo(db)

	if err := ticketRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot create ticket indexes: %v", appName, appVersion, err)
	}
	if err := orderRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot create order indexes: %v", appName, appVersion, err)
	}
	if err := itemRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot create order item indexes: %v", appName, appVersion, err)
	}

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")
	pub, err := bus.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := bus.NewNATSSubscriber(natsURL, logger)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	service := station.NewService(station.ServiceDeps{
		Tickets:   ticketRepo,
		Orders:    orderRepo,
		Items:     itemRepo,
		Audit:     audit.NewEventRecorder(pub, logger),
		Publisher: pub,
	}, logger)

	feed := station.NewFeed(ticketRepo, logger)
	sweeper := station.NewSweeper(ticketRepo, config, logger)
	printSub := station.NewTicketPrintSubscriber(sub, ticketRepo, logger)

	stationHandler := station.NewHandler(station.HandlerDeps{
		Feed:    feed,
		Service: service,
	}, config, logger)

	orderHandler := order.NewHandler(order.HandlerDeps{
		Orders: orderRepo,
		Items:  itemRepo,
		FanOut: service,
	}, config, logger)

	if err := station.ApplyDemoSeeds(ctx, config, db, logger); err != nil {
		logger.Errorf("Demo seeding failed (non-fatal): %v", err)
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger:      logger,
		DisableCORS: true, // Internal API service
	})
	stack = append(stack, middleware.InternalOnly(), identity.Middleware())

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subscriberLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: baseRepo.Stop},
		sweeper,
		printSub,
		publisherLifecycle,
		subscriberLifecycle,
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", stationHandler, orderHandler),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	if err := ms.Run(ctx); err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
