package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/nexaline/comp-service/internal/config"
	"github.com/nexaline/comp-service/internal/delivery/http/handlers"
	deliverykafka "github.com/nexaline/comp-service/internal/delivery/kafka"
	"github.com/nexaline/comp-service/internal/infrastructure/executor"
	publisher "github.com/nexaline/comp-service/internal/infrastructure/kafka"
	"github.com/nexaline/comp-service/internal/infrastructure/metrics"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres"
	"github.com/nexaline/comp-service/internal/infrastructure/postgres/repository"
	"github.com/nexaline/comp-service/internal/usecase"
	"github.com/nexaline/comp-service/internal/usecase/calculator"
)

func setupLogger(cfg *config.CompConfig) {
	level := slog.LevelInfo
	switch cfg.LogConfig.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.LogConfig.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	setupLogger(cfg)
	// Init database
	db := postgres.MustInitDB(cfg)

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers)
	sub := publisher.NewDefaultKafkaSubscriber(brokers)

	compMetrics := metrics.NewCompMetrics()

	// Init repositories
	treeRepo := repository.NewDefaultTreeRepository(db)
	volumeRepo := repository.NewDefaultVolumeRepository(db)
	periodRepo := repository.NewDefaultPeriodRepository(db)
	planRepo := repository.NewDefaultPlanRepository(db)
	commissionRepo := repository.NewDefaultCommissionRepository(db)
	payoutRepo := repository.NewDefaultPayoutRepository(db)
	snapshotRepo := repository.NewDefaultSnapshotRepository(db)
	runStores := repository.NewGormRunStoreFactory(db)

	// Init executor client
	executorClient := executor.NewClient(fmt.Sprintf("%s:%s", cfg.PayoutExecutor.Host, cfg.PayoutExecutor.Port))

	// Init usecases
	treeUc := usecase.NewDefaultTreeUsecase(treeRepo)
	volumeUc := usecase.NewDefaultVolumeUsecase(volumeRepo, planRepo, compMetrics)
	ledgerUc := usecase.NewDefaultLedgerUsecase(commissionRepo, payoutRepo)
	payoutUc := usecase.NewDefaultPayoutUsecase(
		payoutRepo,
		planRepo,
		executorClient,
		pub,
		compMetrics,
		cfg.KafkaService.PayoutTopic,
	)
	calculatorUc := calculator.NewDefaultCalculatorUsecase(
		treeRepo,
		volumeRepo,
		periodRepo,
		planRepo,
		commissionRepo,
		runStores,
		pub,
		compMetrics,
		cfg.KafkaService.CommissionTopic,
	)

	// Inbound event projections
	consumer := deliverykafka.NewEventConsumer(
		sub,
		treeUc,
		volumeUc,
		cfg.KafkaService.OrderTopic,
		cfg.KafkaService.EnrollmentTopic,
		cfg.KafkaService.GroupID,
	)
	if err := consumer.Start(); err != nil {
		log.Fatalf("failed to start kafka consumer: %v", err)
	}

	// Payout handoff worker
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Workers.HandoffIntervalSeconds) * time.Second)
		defer ticker.Stop()

		for {
			<-ticker.C
			if err := payoutUc.HandoffApproved(); err != nil {
				log.Printf("Payout handoff error: %v", err)
			}
		}
	}()

	// Reconciliation poller for executor callbacks that never arrived
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Workers.ReconcileIntervalSeconds) * time.Second)
		defer ticker.Stop()

		for {
			<-ticker.C
			olderThan := time.Duration(cfg.Workers.ReconcileAfterSeconds) * time.Second
			if err := payoutUc.ReconcileStale(olderThan); err != nil {
				log.Printf("Payout reconcile error: %v", err)
			}
		}
	}()

	// HTTP server
	treeHandler := handlers.NewTreeHandler(treeUc)
	ledgerHandler := handlers.NewLedgerHandler(ledgerUc)
	payoutHandler := handlers.NewPayoutHandler(payoutUc)
	periodHandler := handlers.NewPeriodHandler(calculatorUc, ledgerUc, snapshotRepo)
	planHandler := handlers.NewPlanHandler(planRepo)

	router := handlers.NewRouter(treeHandler, ledgerHandler, payoutHandler, periodHandler, planHandler)

	address := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	log.Printf("HTTP server started on %s\n", address)
	if err := router.Start(address); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}
