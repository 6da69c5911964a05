package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-payrun/internal/attendance"
	"go-payrun/internal/employee"
	"go-payrun/internal/events"
	"go-payrun/internal/messaging/kafka/consumer"
	"go-payrun/internal/params"
	"go-payrun/internal/payrun"
	"go-payrun/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer listens for finance-system acknowledgements and flips the
// acknowledged runs to SYNCED.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	payrunRepo := payrun.NewRepository(gormDB)
	payrunService := payrun.NewService(
		sqlDB,
		payrunRepo,
		params.NewRepository(gormDB),
		employee.NewRepository(gormDB),
		attendance.NewRepository(gormDB),
	)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.PayrollRunSyncAckedTopic,
		GroupID:        "go-payrun-finance-sync",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeFinanceSyncAcks(ctx, reader, payrunService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
