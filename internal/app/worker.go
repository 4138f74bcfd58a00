package app

import (
	"context"
	"fmt"
	"time"

	"go-payroll/internal/loan"
	"go-payroll/internal/messaging/kafka/producer"
	"go-payroll/internal/shared/config"
	"go-payroll/internal/shared/connection"

	"go.uber.org/zap"
)

// DelinquencySweeper is the part of the loan engine the worker drives.
type DelinquencySweeper interface {
	SweepDelinquency(ctx context.Context, asOf time.Time) (loan.SweepResult, error)
}

// RunWorker publishes the outbox and sweeps overdue loan repayments until
// ctx is cancelled.
func RunWorker(ctx context.Context, cfg config.Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DB)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.Kafka.Broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}
	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka.Broker, cfg.DB.MaxRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	svc := buildServices(cfg, sqlDB, gormDB, nil, zap.L())

	done := make(chan struct{})
	go func() {
		defer close(done)
		producer.ProcessOutboxEvents(ctx, svc.outbox, kafkaWriter, logger, cfg.Outbox.PollInterval, cfg.Outbox.BatchSize)
	}()

	SweepDelinquencyLoop(ctx, svc.loans, cfg.Loan.SweepInterval, logger)
	<-done

	logger.Info("worker shut down")
	return nil
}

// SweepDelinquencyLoop sweeps once at start and then every interval.
func SweepDelinquencyLoop(ctx context.Context, sweeper DelinquencySweeper, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	log := logger.Named("loan.sweep")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		result, err := sweeper.SweepDelinquency(ctx, time.Now().UTC())
		if err != nil {
			log.Error("delinquency sweep failed", zap.Error(err))
		} else if result.RepaymentsMissed > 0 || result.Failures > 0 {
			log.Info("delinquency sweep finished",
				zap.Int("loans_checked", result.LoansChecked),
				zap.Int("repayments_missed", result.RepaymentsMissed),
				zap.Int("loans_defaulted", result.LoansDefaulted),
				zap.Int("failures", result.Failures),
			)
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			log.Info("delinquency sweep stopped")
			return
		}
	}
}
