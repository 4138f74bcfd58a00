package app

import (
	"context"
	"fmt"
	"sync"

	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka/consumer"
	"go-payroll/internal/shared/config"
	"go-payroll/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer reacts to employee terminations and rendered payslips until
// ctx is cancelled.
func RunConsumer(ctx context.Context, cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

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

	svc := buildServices(cfg, sqlDB, gormDB, nil, zap.L())

	lifecycleReader := newReader(cfg.Kafka, events.EmployeeLifecycleTopic, "salary-components")
	defer lifecycleReader.Close()
	payslipReader := newReader(cfg.Kafka, events.PayslipGeneratedTopic, "payslips")
	defer payslipReader.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeEmployeeLifecycle(ctx, lifecycleReader, svc.components, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumePayslipGenerated(ctx, payslipReader, svc.payroll, logger)
	}()
	wg.Wait()

	logger.Info("consumer shut down")
	return nil
}

func newReader(cfg config.KafkaConfig, topic, suffix string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.Broker},
		Topic:          topic,
		GroupID:        cfg.GroupID + "-" + suffix,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}
