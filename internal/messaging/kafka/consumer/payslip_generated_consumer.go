package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"go-payroll/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type PayslipRecorder interface {
	MarkPayslipGenerated(ctx context.Context, companyID, salaryID, url string) error
}

func ConsumePayslipGenerated(
	ctx context.Context,
	reader MessageReader,
	recorder PayslipRecorder,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payslip_generated")
	log.Info("payslip generated consumer started")

	run(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		var event events.PayslipGeneratedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("%w: decode payslip generated event: %v", errSkip, err)
		}

		if err := recorder.MarkPayslipGenerated(ctx, event.CompanyID, event.SalaryID, event.URL); err != nil {
			return err
		}

		log.Info("payslip recorded",
			zap.String("salary_id", event.SalaryID),
			zap.String("company_id", event.CompanyID),
		)
		return nil
	})
}
