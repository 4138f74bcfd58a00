package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-payroll/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// AssignmentTerminator ends every open salary component assignment of an employee.
type AssignmentTerminator interface {
	EndAllForEmployee(ctx context.Context, companyID, employeeID string, effectiveTo time.Time) (int, error)
}

func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	terminator AssignmentTerminator,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	run(ctx, reader, log, func(ctx context.Context, msg kafkago.Message) error {
		return handleEmployeeLifecycle(ctx, msg, terminator, log)
	})
}

func handleEmployeeLifecycle(ctx context.Context, msg kafkago.Message, terminator AssignmentTerminator, log *zap.Logger) error {
	var event events.EmployeeLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("%w: decode employee lifecycle event: %v", errSkip, err)
	}
	if event.EventType != events.EmployeeTerminatedEventType {
		return nil
	}

	// Assignments stay effective through the last working day.
	effectiveTo := event.OccurredAt.UTC()
	if event.EffectiveDate != nil {
		effectiveTo = event.EffectiveDate.UTC()
	}
	effectiveTo = time.Date(effectiveTo.Year(), effectiveTo.Month(), effectiveTo.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	ended, err := terminator.EndAllForEmployee(ctx, event.CompanyID, event.EmployeeID, effectiveTo)
	if err != nil {
		return err
	}

	log.Info("salary component assignments ended for terminated employee",
		zap.String("employee_id", event.EmployeeID),
		zap.String("company_id", event.CompanyID),
		zap.Int("ended", ended),
	)
	return nil
}
