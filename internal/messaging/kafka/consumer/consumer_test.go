package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fakeReader serves msgs once, then cancels the consumer.
type fakeReader struct {
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(f.msgs) == 0 {
		f.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

type fakeTerminator struct {
	calls []time.Time
	err   error
}

func (f *fakeTerminator) EndAllForEmployee(ctx context.Context, companyID, employeeID string, effectiveTo time.Time) (int, error) {
	f.calls = append(f.calls, effectiveTo)
	return 2, f.err
}

type fakeRecorder struct {
	urls []string
	err  error
}

func (f *fakeRecorder) MarkPayslipGenerated(ctx context.Context, companyID, salaryID, url string) error {
	f.urls = append(f.urls, url)
	return f.err
}

func encode(t *testing.T, offset int64, v any) kafkago.Message {
	t.Helper()
	body, err := json.Marshal(v)
	assert.NoError(t, err)
	return kafkago.Message{Offset: offset, Value: body}
}

func TestConsumeEmployeeLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lastDay := time.Date(2026, 3, 15, 17, 0, 0, 0, time.UTC)

	reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
		encode(t, 1, events.EmployeeLifecycleEvent{EventType: events.EmployeeCreatedEventType, EmployeeID: "e1", CompanyID: "c1"}),
		encode(t, 2, events.EmployeeLifecycleEvent{EventType: events.EmployeeTerminatedEventType, EmployeeID: "e1", CompanyID: "c1", EffectiveDate: &lastDay}),
		{Offset: 3, Value: []byte("not json")},
	}}
	terminator := &fakeTerminator{}

	ConsumeEmployeeLifecycle(ctx, reader, terminator, zap.NewNop())

	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
	assert.Equal(t, []time.Time{time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)}, terminator.calls)
}

func TestConsumeEmployeeLifecycle_RetryableFailureNotCommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
		encode(t, 7, events.EmployeeLifecycleEvent{EventType: events.EmployeeTerminatedEventType, EmployeeID: "e1", CompanyID: "c1", OccurredAt: time.Now()}),
	}}
	terminator := &fakeTerminator{err: apperror.Persistence(errors.New("timeout"))}

	ConsumeEmployeeLifecycle(ctx, reader, terminator, zap.NewNop())

	assert.Empty(t, reader.committed)
	assert.Len(t, terminator.calls, 1)
}

func TestConsumePayslipGenerated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
		encode(t, 10, events.PayslipGeneratedEvent{EventType: events.PayslipGeneratedEventType, SalaryID: "s1", CompanyID: "c1", URL: "https://files.example/s1.pdf"}),
	}}
	recorder := &fakeRecorder{}

	ConsumePayslipGenerated(ctx, reader, recorder, zap.NewNop())

	assert.Equal(t, []string{"https://files.example/s1.pdf"}, recorder.urls)
	assert.Equal(t, []int64{10}, reader.committed)
}

func TestConsumePayslipGenerated_PermanentFailureCommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
		encode(t, 11, events.PayslipGeneratedEvent{SalaryID: "missing", CompanyID: "c1", URL: "u"}),
	}}
	recorder := &fakeRecorder{err: apperror.ErrNotFound}

	ConsumePayslipGenerated(ctx, reader, recorder, zap.NewNop())

	assert.Equal(t, []int64{11}, reader.committed)
}
