package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqplib "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Harsh-BH/datalake/internal/domain"
)

type publishCall struct {
	exchange string
	key      string
	msg      amqplib.Publishing
}

// fakeChannel confirms every publish with ack unless nack is set.
type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	nack       bool
	noConfirm  bool
	published  []publishCall
	confirm    chan amqplib.Confirmation
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqplib.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqplib.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, publishCall{exchange: exchange, key: key, msg: msg})
	if !f.noConfirm {
		f.confirm <- amqplib.Confirmation{DeliveryTag: uint64(len(f.published)), Ack: !f.nack}
	}
	return nil
}

func (f *fakeChannel) NotifyPublish(confirm chan amqplib.Confirmation) chan amqplib.Confirmation {
	f.confirm = confirm
	return confirm
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func sampleReport() *domain.RunReport {
	report := domain.NewRunReport("provision", "lake")
	report.Steps = []domain.StepResult{
		{Name: "create-bucket", Policy: domain.PolicyBestEffort, Status: domain.StepSucceeded},
	}
	return report
}

func TestPublishRun(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"datalake.events:topic"}, ch.declared)

	report := sampleReport()
	require.NoError(t, p.PublishRun(context.Background(), report))

	require.Len(t, ch.published, 1)
	call := ch.published[0]
	assert.Equal(t, "datalake.events", call.exchange)
	assert.Equal(t, "run.provision", call.key)
	assert.Equal(t, report.RunID.String(), call.msg.MessageId)
	assert.Equal(t, "COMPLETED", call.msg.Type)
	assert.Equal(t, amqplib.Persistent, call.msg.DeliveryMode)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(call.msg.Body, &decoded))
	assert.Equal(t, "lake", decoded["bucket"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestPublishRun_Nack(t *testing.T) {
	p, err := newPublisher(&fakeChannel{nack: true}, zap.NewNop())
	require.NoError(t, err)

	err = p.PublishRun(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nacked")
}

func TestPublishRun_PublishError(t *testing.T) {
	cause := errors.New("channel/connection is not open")
	p, err := newPublisher(&fakeChannel{publishErr: cause}, zap.NewNop())
	require.NoError(t, err)

	assert.ErrorIs(t, p.PublishRun(context.Background(), sampleReport()), cause)
}

func TestPublishRun_ConfirmTimeout(t *testing.T) {
	p, err := newPublisher(&fakeChannel{noConfirm: true}, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = p.PublishRun(ctx, sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestNewPublisher_DeclareError(t *testing.T) {
	_, err := newPublisher(&fakeChannel{declareErr: errors.New("access refused")}, zap.NewNop())
	assert.Error(t, err)
}

func TestPublishRun_IgnoresLateConfirmFromTimedOutPublish(t *testing.T) {
	ch := &fakeChannel{noConfirm: true}
	p, err := newPublisher(ch, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, p.PublishRun(ctx, sampleReport()))

	// The broker nacks the first message after the publisher gave up on it.
	ch.confirm <- amqplib.Confirmation{DeliveryTag: 1, Ack: false}

	ch.noConfirm = false
	assert.NoError(t, p.PublishRun(context.Background(), sampleReport()))
	assert.Len(t, ch.published, 2)
}
