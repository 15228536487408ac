package sqsqueue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanotif/internal/domain"
)

type fakeSQS struct {
	mu       sync.Mutex
	sent     []*sqs.SendMessageInput
	pending  []types.Message
	deleted  []string
	received bool
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, in)
	return &sqs.SendMessageOutput{}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	if !f.received {
		f.received = true
		msgs := f.pending
		f.mu.Unlock()
		return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
	}
	f.mu.Unlock()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Millisecond):
		return &sqs.ReceiveMessageOutput{}, nil
	}
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, *in.ReceiptHandle)
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) deletedHandles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func TestPublishOutcome(t *testing.T) {
	f := &fakeSQS{}
	at := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	p := &OutcomePublisher{SQS: f, QueueURL: "https://sqs.sa-east-1.amazonaws.com/1/outcomes", Now: func() time.Time { return at }}

	err := p.PublishOutcome(context.Background(), domain.DispatchOutcome{
		DispatchID: "disp_1",
		Responses:  []domain.ProviderResponse{{Kind: domain.KindTemplate, StatusCode: 400}},
		Error:      domain.Rejection(400, "bad template", nil),
	})
	require.NoError(t, err)
	require.Len(t, f.sent, 1)
	assert.Nil(t, f.sent[0].MessageGroupId)

	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(*f.sent[0].MessageBody), &ev))
	assert.Equal(t, "disp_1", ev["dispatchId"])
	assert.Equal(t, "provider_rejection", ev["errorKind"])
	assert.Equal(t, false, ev["success"])
	assert.Equal(t, "2025-03-15T12:00:00Z", ev["occurredAt"])
	require.Len(t, ev["responses"], 1)
}

func TestPublishOutcomeFIFO(t *testing.T) {
	f := &fakeSQS{}
	p := &OutcomePublisher{SQS: f, QueueURL: "https://sqs.sa-east-1.amazonaws.com/1/outcomes.fifo"}

	require.NoError(t, p.PublishOutcome(context.Background(), domain.DispatchOutcome{DispatchID: "disp_2", Success: true}))
	require.Len(t, f.sent, 1)
	assert.Equal(t, "disp_2", *f.sent[0].MessageGroupId)
	assert.Equal(t, "disp_2", *f.sent[0].MessageDeduplicationId)
}

func TestPollConcurrentDeletesOnlyHandled(t *testing.T) {
	f := &fakeSQS{pending: []types.Message{
		{MessageId: str("m1"), ReceiptHandle: str("r1"), Body: str(`{"phone":"11987654321"}`)},
		{MessageId: str("m2"), ReceiptHandle: str("r2"), Body: str(`{"phone":"fail"}`)},
		{MessageId: str("m3"), ReceiptHandle: str("r3")},
	}}
	c := &Consumer{SQS: f, QueueURL: "q"}

	ctx, cancel := context.WithCancel(context.Background())
	var mu sync.Mutex
	var seen []string
	done := make(chan error, 1)
	go func() {
		done <- c.PollConcurrent(ctx, 2, func(_ context.Context, ev Event) error {
			mu.Lock()
			seen = append(seen, ev.MessageID)
			mu.Unlock()
			if ev.MessageID == "m2" {
				return errors.New("transport failure")
			}
			return nil
		})
	}()

	require.Eventually(t, func() bool { return len(f.deletedHandles()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	assert.ElementsMatch(t, []string{"r1", "r3"}, f.deletedHandles())
	mu.Lock()
	assert.ElementsMatch(t, []string{"m1", "m2"}, seen)
	mu.Unlock()
}
