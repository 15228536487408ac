package sqsqueue

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"wanotif/internal/domain"
	"wanotif/internal/util"
)

type sendAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// OutcomeEvent is what downstream consumers see for every dispatch.
// Keep it small; SQS has a 256KB message size limit.
type OutcomeEvent struct {
	DispatchID string                    `json:"dispatchId"`
	Success    bool                      `json:"success"`
	Partial    bool                      `json:"partial"`
	ErrorKind  domain.ErrorKind          `json:"errorKind,omitempty"`
	Responses  []domain.ProviderResponse `json:"responses"`
	OccurredAt time.Time                 `json:"occurredAt"`
}

// OutcomePublisher implements dispatch.Publisher.
type OutcomePublisher struct {
	SQS      sendAPI
	QueueURL string
	Now      func() time.Time
}

func (p *OutcomePublisher) PublishOutcome(ctx context.Context, out domain.DispatchOutcome) error {
	ev := OutcomeEvent{
		DispatchID: out.DispatchID,
		Success:    out.Success,
		Partial:    out.Partial,
		Responses:  out.Responses,
		OccurredAt: p.now(),
	}
	if out.Error != nil {
		ev.ErrorKind = out.Error.Kind
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	in := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: str(string(body)),
	}
	if isFIFO(p.QueueURL) {
		// one group per dispatch; the dispatch id doubles as the dedup key
		in.MessageGroupId = str(out.DispatchID)
		in.MessageDeduplicationId = str(out.DispatchID)
	}
	_, err = p.SQS.SendMessage(ctx, in)
	return err
}

func (p *OutcomePublisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return util.NowUTC()
}

func isFIFO(queueURL string) bool { return strings.HasSuffix(queueURL, ".fifo") }

func str(s string) *string { return &s }
