package worker

import (
	"context"
	"errors"
	"log/slog"

	"wanotif/internal/domain"
	"wanotif/internal/intake"
	"wanotif/internal/observability"
	sqsqueue "wanotif/internal/queue/sqs"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, req domain.NotificationRequest) domain.DispatchOutcome
}

// Processor handles one project event. A returned error leaves the message
// on the queue; everything else is acknowledged.
type Processor struct {
	Intake     *intake.Adapter
	Dispatcher Dispatcher
	Logger     *slog.Logger
}

func (p *Processor) Process(ctx context.Context, ev sqsqueue.Event) error {
	log := p.logger().With("sqs_message_id", ev.MessageID)

	raw, err := intake.Decode(ev.Body)
	if err != nil {
		observability.WorkerEvents.WithLabelValues("bad_payload").Inc()
		log.Warn("dropping malformed project event", "err", err)
		return nil
	}

	req, err := p.Intake.Adapt(ctx, raw, "")
	if errors.Is(err, intake.ErrCustomerNotFound) {
		observability.WorkerEvents.WithLabelValues("customer_not_found").Inc()
		log.Warn("dropping project event", "err", err)
		return nil
	}
	if err != nil {
		// record store hiccup, let SQS redeliver
		observability.WorkerEvents.WithLabelValues("lookup_error").Inc()
		return err
	}

	out := p.Dispatcher.Dispatch(ctx, req)
	if retryable(out) {
		observability.WorkerEvents.WithLabelValues("redrive").Inc()
		return out.Error
	}

	result := "ok"
	switch {
	case out.Error != nil:
		result = string(out.Error.Kind)
	case out.Partial:
		result = "partial"
	}
	observability.WorkerEvents.WithLabelValues(result).Inc()
	return nil
}

// retryable is true when nothing reached the provider and redelivery can
// succeed: missing credentials, or a template that never got through. Once the
// template was accepted a redelivery would send it twice.
func retryable(out domain.DispatchOutcome) bool {
	switch domain.KindOf(outcomeErr(out)) {
	case domain.KindConfiguration:
		return true
	case domain.KindTransport:
		return len(out.Responses) == 1 && out.Responses[0].Kind == domain.KindTemplate
	}
	return false
}

func outcomeErr(out domain.DispatchOutcome) error {
	if out.Error == nil {
		return nil
	}
	return out.Error
}

func (p *Processor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
