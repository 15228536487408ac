// Package app assembles the dispatch pipeline from configuration. Both
// binaries build the same graph; only their front door differs.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"wanotif/internal/awsutil"
	"wanotif/internal/compose"
	"wanotif/internal/config"
	"wanotif/internal/dispatch"
	"wanotif/internal/httpapi"
	"wanotif/internal/intake"
	"wanotif/internal/providers/whatsapp"
	sqsqueue "wanotif/internal/queue/sqs"
	"wanotif/internal/store/dynamo"
	"wanotif/internal/store/pg"
)

// NewComposer rejects template parameter sources it does not know.
func NewComposer(cfg config.WhatsAppConfig) (compose.Composer, error) {
	for _, p := range cfg.TemplateParams {
		if !compose.ValidParam(p) {
			return compose.Composer{}, fmt.Errorf("WA_TEMPLATE_PARAMS: unknown parameter %q", p)
		}
	}
	return compose.Composer{
		TemplateName:   cfg.TemplateName,
		LanguageCode:   cfg.TemplateLang,
		TemplateParams: cfg.TemplateParams,
	}, nil
}

func NewClient(cfg config.WhatsAppConfig) *whatsapp.Client {
	return &whatsapp.Client{
		Token:         cfg.Token,
		PhoneNumberID: cfg.PhoneNumberID,
		BaseURL:       cfg.BaseURL,
		APIVersion:    cfg.APIVersion,
		HTTP:          &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second},
	}
}

// NewSequencer wires the provider client, guard and optional outcome publisher.
func NewSequencer(ctx context.Context, wa config.WhatsAppConfig, aws config.AWSConfig, log *slog.Logger) (*dispatch.Sequencer, error) {
	composer, err := NewComposer(wa)
	if err != nil {
		return nil, err
	}
	seq := &dispatch.Sequencer{
		Sender:   NewClient(wa),
		Composer: composer,
		Policy: dispatch.Policy{
			RequireDescription:  wa.RequireDescription,
			RequireDeliveryDate: wa.RequireDeliveryDate,
		},
		Guard:  dispatch.NewGuard(wa.RPSPerPod, wa.Burst),
		Logger: log,
	}

	if aws.OutcomeQueueURL != "" {
		client, err := awsutil.NewSQSClient(ctx, aws.AWSRegion, aws.LocalstackEndpoint)
		if err != nil {
			return nil, fmt.Errorf("outcome queue: %w", err)
		}
		seq.Publisher = &sqsqueue.OutcomePublisher{SQS: client, QueueURL: aws.OutcomeQueueURL}
	}
	return seq, nil
}

// Records is the selected customer record backend. Lookup is nil when
// RECORD_STORE is none.
type Records struct {
	Lookup intake.Lookup
	Checks []httpapi.Check
	Close  func()
}

func NewRecords(ctx context.Context, st config.StoreConfig, aws config.AWSConfig) (Records, error) {
	noop := func() {}
	switch st.RecordStore {
	case "", "none":
		return Records{Close: noop}, nil

	case "postgres":
		if st.DBDSN == "" {
			return Records{}, fmt.Errorf("RECORD_STORE=postgres requires DB_DSN")
		}
		pool, err := pg.NewPool(ctx, st.DBDSN, pg.PoolOptions{
			MaxConns:          st.DBMaxConns,
			MinConns:          st.DBMinConns,
			MaxConnLifetime:   st.DBMaxConnLifetime,
			MaxConnIdleTime:   st.DBMaxConnIdleTime,
			HealthCheckPeriod: st.DBHealthCheckPeriod,
		})
		if err != nil {
			return Records{}, err
		}
		s := pg.New(pool)
		return Records{
			Lookup: s,
			Checks: []httpapi.Check{{Name: "postgres", Fn: s.Ping}},
			Close:  pool.Close,
		}, nil

	case "dynamodb":
		client, err := awsutil.NewDynamoClient(ctx, aws.AWSRegion, aws.LocalstackEndpoint)
		if err != nil {
			return Records{}, err
		}
		s := dynamo.New(client, st.DynamoTable)
		return Records{
			Lookup: s,
			Checks: []httpapi.Check{{Name: "dynamodb", Fn: s.Ping}},
			Close:  noop,
		}, nil
	}
	return Records{}, fmt.Errorf("RECORD_STORE: unknown backend %q", st.RecordStore)
}
