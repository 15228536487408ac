package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/prometheus/client_golang/prometheus"

	"wanotif/internal/app"
	"wanotif/internal/awsutil"
	"wanotif/internal/config"
	"wanotif/internal/httpapi"
	"wanotif/internal/intake"
	"wanotif/internal/logging"
	"wanotif/internal/observability"
	sqsqueue "wanotif/internal/queue/sqs"
	workerproc "wanotif/internal/worker"
)

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		slog.Error("worker config invalid", "err", err)
		os.Exit(1)
	}
	log := logging.Init("worker", cfg.LogFormat, cfg.LogLevel)

	// Use a root ctx we can cancel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, err := app.NewRecords(ctx, cfg.StoreConfig, cfg.AWSConfig)
	if err != nil {
		log.Error("worker record store init failed", "err", err)
		os.Exit(1)
	}
	defer records.Close()

	sqsClient, err := awsutil.NewSQSClient(ctx, cfg.AWSRegion, cfg.LocalstackEndpoint)
	if err != nil {
		log.Error("worker sqs client init failed", "err", err)
		os.Exit(1)
	}

	queueReachable := func(c context.Context) error {
		_, err := sqsClient.GetQueueAttributes(c, &sqs.GetQueueAttributesInput{
			QueueUrl:       &cfg.SQSQueueURL,
			AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
		})
		return err
	}

	startupCtx, startupCancel := context.WithTimeout(ctx, 3*time.Second)
	defer startupCancel()
	if err := queueReachable(startupCtx); err != nil {
		log.Error("sqs not reachable", "err", err)
		os.Exit(1)
	}

	seq, err := app.NewSequencer(ctx, cfg.WhatsAppConfig, cfg.AWSConfig, log)
	if err != nil {
		log.Error("worker dispatch init failed", "err", err)
		os.Exit(1)
	}
	if perr := seq.Preflight(); perr != nil {
		// events are left on the queue until the credentials are fixed
		log.Warn("whatsapp not configured", "err", perr.Message)
	}

	observability.Register(prometheus.DefaultRegisterer)

	consumer := &sqsqueue.Consumer{
		SQS: sqsClient, QueueURL: cfg.SQSQueueURL,
		WaitTimeSeconds:   cfg.SQSWaitTime,
		MaxMessages:       cfg.SQSMaxMsgs,
		VisibilityTimeout: cfg.SQSVizTimeout,
	}

	// health server (liveness + readiness)
	health := httpapi.New()
	checks := append([]httpapi.Check{{Name: "sqs", Fn: queueReachable}}, records.Checks...)
	health.RegisterProbes(2*time.Second, checks...)

	healthSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.Logging(health.Mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	healthErrCh := make(chan error, 1)
	go func() {
		log.Info("worker health listening", "port", cfg.Port)
		healthErrCh <- healthSrv.ListenAndServe()
	}()

	processor := &workerproc.Processor{
		Intake:     &intake.Adapter{Lookup: records.Lookup},
		Dispatcher: seq,
		Logger:     log,
	}

	// start polling
	pollErrCh := make(chan error, 1)
	go func() {
		log.Info("worker starting poll", "queue_url", cfg.SQSQueueURL, "concurrency", cfg.WorkerConcurrency)
		pollErrCh <- consumer.PollConcurrent(ctx, cfg.WorkerConcurrency, func(ctx context.Context, ev sqsqueue.Event) (err error) {
			start := time.Now()
			defer func() {
				status := "ok"
				if err != nil {
					status = "redrive"
				}
				log.Info("worker event finish",
					"sqs_message_id", ev.MessageID,
					"status", status,
					"duration", time.Since(start),
				)
			}()
			return processor.Process(ctx, ev)
		})
	}()

	// shutdown wiring
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-pollErrCh:
		if err != nil && err != context.Canceled {
			log.Error("worker poll failed", "err", err)
			os.Exit(1)
		}
	case err := <-healthErrCh:
		if err != nil && err != http.ErrServerClosed {
			log.Error("worker health server failed", "err", err)
			os.Exit(1)
		}
	case sig := <-sigCh:
		log.Info("worker shutdown", "signal", sig.String())
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = healthSrv.Shutdown(shutdownCtx)

	select {
	case <-pollErrCh:
	case <-time.After(10 * time.Second):
		log.Info("worker shutdown timeout waiting for poll loop")
	}
}
