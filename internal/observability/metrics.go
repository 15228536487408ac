package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "wanotif_api_requests_total", Help: "API requests"},
		[]string{"endpoint", "status"},
	)
	Dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "wanotif_dispatch_total", Help: "Dispatch outcomes"},
		[]string{"result"},
	)
	WhatsAppSend = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "whatsapp_send_total", Help: "WhatsApp send outcomes"},
		[]string{"kind", "result", "http_status"},
	)
	WhatsAppLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "whatsapp_send_latency_seconds", Help: "WhatsApp send latency"},
		[]string{"kind"},
	)
	OutcomePublish = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "wanotif_outcome_publish_total", Help: "Outcome event publication results"},
		[]string{"result"},
	)
	WorkerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "wanotif_worker_events_total", Help: "Project events handled by the worker"},
		[]string{"result"},
	)
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(APIRequests, Dispatches, WhatsAppSend, WhatsAppLatency, OutcomePublish, WorkerEvents)
}
