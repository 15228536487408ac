package main

import (
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/kelseyhightower/envconfig"

	"wanotif/internal/logging"
)

type config struct {
	Token         string `envconfig:"META_WA_TOKEN" default:"mock_token"`
	PhoneNumberID string `envconfig:"PHONE_NUMBER_ID" default:"mock_phone_id"`
	Port          string `envconfig:"PORT" default:"8080"`
	OutcomeMode   string `envconfig:"MOCK_OUTCOME_MODE" default:"fixed"`
	OutcomesRaw   string `envconfig:"MOCK_OUTCOMES" default:"ok"`
	// TextOutcomesRaw, when set, scripts free-text sends separately from templates.
	TextOutcomesRaw string `envconfig:"MOCK_TEXT_OUTCOMES" default:""`
	DelayMs         int    `envconfig:"MOCK_DELAY_MS" default:"0"`
	TimeoutDelayMs  int    `envconfig:"MOCK_TIMEOUT_DELAY_MS" default:"12000"`

	Outcomes     []string
	TextOutcomes []string
	Delay        time.Duration
	TimeoutDelay time.Duration
}

func main() {
	logging.Init("mock-provider", "json", "info")
	cfg := loadConfig()

	s := newServer(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))

	slog.Info("mock provider listening", "port", cfg.Port, "phone_number_id", cfg.PhoneNumberID)
	if err := http.ListenAndServe(":"+cfg.Port, loggingMiddleware(s.routes())); err != nil {
		slog.Error("mock provider server failed", "err", err)
		os.Exit(1)
	}
}

func (s *server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/{version}/{phoneNumberID}/messages", s.handleSend).Methods(http.MethodPost)
	return router
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		slog.Info("mock provider request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func loadConfig() config {
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		slog.Error("mock provider config load failed", "err", err)
		os.Exit(1)
	}
	return normalizeConfig(cfg)
}

func normalizeConfig(cfg config) config {
	cfg.OutcomeMode = strings.ToLower(cfg.OutcomeMode)
	cfg.Outcomes = parseCSV(cfg.OutcomesRaw)
	if strings.TrimSpace(cfg.TextOutcomesRaw) != "" {
		cfg.TextOutcomes = parseCSV(cfg.TextOutcomesRaw)
	}
	cfg.Delay = time.Duration(cfg.DelayMs) * time.Millisecond
	cfg.TimeoutDelay = time.Duration(cfg.TimeoutDelayMs) * time.Millisecond
	return cfg
}

func parseCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return []string{"ok"}
	}
	return out
}
