package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
)

// graphError mirrors the Graph API error envelope.
type graphError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

type sendRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Template         json.RawMessage `json:"template,omitempty"`
	Text             *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
}

type sendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type server struct {
	cfg   config
	idx   uint64
	seq   uint64
	rng   *rand.Rand
	rngMu sync.Mutex
}

func newServer(cfg config, rng *rand.Rand) *server {
	return &server{cfg: cfg, rng: rng}
}

func (s *server) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
		writeGraphError(w, http.StatusUnauthorized, 190, "OAuthException", "Invalid OAuth access token.")
		return
	}
	if mux.Vars(r)["phoneNumberID"] != s.cfg.PhoneNumberID {
		writeGraphError(w, http.StatusBadRequest, 100, "GraphMethodException", "Unsupported post request. Object does not exist.")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeGraphError(w, http.StatusBadRequest, 100, "OAuthException", "Invalid parameter")
		return
	}
	if req.MessagingProduct != "whatsapp" || req.To == "" {
		writeGraphError(w, http.StatusBadRequest, 100, "OAuthException", "(#100) The parameter messaging_product is required.")
		return
	}
	switch {
	case req.Type == "template" && len(req.Template) == 0,
		req.Type == "text" && (req.Text == nil || req.Text.Body == ""),
		req.Type != "template" && req.Type != "text":
		writeGraphError(w, http.StatusBadRequest, 131008, "OAuthException", "(#131008) Required parameter is missing")
		return
	}

	if s.cfg.Delay > 0 {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(s.cfg.Delay):
		}
	}

	outcome := s.nextOutcome(req.Type)
	switch kind, code := splitOutcome(outcome); kind {
	case "ok", "success":
		resp := sendResponse{MessagingProduct: "whatsapp"}
		resp.Contacts = append(resp.Contacts, struct {
			Input string `json:"input"`
			WaID  string `json:"wa_id"`
		}{Input: req.To, WaID: req.To})
		resp.Messages = append(resp.Messages, struct {
			ID string `json:"id"`
		}{ID: fmtWamid(atomic.AddUint64(&s.seq, 1))})
		writeJSON(w, http.StatusOK, resp)
	case "template_missing":
		writeGraphError(w, http.StatusNotFound, orDefault(code, 132001), "OAuthException", "(#132001) Template name does not exist in the translation")
	case "outside_window":
		writeGraphError(w, http.StatusBadRequest, orDefault(code, 131047), "OAuthException", "(#131047) Re-engagement message")
	case "bad_request", "400":
		writeGraphError(w, http.StatusBadRequest, orDefault(code, 100), "OAuthException", "(#100) Invalid parameter")
	case "rate_limit", "429":
		writeGraphError(w, http.StatusTooManyRequests, orDefault(code, 130429), "OAuthException", "(#130429) Rate limit hit")
	case "server_error", "500":
		writeGraphError(w, http.StatusInternalServerError, orDefault(code, 131000), "OAuthException", "(#131000) Something went wrong")
	case "malformed":
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>upstream proxy error</html>"))
	case "timeout":
		select {
		case <-r.Context().Done():
		case <-time.After(s.cfg.TimeoutDelay):
		}
		writeGraphError(w, http.StatusGatewayTimeout, 2, "OAuthException", "Service temporarily unavailable")
	default:
		writeGraphError(w, http.StatusInternalServerError, orDefault(code, 1), "OAuthException", "mock error: "+kind)
	}
}

// nextOutcome picks from the text script for text sends when one is set.
func (s *server) nextOutcome(msgType string) string {
	outcomes := s.cfg.Outcomes
	if msgType == "text" && len(s.cfg.TextOutcomes) > 0 {
		outcomes = s.cfg.TextOutcomes
	}
	switch s.cfg.OutcomeMode {
	case "round_robin":
		idx := atomic.AddUint64(&s.idx, 1) - 1
		return outcomes[int(idx)%len(outcomes)]
	case "random":
		s.rngMu.Lock()
		i := s.rng.Intn(len(outcomes))
		s.rngMu.Unlock()
		return outcomes[i]
	default:
		return outcomes[0]
	}
}

// splitOutcome reads tokens of the form kind[:code].
func splitOutcome(raw string) (string, int) {
	token := strings.TrimSpace(raw)
	if token == "" {
		return "ok", 0
	}
	kind, codeRaw, _ := strings.Cut(token, ":")
	code, _ := strconv.Atoi(codeRaw)
	return kind, code
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func writeGraphError(w http.ResponseWriter, status, code int, typ, msg string) {
	var e graphError
	e.Error.Message = msg
	e.Error.Type = typ
	e.Error.Code = code
	e.Error.FBTraceID = "mock"
	writeJSON(w, status, e)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func fmtWamid(i uint64) string {
	return "wamid.MOCK" + fmt.Sprintf("%08d", i)
}
