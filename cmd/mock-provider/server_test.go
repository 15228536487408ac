package main

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wanotif/internal/compose"
	"wanotif/internal/dispatch"
	"wanotif/internal/domain"
	"wanotif/internal/providers/whatsapp"
)

func startMock(t *testing.T, outcomes, textOutcomes string) (*httptest.Server, *whatsapp.Client) {
	t.Helper()
	cfg := normalizeConfig(config{
		Token:           "tok",
		PhoneNumberID:   "123",
		OutcomeMode:     "fixed",
		OutcomesRaw:     outcomes,
		TextOutcomesRaw: textOutcomes,
	})
	srv := httptest.NewServer(newServer(cfg, rand.New(rand.NewSource(1))).routes())
	t.Cleanup(srv.Close)
	return srv, &whatsapp.Client{
		Token:         "tok",
		PhoneNumberID: "123",
		BaseURL:       srv.URL,
		APIVersion:    "v20.0",
		HTTP:          &http.Client{Timeout: time.Second},
	}
}

func TestMockAcceptsTemplate(t *testing.T) {
	_, c := startMock(t, "ok", "")
	resp, err := c.Send(context.Background(), "5511987654321", domain.TemplateMessage{Name: "obra_criada", LanguageCode: "pt_BR"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.MessageID(), "wamid.MOCK"))
}

func TestMockRejectsBadToken(t *testing.T) {
	_, c := startMock(t, "ok", "")
	c.Token = "wrong"
	resp, err := c.Send(context.Background(), "5511987654321", domain.TextMessage{Body: "oi"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid OAuth access token. (code 190)", resp.ErrorMessage())
}

func TestMockScriptedOutcomes(t *testing.T) {
	_, c := startMock(t, "template_missing", "")
	resp, err := c.Send(context.Background(), "5511987654321", domain.TemplateMessage{Name: "nope", LanguageCode: "pt_BR"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.ErrorMessage(), "132001")

	_, c = startMock(t, "malformed", "")
	_, err = c.Send(context.Background(), "5511987654321", domain.TextMessage{Body: "oi"})
	assert.ErrorIs(t, err, whatsapp.ErrMalformedResponse)
}

func TestMockDrivesPartialDispatch(t *testing.T) {
	_, c := startMock(t, "ok", "server_error")
	seq := &dispatch.Sequencer{
		Sender:   c,
		Composer: compose.Composer{TemplateName: "obra_criada", LanguageCode: "pt_BR", TemplateParams: []string{"description"}},
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	out := seq.Dispatch(context.Background(), domain.NotificationRequest{Name: "Ana", Phone: "11987654321", Description: "Reforma"})
	assert.True(t, out.Success)
	assert.True(t, out.Partial)
	require.Len(t, out.Responses, 2)
	assert.Equal(t, http.StatusOK, out.Responses[0].StatusCode)
	assert.Equal(t, http.StatusInternalServerError, out.Responses[1].StatusCode)
}

func TestSplitOutcome(t *testing.T) {
	kind, code := splitOutcome("bad_request:131026")
	assert.Equal(t, "bad_request", kind)
	assert.Equal(t, 131026, code)

	kind, code = splitOutcome(" ")
	assert.Equal(t, "ok", kind)
	assert.Zero(t, code)
}
