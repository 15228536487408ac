package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPreview(t *testing.T) {
	t.Setenv("WA_TEMPLATE_PARAMS", "name,description,delivery_date")

	out, err := run(t, "preview",
		"--name", "João", "--phone", "(11) 98765-4321",
		"--description", "Reforma", "--delivery-date", "15/03/2025")
	require.NoError(t, err)

	var p preview
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Equal(t, "5511987654321", string(p.Phone))
	assert.True(t, p.PhoneCanonical)
	assert.Equal(t, "15/03/2025", p.DeliveryDate)
	assert.Equal(t, []string{"João", "Reforma", "15/03/2025"}, p.Template.BodyParameters)
	assert.Contains(t, p.Text, "Olá, João!")
	assert.Contains(t, p.Text, "Entrega: 15/03/2025")
}

func TestPreviewAppliesSendRules(t *testing.T) {
	out, err := run(t, "preview", "--name", "  Ana  ", "--phone", "11987654321", "--description", "  Reforma ")
	require.NoError(t, err)
	var p preview
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Contains(t, p.Text, "Olá, Ana!")
	assert.Contains(t, p.Text, "Obra: Reforma\n")

	t.Setenv("REQUIRE_DELIVERY_DATE", "true")
	_, err = run(t, "preview", "--phone", "11987654321")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery date")
}

func TestPreviewRejectsUnknownTemplateParam(t *testing.T) {
	t.Setenv("WA_TEMPLATE_PARAMS", "cep")
	_, err := run(t, "preview", "--phone", "11987654321")
	assert.Error(t, err)
}

func TestSendAgainstProvider(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/v20.0/123/messages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	t.Setenv("META_WA_TOKEN", "tok")
	t.Setenv("PHONE_NUMBER_ID", "123")
	t.Setenv("WA_BASE_URL", srv.URL)
	t.Setenv("WA_API_VERSION", "v20.0")

	out, err := run(t, "send", "--phone", "11987654321", "--name", "Ana")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, out, `"success": true`)
}

func TestSendWithoutCredentialsFails(t *testing.T) {
	t.Setenv("META_WA_TOKEN", "")
	t.Setenv("PHONE_NUMBER_ID", "")
	out, err := run(t, "send", "--phone", "11987654321")
	require.Error(t, err)
	assert.Contains(t, out, "configuration_error")
}
