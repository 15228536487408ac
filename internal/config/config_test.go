package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIDefaults(t *testing.T) {
	t.Setenv("META_WA_TOKEN", "")
	t.Setenv("WA_TEMPLATE_PARAMS", "description,delivery_date")

	cfg, err := LoadAPI()
	require.NoError(t, err)
	assert.Equal(t, "https://graph.facebook.com", cfg.BaseURL)
	assert.Equal(t, "v20.0", cfg.APIVersion)
	assert.Equal(t, "obra_criada", cfg.TemplateName)
	assert.Equal(t, "pt_BR", cfg.TemplateLang)
	assert.Equal(t, []string{"description", "delivery_date"}, cfg.TemplateParams)
	assert.Equal(t, "none", cfg.RecordStore)
	assert.Empty(t, cfg.Token)
}

func TestLoadWorkerRequiresQueue(t *testing.T) {
	t.Setenv("SQS_QUEUE_URL", "")
	require.NoError(t, os.Unsetenv("SQS_QUEUE_URL"))
	_, err := LoadWorker()
	assert.Error(t, err)

	t.Setenv("SQS_QUEUE_URL", "http://localhost:4566/000000000000/project-events")
	t.Setenv("PHONE_NUMBER_ID", "1234")
	cfg, err := LoadWorker()
	require.NoError(t, err)
	assert.Equal(t, "1234", cfg.PhoneNumberID)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
}
