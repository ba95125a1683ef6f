package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteflow/config"
	"quoteflow/models"
)

func TestRenderStepBody(t *testing.T) {
	step := &models.SequenceStep{
		Body: "Hi {{.Name}}, following up on {{.Company}}'s request.",
	}
	contact := &models.Contact{Name: "Jane", Company: "Acme Corp", Email: "jane@example.com"}

	body, err := RenderStepBody(step, contact)
	require.NoError(t, err)
	assert.Equal(t, "Hi Jane, following up on Acme Corp's request.", body)
}

func TestRenderStepBodyBadTemplate(t *testing.T) {
	step := &models.SequenceStep{Body: "Hi {{.Name"}
	_, err := RenderStepBody(step, &models.Contact{})
	assert.Error(t, err)
}

func TestSendEmailReachesTransportAfterRender(t *testing.T) {
	config.AppConfig = config.Config{}

	// Template renders fine; the unconfigured transport error proves the
	// send path past rendering was reached.
	err := SendEmail(EmailData{
		Subject:  "Test",
		To:       []string{"jane@example.com"},
		Template: "confirmation",
		Data: map[string]interface{}{
			"Subject": "Test", "Name": "Jane", "ReferenceNumber": "QR-2026-000123",
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP not configured")
}

func TestSendRawEmailRequiresSMTPConfig(t *testing.T) {
	config.AppConfig = config.Config{}

	_, err := SendRawEmail([]string{"jane@example.com"}, nil, nil, "Subject", "<p>hi</p>", "no-reply@quoteflow.io")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMTP not configured")
}

func TestServiceEmailConfigsCoverAllServiceLines(t *testing.T) {
	for _, svc := range []models.ServiceContext{
		models.ServiceSmartAssistant,
		models.ServiceKnowledgeRetrieval,
		models.ServiceWorkflowAutomation,
		models.ServiceAIConsulting,
	} {
		cfg, ok := serviceEmailConfigs[svc]
		require.True(t, ok, string(svc))
		assert.NotEmpty(t, cfg.Subject)
		assert.NotEmpty(t, cfg.AccentColor)
		assert.NotEmpty(t, cfg.Benefits)
		assert.NotEmpty(t, cfg.NextSteps)
	}
}

func TestSendQuotationConfirmationUnknownService(t *testing.T) {
	err := SendQuotationConfirmation(&models.QuotationRequest{ServiceContext: "unknown"})
	assert.Error(t, err)
}
