package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quoteflow/config"
	"quoteflow/models"
)

func TestForwardLeadDisabledWithoutEndpoint(t *testing.T) {
	config.AppConfig = config.Config{}

	err := ForwardLead(&models.QuotationRequest{ContactEmail: "jane@example.com"})
	assert.NoError(t, err)
}

func TestForwardLeadPostsNormalizedPayload(t *testing.T) {
	var received LeadPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	config.AppConfig = config.Config{IngestEndpointURL: server.URL}

	err := ForwardLead(&models.QuotationRequest{
		ReferenceNumber: "QR-2026-000123",
		ContactEmail:    "jane@example.com",
		ContactName:     "Jane Doe",
		CompanyName:     "Acme Corp",
		ServiceName:     "Smart Assistant",
		UTMSource:       "newsletter",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", received.Email)
	assert.Equal(t, "quotation", received.Source)
	assert.Equal(t, "QR-2026-000123", received.Reference)
	assert.Equal(t, "newsletter", received.Metadata["utm_source"])
}

func TestForwardLeadRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	config.AppConfig = config.Config{IngestEndpointURL: server.URL}

	err := ForwardLead(&models.QuotationRequest{ContactEmail: "jane@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
