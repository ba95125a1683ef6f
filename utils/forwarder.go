package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"quoteflow/config"
	"quoteflow/models"
)

// LeadPayload is the normalized lead shape the unified ingestion endpoint
// accepts, regardless of which form produced it.
type LeadPayload struct {
	Email     string                 `json:"email"`
	Name      string                 `json:"name"`
	Company   string                 `json:"company"`
	Phone     string                 `json:"phone"`
	Service   string                 `json:"service"`
	Source    string                 `json:"source"`
	Message   string                 `json:"message"`
	Reference string                 `json:"reference"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

var forwardClient = &http.Client{Timeout: 10 * time.Second}

// ForwardLead posts the normalized lead to the configured ingestion
// endpoint. Callers treat any error as non-fatal.
func ForwardLead(q *models.QuotationRequest) error {
	endpoint := config.AppConfig.IngestEndpointURL
	if endpoint == "" {
		return nil // forwarding disabled
	}

	payload := LeadPayload{
		Email:     q.ContactEmail,
		Name:      q.ContactName,
		Company:   q.CompanyName,
		Phone:     q.ContactPhone,
		Service:   q.ServiceName,
		Source:    "quotation",
		Message:   q.Message,
		Reference: q.ReferenceNumber,
		Metadata: map[string]interface{}{
			"referrer":     q.Referrer,
			"utm_source":   q.UTMSource,
			"utm_medium":   q.UTMMedium,
			"utm_campaign": q.UTMCampaign,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode lead payload: %w", err)
	}

	resp, err := forwardClient.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("lead forward failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ingestion endpoint returned %d", resp.StatusCode)
	}
	return nil
}
