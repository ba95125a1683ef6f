package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    QuotationStatus
		to      QuotationStatus
		allowed bool
	}{
		{QuotationStatusPending, QuotationStatusReviewed, true},
		{QuotationStatusPending, QuotationStatusDeclined, true},
		{QuotationStatusPending, QuotationStatusQuoted, false},
		{QuotationStatusPending, QuotationStatusConverted, false},

		{QuotationStatusReviewed, QuotationStatusQuoted, true},
		{QuotationStatusReviewed, QuotationStatusDeclined, true},
		{QuotationStatusReviewed, QuotationStatusPending, false},
		{QuotationStatusReviewed, QuotationStatusConverted, false},

		{QuotationStatusQuoted, QuotationStatusConverted, true},
		{QuotationStatusQuoted, QuotationStatusDeclined, true},
		{QuotationStatusQuoted, QuotationStatusReviewed, false},

		// Terminal states allow nothing
		{QuotationStatusConverted, QuotationStatusPending, false},
		{QuotationStatusConverted, QuotationStatusDeclined, false},
		{QuotationStatusDeclined, QuotationStatusPending, false},
		{QuotationStatusDeclined, QuotationStatusReviewed, false},
	}

	for _, tt := range tests {
		got := tt.from.CanTransitionTo(tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestValidServiceContext(t *testing.T) {
	for _, v := range []string{"smart-assistant", "knowledge-retrieval", "workflow-automation", "ai-consulting"} {
		assert.True(t, ValidServiceContext(v), v)
	}
	for _, v := range []string{"", "consulting", "Smart-Assistant", "smart assistant"} {
		assert.False(t, ValidServiceContext(v), v)
	}
}
