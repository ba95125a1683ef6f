package utils

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReferenceNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^QR-\d{4}-\d{6}$`)

	ref := GenerateReferenceNumber()
	assert.Regexp(t, pattern, ref)
	assert.Contains(t, ref, fmt.Sprintf("QR-%d-", time.Now().Year()))
}

func TestGenerateReferenceNumberVaries(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerateReferenceNumber()] = true
	}
	// 50 draws from a million-value space should essentially never all collide
	assert.Greater(t, len(seen), 1)
}
