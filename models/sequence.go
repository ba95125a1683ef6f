package models

import (
	"time"

	"gorm.io/gorm"
)

type EmailJobStatus string

const (
	EmailJobStatusScheduled EmailJobStatus = "scheduled"
	EmailJobStatusSent      EmailJobStatus = "sent"
	EmailJobStatusFailed    EmailJobStatus = "failed"
	EmailJobStatusCanceled  EmailJobStatus = "canceled"
)

// Sequence represents an automated follow-up email sequence
type Sequence struct {
	gorm.Model

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	// No default tag: gorm would drop an explicit false on insert and the
	// dispatcher would schedule jobs for a paused sequence.
	IsActive bool `json:"is_active"`

	// Relations
	Steps []SequenceStep `gorm:"foreignKey:SequenceID" json:"steps,omitempty"`
}

// SequenceStep represents one ordered step in a sequence
type SequenceStep struct {
	gorm.Model
	SequenceID uint `gorm:"not null;index" json:"sequence_id"`

	StepNumber int    `gorm:"not null" json:"step_number"`
	WaitDays   int    `gorm:"not null" json:"wait_days"` // days after the previous step
	TemplateID string `gorm:"not null" json:"template_id"`
	Subject    string `gorm:"not null" json:"subject"`
	Body       string `gorm:"type:text" json:"body"` // html/template with .Name/.Company

	// Tracking
	SentCount int `gorm:"default:0" json:"sent_count"`
}

// EmailJob is a scheduled future send for one sequence step and one contact.
// Created in bulk when a contact first qualifies for a sequence; the email
// worker drains due jobs and records delivery metadata.
type EmailJob struct {
	gorm.Model
	ContactID  uint `gorm:"not null;index" json:"contact_id"`
	SequenceID uint `gorm:"not null;index" json:"sequence_id"`

	StepNumber  int            `gorm:"not null" json:"step_number"`
	TemplateID  string         `gorm:"not null" json:"template_id"`
	ScheduledAt time.Time      `gorm:"not null;index" json:"scheduled_at"`
	Status      EmailJobStatus `gorm:"type:string;default:'scheduled';index" json:"status"`

	// Delivery metadata
	MessageID   string     `json:"message_id"`
	SentAt      *time.Time `json:"sent_at"`
	OpenedAt    *time.Time `json:"opened_at"`
	ClickedAt   *time.Time `json:"clicked_at"`
	BouncedAt   *time.Time `json:"bounced_at"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastError   string     `json:"last_error"`
	NextRetryAt *time.Time `json:"next_retry_at"`

	// Relations
	Contact  Contact  `json:"-"`
	Sequence Sequence `json:"-"`
}
