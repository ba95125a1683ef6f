package models

import (
	"time"

	"gorm.io/gorm"
)

type ContactStatus string

const (
	ContactStatusNew        ContactStatus = "new"
	ContactStatusInProgress ContactStatus = "in_progress"
	ContactStatusQualified  ContactStatus = "qualified"
	ContactStatusClosed     ContactStatus = "closed"
)

// Contact represents a deduplicated person/lead across submission sources.
// Email is the unique key; always stored lowercased.
type Contact struct {
	gorm.Model

	Email   string `gorm:"not null;uniqueIndex" json:"email"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Phone   string `json:"phone"`

	Status ContactStatus `gorm:"type:string;default:'new'" json:"status"`
	Source string        `json:"source"` // first-touch channel: quotation, newsletter, etc.

	NextFollowUpAt *time.Time `json:"next_follow_up_at"`
	LastContactAt  *time.Time `json:"last_contact_at"`

	// Relations
	LeadRefs   []ContactLeadRef  `gorm:"foreignKey:ContactID" json:"lead_refs,omitempty"`
	Activities []ContactActivity `gorm:"foreignKey:ContactID" json:"activities,omitempty"`
	EmailJobs  []EmailJob        `gorm:"foreignKey:ContactID" json:"email_jobs,omitempty"`
}

// ContactLeadRef ties a contact back to an originating source document.
// Append-only; one row per submission that touched the contact.
type ContactLeadRef struct {
	gorm.Model
	ContactID  uint      `gorm:"not null;index" json:"contact_id"`
	Source     string    `gorm:"not null;index" json:"source"` // quotation, etc.
	SourceID   uint      `gorm:"not null" json:"source_id"`
	CapturedAt time.Time `gorm:"not null" json:"captured_at"`
}

// ContactActivity is an immutable log entry on a contact's timeline
type ContactActivity struct {
	gorm.Model
	ContactID uint `gorm:"not null;index" json:"contact_id"`

	ActivityType string    `gorm:"not null" json:"activity_type"` // note, email_sent, etc.
	Snippet      string    `json:"snippet"`
	Content      string    `gorm:"type:text" json:"content"`
	ActivityAt   time.Time `gorm:"not null" json:"activity_at"`

	// Relations
	Contact Contact `json:"-"`
}
