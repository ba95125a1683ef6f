package models

import (
	"time"

	"gorm.io/gorm"
)

type QuotationStatus string
type ServiceContext string

const (
	QuotationStatusPending   QuotationStatus = "pending"
	QuotationStatusReviewed  QuotationStatus = "reviewed"
	QuotationStatusQuoted    QuotationStatus = "quoted"
	QuotationStatusConverted QuotationStatus = "converted"
	QuotationStatusDeclined  QuotationStatus = "declined"

	ServiceSmartAssistant     ServiceContext = "smart-assistant"
	ServiceKnowledgeRetrieval ServiceContext = "knowledge-retrieval"
	ServiceWorkflowAutomation ServiceContext = "workflow-automation"
	ServiceAIConsulting       ServiceContext = "ai-consulting"
)

// statusTransitions is the forward-only lifecycle for quotation requests.
// Updates outside this table are rejected at the admin boundary.
var statusTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusPending:  {QuotationStatusReviewed, QuotationStatusDeclined},
	QuotationStatusReviewed: {QuotationStatusQuoted, QuotationStatusDeclined},
	QuotationStatusQuoted:   {QuotationStatusConverted, QuotationStatusDeclined},
}

// CanTransitionTo reports whether moving from s to next is a legal status change.
func (s QuotationStatus) CanTransitionTo(next QuotationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidServiceContext reports whether v is one of the four service lines.
func ValidServiceContext(v string) bool {
	switch ServiceContext(v) {
	case ServiceSmartAssistant, ServiceKnowledgeRetrieval, ServiceWorkflowAutomation, ServiceAIConsulting:
		return true
	}
	return false
}

// QuotationRequest represents one quotation form submission
type QuotationRequest struct {
	gorm.Model

	// Human-facing reference, QR-<year>-<6 digits>. Not globally unique by
	// construction; collision risk accepted at expected volume.
	ReferenceNumber string `gorm:"not null;index" json:"reference_number"`

	Status         QuotationStatus `gorm:"type:string;default:'pending';index" json:"status"`
	ServiceContext ServiceContext  `gorm:"not null;index" json:"service_context"`
	ServiceName    string          `gorm:"not null" json:"service_name"`
	PackageType    string          `json:"package_type"`
	PackageName    string          `json:"package_name"`

	// Contact info
	ContactName  string `gorm:"not null" json:"contact_name"`
	ContactEmail string `gorm:"not null;index" json:"contact_email"`
	ContactPhone string `json:"contact_phone"`

	// Business info
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
	CompanySize string `json:"company_size"`
	Website     string `json:"website"`

	// Project scope and technical requirements, free-text sanitized
	Objectives   []string `gorm:"type:jsonb;serializer:json" json:"objectives"`
	UseCases     []string `gorm:"type:jsonb;serializer:json" json:"use_cases"`
	Integrations []string `gorm:"type:jsonb;serializer:json" json:"integrations"`
	DataSources  []string `gorm:"type:jsonb;serializer:json" json:"data_sources"`
	Message      string   `gorm:"type:text" json:"message"`

	// Timeline and budget
	Timeline               string `json:"timeline"` // asap, 1-3-months, 3-6-months, flexible
	Budget                 string `json:"budget"`   // under-10k, 10k-50k, 50k-100k, above-100k
	ConsultationPreference string `json:"consultation_preference"`

	// Submission metadata
	SubmittedAt time.Time `json:"submitted_at"`
	SourceIP    string    `gorm:"index" json:"-"`
	UserAgent   string    `json:"user_agent"`
	Referrer    string    `json:"referrer"`
	UTMSource   string    `json:"utm_source"`
	UTMMedium   string    `json:"utm_medium"`
	UTMCampaign string    `json:"utm_campaign"`

	// Optional ROI calculator snapshot, passed through untouched
	ROISnapshot map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"roi_snapshot,omitempty"`

	// Admin fields
	AssignedTo  string     `gorm:"index" json:"assigned_to"`
	AdminNotes  string     `gorm:"type:text" json:"admin_notes"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	QuotedAt    *time.Time `json:"quoted_at"`
	ConvertedAt *time.Time `json:"converted_at"`
	DeclinedAt  *time.Time `json:"declined_at"`

	ContactID *uint `gorm:"index" json:"contact_id,omitempty"`
}
