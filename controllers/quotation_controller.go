package controller

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"quoteflow/config"
	"quoteflow/models"
	"quoteflow/utils"
)

const (
	submissionWindow    = time.Hour
	maxSubmissionsPerIP = 3
)

type QuotationController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewQuotationController(db *gorm.DB, logger *log.Logger) *QuotationController {
	return &QuotationController{
		DB:     db,
		Logger: logger,
	}
}

type QuotationFormData struct {
	ContactName  string `json:"contactName" validate:"required,max=200"`
	ContactEmail string `json:"contactEmail" validate:"required,email"`
	ContactPhone string `json:"contactPhone" validate:"omitempty,max=30"`

	CompanyName string `json:"companyName" validate:"omitempty,max=200"`
	Industry    string `json:"industry" validate:"omitempty,max=100"`
	CompanySize string `json:"companySize" validate:"omitempty,max=50"`
	Website     string `json:"website" validate:"omitempty,max=300"`

	Objectives   []string `json:"objectives" validate:"omitempty,dive,max=500"`
	UseCases     []string `json:"useCases" validate:"omitempty,dive,max=500"`
	Integrations []string `json:"integrations" validate:"omitempty,dive,max=300"`
	DataSources  []string `json:"dataSources" validate:"omitempty,dive,max=300"`
	Message      string   `json:"message" validate:"omitempty,max=5000"`

	Timeline               string `json:"timeline" validate:"omitempty,oneof=asap 1-3-months 3-6-months flexible"`
	Budget                 string `json:"budget" validate:"omitempty,oneof=under-10k 10k-50k 50k-100k above-100k"`
	ConsultationPreference string `json:"consultationPreference" validate:"omitempty,oneof=video-call phone email"`
}

type SubmissionMetadata struct {
	SubmittedAt string `json:"submittedAt"`
	UserAgent   string `json:"userAgent" validate:"omitempty,max=500"`
	Referrer    string `json:"referrer" validate:"omitempty,max=500"`
	UTMSource   string `json:"utmSource" validate:"omitempty,max=200"`
	UTMMedium   string `json:"utmMedium" validate:"omitempty,max=200"`
	UTMCampaign string `json:"utmCampaign" validate:"omitempty,max=200"`
}

type SubmitQuotationInput struct {
	ServiceContext string                 `json:"serviceContext" validate:"required"`
	ServiceName    string                 `json:"serviceName" validate:"required,max=200"`
	PackageType    string                 `json:"packageType" validate:"omitempty,max=100"`
	PackageName    string                 `json:"packageName" validate:"omitempty,max=100"`
	FormData       QuotationFormData      `json:"formData" validate:"required"`
	Metadata       SubmissionMetadata     `json:"metadata"`
	ROISnapshot    map[string]interface{} `json:"roiSnapshot"`
}

// SubmitQuotation handles a public quotation form submission: validation,
// abuse checks, the durable write with contact upsert, then best-effort
// side effects. Only stages before the side effects can fail the request.
func (qc *QuotationController) SubmitQuotation(c *fiber.Ctx) error {
	var input SubmitQuotationInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if !models.ValidServiceContext(input.ServiceContext) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest,
			"serviceContext must be one of: smart-assistant, knowledge-retrieval, workflow-automation, ai-consulting", nil)
	}
	if err := utils.ValidateEmailFormat(input.FormData.ContactEmail); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "formData.contactEmail must be a valid email", err)
	}

	email := strings.ToLower(strings.TrimSpace(input.FormData.ContactEmail))

	// Advisory MX check, production only. A domain without MX records is a
	// signal for sales, not a rejection.
	if config.AppConfig.Environment == "production" {
		if hasMX, err := utils.ValidateMXRecords(email); err == nil && !hasMX {
			utils.LogEvent("email_domain_no_mx", map[string]interface{}{
				"email": email,
			})
		}
	}
	sourceIP := c.IP()
	windowStart := time.Now().Add(-submissionWindow)

	// Abuse checks: IP first, then email. Both are advisory sliding windows.
	var ipCount int64
	if err := qc.DB.Model(&models.QuotationRequest{}).
		Where("source_ip = ? AND created_at > ?", sourceIP, windowStart).
		Count(&ipCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check submission history", err)
	}
	if ipCount >= maxSubmissionsPerIP {
		utils.LogEvent("submission_rate_limited", map[string]interface{}{
			"ip": sourceIP, "count": ipCount,
		})
		return utils.ErrorResponse(c, fiber.StatusTooManyRequests,
			"Too many submissions from this address. Please try again later.", nil)
	}

	var emailCount int64
	if err := qc.DB.Model(&models.QuotationRequest{}).
		Where("contact_email = ? AND created_at > ?", email, windowStart).
		Count(&emailCount).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to check submission history", err)
	}
	if emailCount > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict,
			"A quotation request for this email was submitted recently. We'll be in touch shortly.", nil)
	}

	quotation := qc.buildQuotation(&input, email, sourceIP, c.Get("User-Agent"))
	if err := qc.DB.Create(quotation).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save quotation request", err)
	}

	// Contact enrichment is secondary; a failure here degrades, it does not
	// roll back the quotation write.
	contact, err := qc.upsertContact(quotation)
	if err != nil {
		utils.LogError("contact_upsert_failed", err, map[string]interface{}{
			"reference": quotation.ReferenceNumber,
		})
	}

	qc.dispatchSideEffects(quotation, contact)

	var contactID *uint
	if contact != nil {
		contactID = &contact.ID
	}
	return c.JSON(fiber.Map{
		"success":         true,
		"referenceNumber": quotation.ReferenceNumber,
		"contactId":       contactID,
		"message":         "Your quotation request has been received.",
	})
}

func (qc *QuotationController) buildQuotation(input *SubmitQuotationInput, email, sourceIP, userAgent string) *models.QuotationRequest {
	form := input.FormData

	submittedAt := time.Now()
	if raw := input.Metadata.SubmittedAt; raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			submittedAt = parsed
		}
	}

	// Prefer the client-reported user agent, fall back to the request header
	ua := input.Metadata.UserAgent
	if ua == "" {
		ua = userAgent
	}

	return &models.QuotationRequest{
		ReferenceNumber: utils.GenerateReferenceNumber(),
		Status:          models.QuotationStatusPending,
		ServiceContext:  models.ServiceContext(input.ServiceContext),
		ServiceName:     utils.SanitizeText(input.ServiceName),
		PackageType:     utils.SanitizeText(input.PackageType),
		PackageName:     utils.SanitizeText(input.PackageName),

		ContactName:  utils.SanitizeText(form.ContactName),
		ContactEmail: email,
		ContactPhone: utils.SanitizeText(form.ContactPhone),

		CompanyName: utils.SanitizeText(form.CompanyName),
		Industry:    utils.SanitizeText(form.Industry),
		CompanySize: utils.SanitizeText(form.CompanySize),
		Website:     utils.SanitizeText(form.Website),

		Objectives:   utils.SanitizeSlice(form.Objectives),
		UseCases:     utils.SanitizeSlice(form.UseCases),
		Integrations: utils.SanitizeSlice(form.Integrations),
		DataSources:  utils.SanitizeSlice(form.DataSources),
		Message:      utils.SanitizeText(form.Message),

		Timeline:               form.Timeline,
		Budget:                 form.Budget,
		ConsultationPreference: form.ConsultationPreference,

		SubmittedAt: submittedAt,
		SourceIP:    sourceIP,
		UserAgent:   utils.SanitizeText(ua),
		Referrer:    utils.SanitizeText(input.Metadata.Referrer),
		UTMSource:   utils.SanitizeText(input.Metadata.UTMSource),
		UTMMedium:   utils.SanitizeText(input.Metadata.UTMMedium),
		UTMCampaign: utils.SanitizeText(input.Metadata.UTMCampaign),

		ROISnapshot: input.ROISnapshot,
	}
}

// upsertContact creates or merges the contact for this submission, appends
// the typed lead reference and the activity row, and links the quotation to
// the contact. Runs in one transaction; contacts carry a unique email index
// so two near-simultaneous submissions cannot create duplicates.
func (qc *QuotationController) upsertContact(q *models.QuotationRequest) (*models.Contact, error) {
	var contact models.Contact
	now := time.Now()

	err := qc.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", q.ContactEmail).First(&contact).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			contact = models.Contact{
				Email:         q.ContactEmail,
				Name:          q.ContactName,
				Company:       q.CompanyName,
				Phone:         q.ContactPhone,
				Status:        models.ContactStatusNew,
				Source:        "quotation",
				LastContactAt: &now,
			}
			if err := tx.Create(&contact).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			// Merge: prefer new non-empty values over stale ones
			if q.ContactName != "" {
				contact.Name = q.ContactName
			}
			if q.CompanyName != "" {
				contact.Company = q.CompanyName
			}
			if q.ContactPhone != "" {
				contact.Phone = q.ContactPhone
			}
			contact.LastContactAt = &now
			if err := tx.Save(&contact).Error; err != nil {
				return err
			}
		}

		leadRef := models.ContactLeadRef{
			ContactID:  contact.ID,
			Source:     "quotation",
			SourceID:   q.ID,
			CapturedAt: now,
		}
		if err := tx.Create(&leadRef).Error; err != nil {
			return err
		}

		activity := models.ContactActivity{
			ContactID:    contact.ID,
			ActivityType: "note",
			Snippet:      "Quotation request " + q.ReferenceNumber + " for " + q.ServiceName,
			Content:      "Requested a quotation for " + q.ServiceName + " (" + q.CompanyName + ")",
			ActivityAt:   now,
		}
		if err := tx.Create(&activity).Error; err != nil {
			return err
		}

		q.ContactID = &contact.ID
		return tx.Model(q).Update("contact_id", contact.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// dispatchSideEffects runs the post-write notifications. Each effect is
// isolated; a failure is logged and never fails the request or blocks the
// other effects.
func (qc *QuotationController) dispatchSideEffects(q *models.QuotationRequest, contact *models.Contact) {
	if err := utils.ForwardLead(q); err != nil {
		utils.LogError("lead_forward_failed", err, map[string]interface{}{
			"reference": q.ReferenceNumber,
		})
	}

	if err := utils.SendQuotationConfirmation(q); err != nil {
		utils.LogError("confirmation_email_failed", err, map[string]interface{}{
			"reference": q.ReferenceNumber,
			"email":     q.ContactEmail,
		})
	}

	if err := utils.SendSalesNotification(q); err != nil {
		utils.LogError("sales_notification_failed", err, map[string]interface{}{
			"reference": q.ReferenceNumber,
		})
	}

	if contact != nil {
		if err := qc.scheduleFollowUpSequence(contact); err != nil {
			utils.LogError("sequence_scheduling_failed", err, map[string]interface{}{
				"reference":  q.ReferenceNumber,
				"contact_id": contact.ID,
			})
		}
	}
}

// scheduleFollowUpSequence creates one EmailJob per step of the default
// quotation sequence, with send times spaced by cumulative wait days.
// Skipped entirely when no default sequence is configured, the sequence is
// inactive or empty, or jobs already exist for this (contact, sequence).
func (qc *QuotationController) scheduleFollowUpSequence(contact *models.Contact) error {
	sequenceID := config.AppConfig.DefaultQuotationSequenceID
	if sequenceID == 0 {
		return nil
	}

	var sequence models.Sequence
	err := qc.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_number ASC")
	}).First(&sequence, sequenceID).Error
	if err == gorm.ErrRecordNotFound {
		qc.Logger.Printf("Default sequence %d not found - skipping follow-up scheduling", sequenceID)
		return nil
	}
	if err != nil {
		return err
	}
	if !sequence.IsActive || len(sequence.Steps) == 0 {
		return nil
	}

	// One scheduling pass per (contact, sequence) pair
	var existing int64
	if err := qc.DB.Model(&models.EmailJob{}).
		Where("contact_id = ? AND sequence_id = ?", contact.ID, sequence.ID).
		Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	now := time.Now()
	scheduledAt := now
	jobs := make([]models.EmailJob, 0, len(sequence.Steps))
	for _, step := range sequence.Steps {
		scheduledAt = scheduledAt.Add(time.Duration(step.WaitDays) * 24 * time.Hour)
		jobs = append(jobs, models.EmailJob{
			ContactID:   contact.ID,
			SequenceID:  sequence.ID,
			StepNumber:  step.StepNumber,
			TemplateID:  step.TemplateID,
			ScheduledAt: scheduledAt,
			Status:      models.EmailJobStatusScheduled,
		})
	}

	if err := qc.DB.Create(&jobs).Error; err != nil {
		return err
	}

	firstSend := jobs[0].ScheduledAt
	return qc.DB.Model(contact).Update("next_follow_up_at", firstSend).Error
}
