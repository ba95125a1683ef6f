package controller

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"quoteflow/models"
	"quoteflow/utils"
)

// GetQuotations returns a paginated list with server-side filters
func (qc *QuotationController) GetQuotations(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("pageSize", "20"))
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := qc.DB.Model(&models.QuotationRequest{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if service := c.Query("service"); service != "" {
		query = query.Where("service_context = ?", service)
	}
	if assignedTo := c.Query("assignedTo"); assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	if since, ok := dateRangeStart(c.Query("dateRange", "all")); ok {
		query = query.Where("created_at >= ?", since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count quotations", err)
	}

	var quotations []models.QuotationRequest
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&quotations).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch quotations", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  quotations,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// escapeLike neutralizes LIKE metacharacters so filter input matches literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func dateRangeStart(dateRange string) (time.Time, bool) {
	now := time.Now()
	switch dateRange {
	case "today":
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case "7d":
		return now.AddDate(0, 0, -7), true
	case "30d":
		return now.AddDate(0, 0, -30), true
	default: // "all" or anything else
		return time.Time{}, false
	}
}

// GetQuotation returns a single quotation request by ID
func (qc *QuotationController) GetQuotation(c *fiber.Ctx) error {
	var quotation models.QuotationRequest
	if err := qc.DB.First(&quotation, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Quotation not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch quotation", err)
	}

	return c.JSON(utils.SuccessResponse(quotation))
}

// UpdateQuotation applies admin changes: status (transition-checked),
// assignment, and notes.
func (qc *QuotationController) UpdateQuotation(c *fiber.Ctx) error {
	var input struct {
		Status     string `json:"status" validate:"omitempty,oneof=pending reviewed quoted converted declined"`
		AssignedTo string `json:"assignedTo" validate:"omitempty,max=200"`
		AdminNotes string `json:"adminNotes" validate:"omitempty,max=5000"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var quotation models.QuotationRequest
	if err := qc.DB.First(&quotation, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Quotation not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch quotation", err)
	}

	if input.Status != "" {
		next := models.QuotationStatus(input.Status)
		if next != quotation.Status {
			if !quotation.Status.CanTransitionTo(next) {
				return utils.ErrorResponse(c, fiber.StatusUnprocessableEntity,
					"Illegal status transition from "+string(quotation.Status)+" to "+string(next), nil)
			}
			quotation.Status = next

			switch next {
			case models.QuotationStatusReviewed:
				quotation.ReviewedAt = utils.Pointer(time.Now())
			case models.QuotationStatusQuoted:
				quotation.QuotedAt = utils.Pointer(time.Now())
			case models.QuotationStatusConverted:
				quotation.ConvertedAt = utils.Pointer(time.Now())
			case models.QuotationStatusDeclined:
				quotation.DeclinedAt = utils.Pointer(time.Now())
			}
		}
	}

	if input.AssignedTo != "" {
		quotation.AssignedTo = input.AssignedTo
	}
	if input.AdminNotes != "" {
		quotation.AdminNotes = utils.SanitizeText(input.AdminNotes)
	}

	if err := qc.DB.Save(&quotation).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update quotation", err)
	}

	return c.JSON(utils.SuccessResponse(quotation))
}

// GetQuotationStats returns counts by status and service line plus recent volume
func (qc *QuotationController) GetQuotationStats(c *fiber.Ctx) error {
	type countRow struct {
		Key   string `json:"key"`
		Count int64  `json:"count"`
	}

	var byStatus []countRow
	if err := qc.DB.Model(&models.QuotationRequest{}).
		Select("status as key, count(*) as count").
		Group("status").Scan(&byStatus).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute stats", err)
	}

	var byService []countRow
	if err := qc.DB.Model(&models.QuotationRequest{}).
		Select("service_context as key, count(*) as count").
		Group("service_context").Scan(&byService).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to compute stats", err)
	}

	var total, last30d int64
	qc.DB.Model(&models.QuotationRequest{}).Count(&total)
	qc.DB.Model(&models.QuotationRequest{}).
		Where("created_at >= ?", time.Now().AddDate(0, 0, -30)).Count(&last30d)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"total":      total,
		"last_30d":   last30d,
		"by_status":  byStatus,
		"by_service": byService,
	}))
}

// GetContacts returns a paginated contact list for the admin dashboard
func (qc *QuotationController) GetContacts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.Query("pageSize", "20"))
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := qc.DB.Model(&models.Contact{})
	if email := c.Query("email"); email != "" {
		query = query.Where("email LIKE ? ESCAPE '\\'", "%"+escapeLike(email)+"%")
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count contacts", err)
	}

	var contacts []models.Contact
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&contacts).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch contacts", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  contacts,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetContact returns one contact with lead refs and recent activity
func (qc *QuotationController) GetContact(c *fiber.Ctx) error {
	var contact models.Contact
	err := qc.DB.
		Preload("LeadRefs").
		Preload("Activities", func(db *gorm.DB) *gorm.DB {
			return db.Order("activity_at DESC").Limit(50)
		}).
		First(&contact, c.Params("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Contact not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch contact", err)
	}

	return c.JSON(utils.SuccessResponse(contact))
}
