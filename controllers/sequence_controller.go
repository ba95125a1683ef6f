package controller

import (
	"log"
	"sort"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"quoteflow/models"
	"quoteflow/utils"
)

type SequenceController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSequenceController(db *gorm.DB, logger *log.Logger) *SequenceController {
	return &SequenceController{
		DB:     db,
		Logger: logger,
	}
}

type sequenceStepInput struct {
	StepNumber int    `json:"step_number" validate:"required,min=1"`
	WaitDays   int    `json:"wait_days" validate:"min=0"`
	TemplateID string `json:"template_id" validate:"required,max=100"`
	Subject    string `json:"subject" validate:"required,max=300"`
	Body       string `json:"body" validate:"required"`
}

type sequenceInput struct {
	Name        string              `json:"name" validate:"required,max=200"`
	Description string              `json:"description" validate:"omitempty,max=1000"`
	IsActive    *bool               `json:"is_active"`
	Steps       []sequenceStepInput `json:"steps" validate:"omitempty,dive"`
}

// CreateSequence creates a follow-up sequence with its ordered steps
func (sc *SequenceController) CreateSequence(c *fiber.Ctx) error {
	var input sequenceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	sequence := models.Sequence{
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
		Steps:       stepsFromInput(input.Steps),
	}
	if input.IsActive != nil {
		sequence.IsActive = *input.IsActive
	}

	if err := sc.DB.Create(&sequence).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create sequence", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(sequence))
}

func stepsFromInput(in []sequenceStepInput) []models.SequenceStep {
	sort.Slice(in, func(i, j int) bool { return in[i].StepNumber < in[j].StepNumber })
	steps := make([]models.SequenceStep, 0, len(in))
	for _, s := range in {
		steps = append(steps, models.SequenceStep{
			StepNumber: s.StepNumber,
			WaitDays:   s.WaitDays,
			TemplateID: s.TemplateID,
			Subject:    s.Subject,
			Body:       s.Body,
		})
	}
	return steps
}

// GetSequences returns all sequences with their steps
func (sc *SequenceController) GetSequences(c *fiber.Ctx) error {
	var sequences []models.Sequence
	err := sc.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_number ASC")
	}).Find(&sequences).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sequences", err)
	}

	return c.JSON(utils.SuccessResponse(sequences))
}

// GetSequence returns a single sequence with steps
func (sc *SequenceController) GetSequence(c *fiber.Ctx) error {
	var sequence models.Sequence
	err := sc.DB.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("step_number ASC")
	}).First(&sequence, c.Params("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sequence", err)
	}

	return c.JSON(utils.SuccessResponse(sequence))
}

// UpdateSequence updates name/description/active flag and, when steps are
// provided, replaces the step list wholesale.
func (sc *SequenceController) UpdateSequence(c *fiber.Ctx) error {
	var input sequenceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var sequence models.Sequence
	if err := sc.DB.First(&sequence, c.Params("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sequence", err)
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		sequence.Name = input.Name
		sequence.Description = input.Description
		if input.IsActive != nil {
			sequence.IsActive = *input.IsActive
		}
		if err := tx.Save(&sequence).Error; err != nil {
			return err
		}

		if input.Steps != nil {
			if err := tx.Where("sequence_id = ?", sequence.ID).Delete(&models.SequenceStep{}).Error; err != nil {
				return err
			}
			steps := stepsFromInput(input.Steps)
			for i := range steps {
				steps[i].SequenceID = sequence.ID
			}
			if len(steps) > 0 {
				if err := tx.Create(&steps).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update sequence", err)
	}

	return sc.GetSequence(c)
}

// DeleteSequence removes a sequence, its steps, and any unsent jobs
func (sc *SequenceController) DeleteSequence(c *fiber.Ctx) error {
	tx := sc.DB.Begin()

	seqID := c.Params("id")
	if err := tx.Where("sequence_id = ?", seqID).Delete(&models.SequenceStep{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete sequence steps", err)
	}

	// Unsent jobs are canceled rather than deleted so delivery history survives
	if err := tx.Model(&models.EmailJob{}).
		Where("sequence_id = ? AND status = ?", seqID, models.EmailJobStatusScheduled).
		Update("status", models.EmailJobStatusCanceled).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel scheduled jobs", err)
	}

	result := tx.Delete(&models.Sequence{}, seqID)
	if result.Error != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete sequence", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	tx.Commit()

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Sequence deleted successfully",
	}))
}
