package controller

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"quoteflow/config"
	"quoteflow/models"
)

func setupSequenceApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.MigrateDB(db))
	config.AppConfig = config.Config{}

	sc := NewSequenceController(db, log.New(io.Discard, "", 0))
	app := fiber.New()
	app.Post("/sequences", sc.CreateSequence)
	app.Get("/sequences", sc.GetSequences)
	app.Get("/sequences/:id", sc.GetSequence)
	app.Put("/sequences/:id", sc.UpdateSequence)
	app.Delete("/sequences/:id", sc.DeleteSequence)
	return app, db
}

func TestCreateSequenceOrdersSteps(t *testing.T) {
	app, db := setupSequenceApp(t)

	resp := doJSON(t, app, http.MethodPost, "/sequences", map[string]interface{}{
		"name": "Quotation follow-up",
		"steps": []map[string]interface{}{
			{"step_number": 2, "wait_days": 3, "template_id": "t2", "subject": "Still there?", "body": "Hi {{.Name}}"},
			{"step_number": 1, "wait_days": 1, "template_id": "t1", "subject": "Checking in", "body": "Hi {{.Name}}"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sequence models.Sequence
	require.NoError(t, db.Preload("Steps", func(d *gorm.DB) *gorm.DB {
		return d.Order("step_number ASC")
	}).First(&sequence).Error)

	assert.True(t, sequence.IsActive)
	require.Len(t, sequence.Steps, 2)
	assert.Equal(t, "t1", sequence.Steps[0].TemplateID)
	assert.Equal(t, "t2", sequence.Steps[1].TemplateID)
}

func TestCreateSequenceStoresInactiveFlag(t *testing.T) {
	app, db := setupSequenceApp(t)

	resp := doJSON(t, app, http.MethodPost, "/sequences", map[string]interface{}{
		"name":      "Drafted follow-up",
		"is_active": false,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var sequence models.Sequence
	require.NoError(t, db.First(&sequence).Error)
	assert.False(t, sequence.IsActive)
}

func TestCreateSequenceRequiresName(t *testing.T) {
	app, _ := setupSequenceApp(t)

	resp := doJSON(t, app, http.MethodPost, "/sequences", map[string]interface{}{
		"description": "missing a name",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateSequenceReplacesSteps(t *testing.T) {
	app, db := setupSequenceApp(t)

	sequence := models.Sequence{
		Name:     "Old name",
		IsActive: true,
		Steps: []models.SequenceStep{
			{StepNumber: 1, WaitDays: 1, TemplateID: "old", Subject: "Old", Body: "old"},
		},
	}
	require.NoError(t, db.Create(&sequence).Error)

	resp := doJSON(t, app, http.MethodPut, fmt.Sprintf("/sequences/%d", sequence.ID), map[string]interface{}{
		"name":      "New name",
		"is_active": false,
		"steps": []map[string]interface{}{
			{"step_number": 1, "wait_days": 2, "template_id": "new-1", "subject": "New", "body": "new"},
			{"step_number": 2, "wait_days": 5, "template_id": "new-2", "subject": "Newer", "body": "newer"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated models.Sequence
	require.NoError(t, db.Preload("Steps", func(d *gorm.DB) *gorm.DB {
		return d.Order("step_number ASC")
	}).First(&updated, sequence.ID).Error)

	assert.Equal(t, "New name", updated.Name)
	assert.False(t, updated.IsActive)
	require.Len(t, updated.Steps, 2)
	assert.Equal(t, "new-1", updated.Steps[0].TemplateID)
	assert.Equal(t, 5, updated.Steps[1].WaitDays)
}

func TestDeleteSequenceCancelsScheduledJobs(t *testing.T) {
	app, db := setupSequenceApp(t)

	contact := models.Contact{Email: "jane@example.com", Status: models.ContactStatusNew}
	require.NoError(t, db.Create(&contact).Error)

	sequence := models.Sequence{
		Name:     "To delete",
		IsActive: true,
		Steps: []models.SequenceStep{
			{StepNumber: 1, WaitDays: 1, TemplateID: "t1", Subject: "S", Body: "b"},
		},
	}
	require.NoError(t, db.Create(&sequence).Error)

	sentAt := time.Now().Add(-time.Hour)
	jobs := []models.EmailJob{
		{ContactID: contact.ID, SequenceID: sequence.ID, StepNumber: 1, TemplateID: "t1",
			ScheduledAt: time.Now().Add(24 * time.Hour), Status: models.EmailJobStatusScheduled},
		{ContactID: contact.ID, SequenceID: sequence.ID, StepNumber: 1, TemplateID: "t1",
			ScheduledAt: sentAt, Status: models.EmailJobStatusSent, SentAt: &sentAt},
	}
	require.NoError(t, db.Create(&jobs).Error)

	resp := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/sequences/%d", sequence.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stepCount int64
	db.Model(&models.SequenceStep{}).Where("sequence_id = ?", sequence.ID).Count(&stepCount)
	assert.EqualValues(t, 0, stepCount)

	var canceled, sent int64
	db.Model(&models.EmailJob{}).Where("status = ?", models.EmailJobStatusCanceled).Count(&canceled)
	db.Model(&models.EmailJob{}).Where("status = ?", models.EmailJobStatusSent).Count(&sent)
	assert.EqualValues(t, 1, canceled)
	assert.EqualValues(t, 1, sent)
}

func TestDeleteSequenceNotFound(t *testing.T) {
	app, _ := setupSequenceApp(t)

	resp := doJSON(t, app, http.MethodDelete, "/sequences/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
