package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"quoteflow/config"
	"quoteflow/models"
	"quoteflow/utils"
)

const (
	maxSendAttempts = 3
	jobBatchSize    = 25
)

type EmailWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewEmailWorker(db *gorm.DB, logger *log.Logger) *EmailWorker {
	return &EmailWorker{
		DB:     db,
		Logger: logger,
	}
}

func (ew *EmailWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	ew.Logger.Println("Email worker started")

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ew.Logger.Println("Email worker shutting down...")
			return
		case <-ticker.C:
			ew.processDueJobs()
		}
	}
}

func (ew *EmailWorker) processDueJobs() {
	now := time.Now()

	var jobs []models.EmailJob
	err := ew.DB.
		Where("status = ? AND scheduled_at <= ?", models.EmailJobStatusScheduled, now).
		Where("next_retry_at IS NULL OR next_retry_at <= ?", now).
		Order("scheduled_at ASC").
		Limit(jobBatchSize).
		Find(&jobs).Error
	if err != nil {
		ew.Logger.Printf("Error fetching due email jobs: %v", err)
		return
	}

	for _, job := range jobs {
		if err := ew.processJob(job); err != nil {
			ew.Logger.Printf("Error processing email job %d: %v", job.ID, err)
			ew.recordFailure(job, err)
		}
	}
}

func (ew *EmailWorker) processJob(job models.EmailJob) error {
	var contact models.Contact
	if err := ew.DB.First(&contact, job.ContactID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Contact is gone, nothing left to send to
			return ew.DB.Model(&job).Updates(map[string]interface{}{
				"status":     models.EmailJobStatusCanceled,
				"last_error": "contact no longer exists",
			}).Error
		}
		return fmt.Errorf("database error: %v", err)
	}

	var step models.SequenceStep
	err := ew.DB.
		Where("sequence_id = ? AND step_number = ?", job.SequenceID, job.StepNumber).
		First(&step).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			ew.Logger.Printf("No step %d in sequence %d - canceling job %d", job.StepNumber, job.SequenceID, job.ID)
			return ew.DB.Model(&job).Updates(map[string]interface{}{
				"status":     models.EmailJobStatusCanceled,
				"last_error": "sequence step no longer exists",
			}).Error
		}
		return fmt.Errorf("database error: %v", err)
	}

	body, err := utils.RenderStepBody(&step, &contact)
	if err != nil {
		return err
	}

	from := fmt.Sprintf("%s <%s>", config.AppConfig.SMTP.FromName, config.AppConfig.SMTP.FromEmail)
	messageID, err := utils.SendRawEmail([]string{contact.Email}, nil, nil, step.Subject, body, from)
	if err != nil {
		return err
	}

	now := time.Now()
	err = ew.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&job).Updates(map[string]interface{}{
			"status":     models.EmailJobStatusSent,
			"message_id": messageID,
			"sent_at":    now,
			"attempts":   gorm.Expr("attempts + ?", 1),
			"last_error": "",
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&step).Update("sent_count", gorm.Expr("sent_count + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&contact).Update("last_contact_at", now).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record sent job: %v", err)
	}

	ew.Logger.Printf("Sent sequence %d step %d to contact %d", job.SequenceID, job.StepNumber, job.ContactID)
	return nil
}

// recordFailure bumps the attempt counter and either schedules a retry with
// backoff or marks the job failed once attempts are exhausted.
func (ew *EmailWorker) recordFailure(job models.EmailJob, sendErr error) {
	attempts := job.Attempts + 1

	updates := map[string]interface{}{
		"attempts":   attempts,
		"last_error": sendErr.Error(),
	}
	if attempts >= maxSendAttempts {
		updates["status"] = models.EmailJobStatusFailed
	} else {
		// 10m, 20m, 40m...
		backoff := time.Duration(1<<(attempts-1)) * 10 * time.Minute
		updates["next_retry_at"] = time.Now().Add(backoff)
	}

	if err := ew.DB.Model(&job).Updates(updates).Error; err != nil {
		ew.Logger.Printf("Error recording failure for job %d: %v", job.ID, err)
	}
}
