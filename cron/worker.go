package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"voicetable/config"
	recordsRepo "voicetable/database/repository/records"
	"voicetable/models"
	"voicetable/services/records"
	"voicetable/services/tasks"
	"voicetable/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitRecordWorker runs the async worker draining the booking record queue
// into the spreadsheet and the archive.
func InitRecordWorker(sink records.Sink, archive recordsRepo.BookingArchiveRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingRecord, handleBookingRecordTask(sink, archive))

	// Start async worker with retry logic
	go func() {
		log.Println("[RecordWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[RecordWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[RecordWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleBookingRecordTask fans one finalized booking out to both sinks.
// Sink failures are observability-only: the caller was already told the
// booking is confirmed, so the task is never retried.
func handleBookingRecordTask(sink records.Sink, archive recordsRepo.BookingArchiveRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var record models.BookingRecord
		if err := json.Unmarshal(task.Payload(), &record); err != nil {
			logger.Error("invalid booking record payload", zap.Error(err))
			return nil
		}

		if err := sink.Append(ctx, record); err != nil {
			logger.Error("failed to append booking to spreadsheet",
				zap.String("confirmationID", record.ConfirmationID), zap.Error(err))
		}

		if archive != nil {
			if _, err := archive.Create(ctx, record); err != nil {
				logger.Error("failed to archive booking",
					zap.String("confirmationID", record.ConfirmationID), zap.Error(err))
			}
		}

		return nil
	}
}
