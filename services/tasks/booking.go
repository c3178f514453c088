package tasks

import (
	"encoding/json"

	"voicetable/models"

	"github.com/hibiken/asynq"
)

const TypeBookingRecord = "booking:record"

// NewBookingRecordTask wraps a finalized booking for the record queue.
func NewBookingRecordTask(record models.BookingRecord) (*asynq.Task, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeBookingRecord, b), nil
}
