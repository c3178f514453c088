package records

import (
	"voicetable/models"
	"voicetable/services/tasks"
	"voicetable/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqDispatcher enqueues finalized bookings on the record queue. The enqueue
// runs on a detached goroutine so a slow or dead broker never stretches the
// voice turn; failures are logged and dropped, per the persistence contract.
type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher(client *asynq.Client) *AsynqDispatcher {
	return &AsynqDispatcher{client: client}
}

// Dispatch hands the record to the queue and returns immediately.
func (d *AsynqDispatcher) Dispatch(record models.BookingRecord) {
	go func() {
		logger := utils.GetLogger()

		task, err := tasks.NewBookingRecordTask(record)
		if err != nil {
			logger.Error("failed to build booking record task",
				zap.String("confirmationID", record.ConfirmationID), zap.Error(err))
			return
		}
		if _, err := d.client.Enqueue(task); err != nil {
			logger.Error("failed to enqueue booking record",
				zap.String("confirmationID", record.ConfirmationID), zap.Error(err))
		}
	}()
}
