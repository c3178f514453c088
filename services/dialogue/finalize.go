package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voicetable/models"
	"voicetable/utils"

	"go.uber.org/zap"
)

// finalizeBooking mints the confirmation, dispatches the record and converts
// the temporary lock into a permanent count increment.
func (d *DefaultDialogueService) finalizeBooking(ctx context.Context, sess *models.Session) models.Reply {
	logger := utils.GetLogger()
	now := d.Now()

	token := strings.ToUpper(d.NewToken())
	if len(token) > 4 {
		token = token[:4]
	}
	confirmationID := fmt.Sprintf("R-%s-%s", now.Format("20060102"), token)

	sess.EndTimestamp = now
	duration := sess.EndTimestamp.Sub(sess.StartTimestamp).Minutes()

	record := models.BookingRecord{
		Name:                orUnknown(sess.Slots.Name),
		Phone:               orUnknown(sess.Slots.Phone),
		Date:                orUnknown(sess.Slots.Date),
		Time:                orUnknown(sess.Slots.Time),
		People:              sess.Slots.People,
		Status:              models.BookingStatusConfirmed,
		Timestamp:           now.UTC().Format(time.RFC3339),
		ConfirmationID:      confirmationID,
		CallDurationMinutes: duration,
	}

	// Fire-and-forget: the caller hears a confirmation regardless of whether
	// the record makes it to a sink.
	d.Recorder.Dispatch(record)

	if sess.Slots.Date != "" && sess.Slots.Time != "" {
		hour := extractHour(sess.Slots.Time)
		if _, err := d.Engine.Increment(ctx, sess.Slots.Date, hour); err != nil {
			logger.Error("failed to increment slot count on finalize",
				zap.String("sessionID", sess.ID), zap.String("confirmationID", confirmationID), zap.Error(err))
		}
		if err := d.Engine.ReleaseLock(ctx, sess.Slots.Date, hour, sess.ID); err != nil {
			logger.Error("failed to release slot lock on finalize",
				zap.String("sessionID", sess.ID), zap.String("confirmationID", confirmationID), zap.Error(err))
		}
	}

	return models.Reply{
		Text:      fmt.Sprintf("Great! ... Your booking is confirmed. ... Your ID is %s. ... See you soon!", confirmationID),
		Voice:     models.VoiceFormal,
		ShouldEnd: true,
		Booking:   &record,
	}
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}
