package dialogue

import (
	"context"
	"fmt"

	"voicetable/models"
	"voicetable/utils"

	"go.uber.org/zap"
)

// checkAvailability runs the admission check for the session's slot key. The
// count read and the lock attempt are deliberately two operations: the count
// is an optimistic heuristic, the lock is the real mutual-exclusion boundary.
// Between the two another session may win the slot; that session simply hears
// "just taken" and stays in the availability-check state.
func (d *DefaultDialogueService) checkAvailability(ctx context.Context, sess *models.Session) models.Reply {
	logger := utils.GetLogger()

	date, slotTime := sess.Slots.Date, sess.Slots.Time
	if date == "" || slotTime == "" {
		return models.Reply{Text: "Wait... I missed the date or time.", Voice: models.VoiceNeutral}
	}

	hour := extractHour(slotTime)

	count, err := d.Engine.Count(ctx, date, hour)
	if err != nil {
		logger.Error("slot count lookup failed",
			zap.String("sessionID", sess.ID), zap.String("date", date), zap.String("hour", hour), zap.Error(err))
		return models.Reply{Text: "Sorry... something went wrong on my end. ... Can you say that again?", Voice: models.VoiceNeutral}
	}

	if count >= d.Capacity {
		// Full slots never get a lock attempt.
		return models.Reply{
			Text:  "Sorry... that time is full. ... Can we do 30 minutes earlier or later?",
			Voice: models.VoiceFormal,
		}
	}

	locked, err := d.Engine.AcquireLock(ctx, date, hour, sess.ID)
	if err != nil {
		logger.Error("slot lock attempt failed",
			zap.String("sessionID", sess.ID), zap.String("date", date), zap.String("hour", hour), zap.Error(err))
		return models.Reply{Text: "Sorry... something went wrong on my end. ... Can you say that again?", Voice: models.VoiceNeutral}
	}
	if !locked {
		return models.Reply{Text: "Ah... someone just took that spot. ... Can we try a different time?", Voice: models.VoiceFormal}
	}

	sess.State = models.StateConfirm
	return models.Reply{
		Text:  fmt.Sprintf("Okay... I have a table for %d on %s at %s. ... Should I confirm it?", sess.Slots.People, date, slotTime),
		Voice: models.VoiceFormal,
	}
}
