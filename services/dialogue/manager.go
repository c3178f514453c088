package dialogue

import (
	"context"
	"regexp"
	"strings"
	"time"

	"voicetable/models"
	"voicetable/services/nlu"
	"voicetable/services/records"
	"voicetable/services/reservation"
	"voicetable/services/session"
	"voicetable/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDialogueService is the per-session finite-state controller. All
// cross-session shared state lives behind Engine; everything else on a session
// is touched only by its single connection.
type DefaultDialogueService struct {
	Sessions session.SessionStore
	Engine   reservation.SlotEngine
	Parser   nlu.Parser
	Recorder records.Dispatcher

	// Capacity is the maximum confirmed bookings per (date, hour) slot.
	Capacity int64

	// Now and NewToken are injectable for deterministic finalize tests.
	Now      func() time.Time
	NewToken func() string
}

// NewDialogueService wires the controller with production defaults.
func NewDialogueService(store session.SessionStore, engine reservation.SlotEngine, parser nlu.Parser, recorder records.Dispatcher, capacity int64) *DefaultDialogueService {
	if capacity <= 0 {
		capacity = 10
	}
	return &DefaultDialogueService{
		Sessions: store,
		Engine:   engine,
		Parser:   parser,
		Recorder: recorder,
		Capacity: capacity,
		Now:      time.Now,
		NewToken: func() string { return uuid.New().String() },
	}
}

// CreateSession allocates a new conversation and returns its id.
func (d *DefaultDialogueService) CreateSession() string {
	return d.Sessions.Create().ID
}

var hourRe = regexp.MustCompile(`\d+`)

// extractHour pulls the hour token out of a stored time slot. It is a raw
// digit string, not a calendar-normalized hour; the slot key schema depends on
// it staying that way.
func extractHour(t string) string {
	if m := hourRe.FindString(t); m != "" {
		return m
	}
	return "0"
}

func isTimeSpecific(t string) bool {
	lower := strings.ToLower(t)
	return strings.Contains(lower, "am") || strings.Contains(lower, "pm") ||
		strings.Contains(lower, "noon") || strings.Contains(lower, "midnight")
}

// mergeSlots overwrites existing slots with newly extracted ones; slots the
// turn did not mention are preserved.
func mergeSlots(dst *models.BookingSlots, src models.BookingSlots) {
	if src.Date != "" {
		dst.Date = src.Date
	}
	if src.Time != "" {
		dst.Time = src.Time
	}
	if src.People != 0 {
		dst.People = src.People
	}
	if src.Name != "" {
		dst.Name = src.Name
	}
	if src.Phone != "" {
		dst.Phone = src.Phone
	}
}

// HandleInput consumes one utterance and returns the spoken reply.
func (d *DefaultDialogueService) HandleInput(ctx context.Context, sessionID, text string) models.Reply {
	sess, ok := d.Sessions.Get(sessionID)
	if !ok {
		return models.Reply{Text: "Session not found.", Voice: models.VoiceNeutral, ShouldEnd: true}
	}

	nluResult := d.Parser.Parse(text)

	// Remember the slot key the session may hold a lock on before the merge
	// rewrites it; CONFIRM needs it to free the prior hold.
	prevDate, prevTime := sess.Slots.Date, sess.Slots.Time

	mergeSlots(&sess.Slots, nluResult.Slots)

	// Morning/evening disambiguation from cues elsewhere in the utterance.
	if sess.Slots.Time != "" && !isTimeSpecific(sess.Slots.Time) {
		lower := strings.ToLower(text)
		if strings.Contains(lower, "morning") || strings.Contains(lower, "am") {
			sess.Slots.Time += " am"
		} else if strings.Contains(lower, "evening") || strings.Contains(lower, "pm") || strings.Contains(lower, "night") {
			sess.Slots.Time += " pm"
		}
	}

	switch sess.State {
	case models.StateWelcome:
		sess.State = models.StateCollectInfo
		return models.Reply{
			Text:  "Hi there! ... Welcome to The Gourmet Bistro. ... I can help you book a table. ... When would you like to come?",
			Voice: models.VoiceFormal,
		}

	case models.StateCollectInfo:
		return d.collectInfo(ctx, sess, text, nluResult)

	case models.StateCheckAvailability:
		// Normally entered without consuming a turn, but re-entrant safe: any
		// input here re-runs the check with current slots.
		return d.checkAvailability(ctx, sess)

	case models.StateConfirm:
		return d.confirm(ctx, sess, text, nluResult, prevDate, prevTime)

	case models.StateFinalize:
		return models.Reply{Text: "Your booking is already done.", Voice: models.VoiceFormal, ShouldEnd: true}

	default:
		return models.Reply{Text: "Sorry... I'm a bit lost. ... Can you say that again?", Voice: models.VoiceNeutral}
	}
}

func (d *DefaultDialogueService) collectInfo(ctx context.Context, sess *models.Session, text string, nluResult models.NLUResult) models.Reply {
	// A silence signal re-prompts for whatever is still missing, with
	// alternate wording, and never counts as an answer.
	if text == SilenceTimeout {
		switch {
		case sess.Slots.Date == "":
			return models.Reply{Text: "Are you still there? ... Which day would you like to book?", Voice: models.VoiceFormal}
		case sess.Slots.Time == "":
			return models.Reply{Text: "I'm listening... what time works for you?", Voice: models.VoiceFormal}
		case !isTimeSpecific(sess.Slots.Time):
			return models.Reply{Text: "Morning or evening?", Voice: models.VoiceFormal}
		case sess.Slots.People == 0:
			return models.Reply{Text: "How many people are joining?", Voice: models.VoiceFormal}
		default:
			return models.Reply{Text: "I still need your name for the booking.", Voice: models.VoiceFormal}
		}
	}

	if sess.Slots.Date == "" {
		return models.Reply{Text: "Sure... for which day do you want the table?", Voice: models.VoiceFormal}
	}
	if sess.Slots.Time == "" {
		return models.Reply{Text: "Okay... what time should I book it for?", Voice: models.VoiceFormal}
	}
	if !isTimeSpecific(sess.Slots.Time) {
		return models.Reply{Text: "Is that for the morning... or evening?", Voice: models.VoiceFormal}
	}
	if sess.Slots.People == 0 {
		return models.Reply{Text: "And... for how many people?", Voice: models.VoiceFormal}
	}

	if sess.Slots.Name == "" {
		// Bare-name fallback: short utterances like "Mahesh" often fail slot
		// extraction. If nothing was extracted this turn and every other slot
		// is filled, take the utterance verbatim as the name.
		if nluResult.SlotCount() == 0 {
			lower := strings.ToLower(text)
			words := strings.Fields(strings.TrimSpace(text))
			if len(words) > 0 && len(words) <= 3 &&
				!strings.Contains(lower, "no") && !strings.Contains(lower, "yes") {
				sess.Slots.Name = strings.TrimSpace(text)
				sess.State = models.StateCheckAvailability
				return d.checkAvailability(ctx, sess)
			}
		}
		return models.Reply{Text: "Can I get your name please?", Voice: models.VoiceFormal}
	}

	// Everything collected; run the availability check without consuming
	// another turn.
	sess.State = models.StateCheckAvailability
	return d.checkAvailability(ctx, sess)
}

func (d *DefaultDialogueService) confirm(ctx context.Context, sess *models.Session, text string, nluResult models.NLUResult, prevDate, prevTime string) models.Reply {
	logger := utils.GetLogger()
	lower := strings.ToLower(text)

	// The caller is amending details: free the hold on the previous slot key
	// and re-run availability against the updated one.
	if nluResult.SlotCount() > 0 {
		if prevDate != "" && prevTime != "" {
			if err := d.Engine.ReleaseLock(ctx, prevDate, extractHour(prevTime), sess.ID); err != nil {
				logger.Error("failed to release slot lock on amendment",
					zap.String("sessionID", sess.ID), zap.String("date", prevDate), zap.Error(err))
			}
		}
		sess.State = models.StateCheckAvailability
		return d.checkAvailability(ctx, sess)
	}

	if nluResult.Intent == models.IntentConfirm ||
		strings.Contains(lower, "yes") || strings.Contains(lower, "ok") || strings.Contains(lower, "yeah") {
		sess.State = models.StateFinalize
		return d.finalizeBooking(ctx, sess)
	}

	if nluResult.Intent == models.IntentReject || strings.Contains(lower, "no") {
		if sess.Slots.Date != "" && sess.Slots.Time != "" {
			if err := d.Engine.ReleaseLock(ctx, sess.Slots.Date, extractHour(sess.Slots.Time), sess.ID); err != nil {
				logger.Error("failed to release slot lock on rejection",
					zap.String("sessionID", sess.ID), zap.Error(err))
			}
		}
		return models.Reply{
			Text:      "No problem... I've cancelled that. ... Let me know if you need anything else.",
			Voice:     models.VoiceFormal,
			ShouldEnd: true,
		}
	}

	return models.Reply{
		Text:  "Sorry... I didn't get that. ... Do you want me to confirm the booking? ... Just say yes or no.",
		Voice: models.VoiceFormal,
	}
}
