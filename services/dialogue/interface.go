package dialogue

import (
	"context"

	"voicetable/models"
)

// SilenceTimeout is the sentinel utterance the transport injects when the
// caller has gone quiet; the dialogue re-prompts instead of parsing it.
const SilenceTimeout = "SILENCE_TIMEOUT"

// DialogueService drives one booking conversation per session. HandleInput
// must be called sequentially for a given session id; calls for different
// sessions may run concurrently.
type DialogueService interface {
	CreateSession() string
	HandleInput(ctx context.Context, sessionID, text string) models.Reply
}
