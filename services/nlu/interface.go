package nlu

import "voicetable/models"

// Parser turns one utterance into an intent plus extracted slots. It is a
// swappable capability: the dialogue only depends on this contract, so a
// stronger extractor can replace the regex rules without touching the FSM.
type Parser interface {
	Parse(text string) models.NLUResult
}
