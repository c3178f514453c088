package speech

import "context"

// Transcriber converts caller audio into text. An empty string means there is
// no utterance to process; the transport skips the turn.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer renders reply text as audio in the named voice. Empty bytes mean
// synthesis failed; the transport still sends what it got.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}
