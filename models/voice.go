package models

// Named voices the dialogue can answer with. The TTS collaborator maps these to
// concrete provider voice ids.
const (
	VoiceFormal   = "voice_formal"
	VoiceFriendly = "voice_friendly"
	VoiceCasual   = "voice_casual"
	VoiceNeutral  = "voice_neutral"
)
