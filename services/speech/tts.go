package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voicetable/config"
	"voicetable/models"
	"voicetable/utils"

	"go.uber.org/zap"
)

const elevenLabsEndpoint = "https://api.elevenlabs.io/v1/text-to-speech/%s"

// voiceIDs maps the dialogue's named voices to ElevenLabs voice ids.
var voiceIDs = map[string]string{
	models.VoiceFormal:   "21m00Tcm4TlvDq8ikWAM", // Rachel
	models.VoiceFriendly: "AZnzlk1XvdvUeBnXmlld", // Domi
	models.VoiceCasual:   "ErXwobaYiN019PkySvjV", // Antoni
	models.VoiceNeutral:  "MF3mGyEYCl7XYWlgWWvy", // Elli
}

const defaultVoiceID = "21m00Tcm4TlvDq8ikWAM"

// ElevenLabsTTS renders reply text through the ElevenLabs REST API.
type ElevenLabsTTS struct {
	apiKey string
	client *http.Client
}

// NewElevenLabsTTS builds the collaborator from AppConfig. A missing API key
// degrades every Synthesize call to empty audio.
func NewElevenLabsTTS() *ElevenLabsTTS {
	if config.AppConfig.ElevenLabsAPIKey == "" {
		utils.GetLogger().Warn("ELEVENLABS_API_KEY is missing, TTS disabled")
	}
	return &ElevenLabsTTS{
		apiKey: config.AppConfig.ElevenLabsAPIKey,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize renders text in the named voice. Failures return empty audio; the
// transport sends whatever it gets, with no retry.
func (s *ElevenLabsTTS) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	logger := utils.GetLogger()

	if s.apiKey == "" {
		return nil, nil
	}

	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: "eleven_turbo_v2",
		VoiceSettings: voiceSettings{
			Stability:       0.7,
			SimilarityBoost: 0.8,
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf(elevenLabsEndpoint, mapVoiceID(voice))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error("TTS request failed", zap.Error(err))
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("TTS request rejected", zap.Int("status", resp.StatusCode))
		return nil, nil
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("failed to read TTS response", zap.Error(err))
		return nil, nil
	}
	return audio, nil
}

// mapVoiceID resolves a named voice to a provider voice id. Anything that
// already looks like a raw id passes through.
func mapVoiceID(voice string) string {
	if id, ok := voiceIDs[voice]; ok {
		return id
	}
	if len(voice) > 10 {
		return voice
	}
	return defaultVoiceID
}
