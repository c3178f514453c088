package speech

import (
	"context"
	"strings"

	"voicetable/config"
	"voicetable/utils"

	speech "cloud.google.com/go/speech/apiv1"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	speechpb "google.golang.org/genproto/googleapis/cloud/speech/v1"
)

// GoogleSTT transcribes accumulated utterance audio with the Google Cloud
// Speech API. Browser MediaRecorder delivers webm/opus, so that is what the
// recognition config expects.
type GoogleSTT struct {
	credentialsFile string
	language        string
}

// NewGoogleSTT builds the collaborator from AppConfig. Missing credentials
// degrade every Transcribe call to an empty transcript.
func NewGoogleSTT() *GoogleSTT {
	if config.AppConfig.GoogleServiceAccountFile == "" {
		utils.GetLogger().Warn("GOOGLE_SERVICE_ACCOUNT_FILE is missing, STT disabled")
	}
	return &GoogleSTT{
		credentialsFile: config.AppConfig.GoogleServiceAccountFile,
		language:        config.AppConfig.SpeechLanguage,
	}
}

// Transcribe recognizes one utterance. Failures return an empty transcript so
// the turn is skipped rather than surfaced to the caller.
func (s *GoogleSTT) Transcribe(ctx context.Context, audio []byte) (string, error) {
	logger := utils.GetLogger()

	if s.credentialsFile == "" || len(audio) == 0 {
		return "", nil
	}

	client, err := speech.NewClient(ctx, option.WithCredentialsFile(s.credentialsFile))
	if err != nil {
		logger.Error("failed to initialize speech client", zap.Error(err))
		return "", nil
	}
	defer client.Close()

	req := &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_WEBM_OPUS,
			SampleRateHertz: 48000,
			LanguageCode:    s.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{
				Content: audio,
			},
		},
	}

	resp, err := client.Recognize(ctx, req)
	if err != nil {
		logger.Error("speech recognition failed", zap.Error(err))
		return "", nil
	}

	var transcript strings.Builder
	for _, result := range resp.Results {
		for _, alt := range result.Alternatives {
			transcript.WriteString(alt.Transcript + " ")
		}
	}

	return strings.TrimSpace(transcript.String()), nil
}
