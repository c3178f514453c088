package handlers

import (
	"bytes"
	"context"
	"net/http"

	"voicetable/models"
	"voicetable/services/dialogue"
	"voicetable/services/speech"
	"voicetable/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// endOfUtterance is the control frame the client sends when the caller stops
// speaking; everything buffered before it is one utterance.
const endOfUtterance = "end"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// bookingEvent is the structured frame sent alongside the audio when a turn
// finalizes a booking.
type bookingEvent struct {
	Type string               `json:"type"`
	Data models.BookingRecord `json:"data"`
}

// AudioHandler owns the duplex audio channel: binary frames accumulate caller
// audio, the "end" text frame closes an utterance and drives one dialogue turn.
type AudioHandler struct {
	Dialogue dialogue.DialogueService
	STT      speech.Transcriber
	TTS      speech.Synthesizer
}

func NewAudioHandler(dlg dialogue.DialogueService, stt speech.Transcriber, tts speech.Synthesizer) *AudioHandler {
	return &AudioHandler{Dialogue: dlg, STT: stt, TTS: tts}
}

// Stream upgrades the connection and runs the session until the dialogue ends
// or the caller hangs up. One goroutine per connection; a session's turns are
// therefore processed strictly sequentially.
func (h *AudioHandler) Stream(c *gin.Context) {
	logger := utils.GetLogger()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// The request context dies with the upgrade; turns get their own.
	ctx := context.Background()

	sessionID := h.Dialogue.CreateSession()
	logger.Info("caller connected", zap.String("sessionID", sessionID))

	// Synthetic first turn: trigger WELCOME and speak the greeting.
	greeting := h.Dialogue.HandleInput(ctx, sessionID, "")
	if done := h.sendReply(ctx, conn, sessionID, greeting); done {
		return
	}

	var audioBuf bytes.Buffer

	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			logger.Info("caller disconnected", zap.String("sessionID", sessionID))
			return
		}

		if msgType == websocket.TextMessage && string(message) == endOfUtterance {
			audio := audioBuf.Bytes()
			audioBuf = bytes.Buffer{}

			text, err := h.STT.Transcribe(ctx, audio)
			if err != nil {
				logger.Error("transcription failed", zap.String("sessionID", sessionID), zap.Error(err))
				continue
			}
			if text == "" {
				// Nothing to process; the turn never happened.
				continue
			}
			logger.Debug("caller said", zap.String("sessionID", sessionID), zap.String("text", text))

			reply := h.Dialogue.HandleInput(ctx, sessionID, text)
			logger.Debug("bot says", zap.String("sessionID", sessionID), zap.String("text", reply.Text))

			if done := h.sendReply(ctx, conn, sessionID, reply); done {
				return
			}
			continue
		}

		if msgType == websocket.BinaryMessage {
			audioBuf.Write(message)
		}
	}
}

// sendReply synthesizes and ships one reply, plus the booking event when the
// turn finalized. Returns true when the session is over.
func (h *AudioHandler) sendReply(ctx context.Context, conn *websocket.Conn, sessionID string, reply models.Reply) bool {
	logger := utils.GetLogger()

	audio, err := h.TTS.Synthesize(ctx, reply.Text, reply.Voice)
	if err != nil {
		logger.Error("synthesis failed", zap.String("sessionID", sessionID), zap.Error(err))
	}

	// Send even when synthesis degraded to empty audio; there is no retry.
	if err := conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		logger.Error("failed to send reply audio", zap.String("sessionID", sessionID), zap.Error(err))
		return true
	}

	if reply.Booking != nil {
		if err := conn.WriteJSON(bookingEvent{Type: "booking", Data: *reply.Booking}); err != nil {
			logger.Error("failed to send booking event", zap.String("sessionID", sessionID), zap.Error(err))
			return true
		}
	}

	return reply.ShouldEnd
}
