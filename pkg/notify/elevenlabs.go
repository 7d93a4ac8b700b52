package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"time"

	"github.com/teslashibe/go-driveguard/internal/httpc"
	"github.com/teslashibe/go-driveguard/internal/log"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

	// ModelFlashV2_5 keeps spoken alerts low-latency.
	ModelFlashV2_5 = "eleven_flash_v2_5"
)

// PlayFunc plays a synthesized audio buffer on the in-cab speaker.
type PlayFunc func(audio []byte) error

// CommandPlayer pipes audio to an external player's stdin (e.g. mpg123 -,
// ffplay -). The command is the delivery device boundary.
func CommandPlayer(name string, args ...string) PlayFunc {
	return func(audio []byte) error {
		cmd := exec.Command(name, args...)
		cmd.Stdin = bytes.NewReader(audio)
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("audio player %s: %w", name, err)
		}
		return nil
	}
}

// ElevenLabs synthesizes intervention messages via the ElevenLabs TTS API
// and hands the audio to a player.
type ElevenLabs struct {
	apiKey  string
	voiceID string
	modelID string
	client  *http.Client
	play    PlayFunc
	logger  *slog.Logger
}

// NewElevenLabs creates a spoken-message deliverer.
func NewElevenLabs(apiKey, voiceID string, play PlayFunc) *ElevenLabs {
	return &ElevenLabs{
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: ModelFlashV2_5,
		client:  httpc.NewClient(15 * time.Second),
		play:    play,
		logger:  log.With("component", "notify.elevenlabs"),
	}
}

// Speak synthesizes text and plays it. Any failure is returned so the caller
// can fall back to a secondary channel.
func (e *ElevenLabs) Speak(ctx context.Context, text string) error {
	start := time.Now()

	url := fmt.Sprintf("%s/text-to-speech/%s", elevenLabsBaseURL, e.voiceID)
	body, err := json.Marshal(map[string]interface{}{
		"text":     text,
		"model_id": e.modelID,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tts error (status %d): %s", resp.StatusCode, truncate(string(errBody), 200))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}

	e.logger.Debug("synthesized alert",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if e.play == nil {
		return fmt.Errorf("no audio player configured")
	}
	return e.play(audio)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

var _ Speaker = (*ElevenLabs)(nil)
