// Package stt transcribes recorded audio against a local Vosk server.
package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	gws "github.com/gorilla/websocket"

	"github.com/mvoronin/speech-apps/logger"
)

// chunkSize is how many PCM bytes go into each websocket frame.
const chunkSize = 4000

// Service speaks the Vosk server websocket protocol: a config frame,
// binary PCM chunks, then an eof frame to flush the final result.
type Service struct {
	ServerURL string

	// dial is swappable in tests
	dial func(ctx context.Context, url string) (*gws.Conn, error)
}

// NewService creates a Service talking to the given ws:// URL.
func NewService(serverURL string) *Service {
	logger.Logf("STT service configured against %s", serverURL)
	return &Service{
		ServerURL: serverURL,
		dial: func(ctx context.Context, url string) (*gws.Conn, error) {
			conn, _, err := gws.DefaultDialer.DialContext(ctx, url, nil)
			return conn, err
		},
	}
}

// recognizerResult distinguishes final results (text key present) from
// partial hypotheses.
type recognizerResult struct {
	Text    *string `json:"text"`
	Partial *string `json:"partial"`
}

// Transcribe decodes the WAV payload and runs one recognition session.
// An empty string with a nil error means the recognizer heard no speech.
func (s *Service) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	pcm, err := preparePCM(audio)
	if err != nil {
		return "", err
	}

	conn, err := s.dial(ctx, s.ServerURL)
	if err != nil {
		return "", fmt.Errorf("connecting to speech recognition server: %w", err)
	}
	defer conn.Close()

	config := fmt.Sprintf(`{"config": {"sample_rate": %d}}`, targetSampleRate)
	if err := conn.WriteMessage(gws.TextMessage, []byte(config)); err != nil {
		return "", fmt.Errorf("sending recognizer config: %w", err)
	}

	var parts []string
	collect := func(msg []byte) error {
		var res recognizerResult
		if err := json.Unmarshal(msg, &res); err != nil {
			return fmt.Errorf("parsing recognizer response: %w", err)
		}
		if res.Text != nil && *res.Text != "" {
			parts = append(parts, *res.Text)
		}
		return nil
	}

	for offset := 0; offset < len(pcm); offset += chunkSize {
		end := offset + chunkSize
		if end > len(pcm) {
			end = len(pcm)
		}
		if err := conn.WriteMessage(gws.BinaryMessage, pcm[offset:end]); err != nil {
			return "", fmt.Errorf("sending audio chunk: %w", err)
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return "", fmt.Errorf("reading recognizer response: %w", err)
		}
		if err := collect(msg); err != nil {
			return "", err
		}
	}

	if err := conn.WriteMessage(gws.TextMessage, []byte(`{"eof" : 1}`)); err != nil {
		return "", fmt.Errorf("flushing recognizer: %w", err)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", fmt.Errorf("reading final recognizer response: %w", err)
	}
	if err := collect(msg); err != nil {
		return "", err
	}

	transcript := strings.TrimSpace(strings.Join(parts, " "))
	if transcript == "" {
		logger.Log("Transcription returned no speech.")
		return "", nil
	}
	logger.Logf("Transcription completed: %s", transcript)
	return transcript, nil
}
