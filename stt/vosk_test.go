package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gws "github.com/gorilla/websocket"
)

// fakeRecognizer runs a websocket endpoint speaking the Vosk server
// protocol, emitting the given final texts round-robin as chunks arrive.
func fakeRecognizer(t *testing.T, finals []string) string {
	t.Helper()
	upgrader := gws.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// first frame is the config
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != gws.TextMessage || !strings.Contains(string(msg), "sample_rate") {
			t.Errorf("expected config frame first, got %q", msg)
		}

		emitted := 0
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt == gws.TextMessage && strings.Contains(string(msg), "eof") {
				text := ""
				if emitted < len(finals) {
					text = finals[emitted]
				}
				conn.WriteJSON(map[string]string{"text": text})
				return
			}
			// binary chunk: reply with a final if one is queued, else a partial
			if emitted < len(finals)-1 {
				conn.WriteJSON(map[string]string{"text": finals[emitted]})
				emitted++
			} else {
				conn.WriteJSON(map[string]string{"partial": "..."})
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func testClip(t *testing.T) []byte {
	t.Helper()
	samples := make([]int, 12000)
	for i := range samples {
		samples[i] = (i % 200) - 100
	}
	return encodeWAV(t, samples, targetSampleRate, 16, 1)
}

func TestTranscribe(t *testing.T) {
	url := fakeRecognizer(t, []string{"hello there", "general kenobi"})
	svc := NewService(url)

	transcript, err := svc.Transcribe(context.Background(), testClip(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if transcript != "hello there general kenobi" {
		t.Errorf("unexpected transcript %q", transcript)
	}
}

func TestTranscribeNoSpeech(t *testing.T) {
	url := fakeRecognizer(t, nil)
	svc := NewService(url)

	transcript, err := svc.Transcribe(context.Background(), testClip(t))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if transcript != "" {
		t.Errorf("expected empty transcript, got %q", transcript)
	}
}

func TestTranscribeEmptyPayload(t *testing.T) {
	svc := NewService("ws://127.0.0.1:2700")
	if _, err := svc.Transcribe(context.Background(), nil); err == nil {
		t.Error("expected error for empty audio payload")
	}
}

func TestTranscribeInvalidAudio(t *testing.T) {
	svc := NewService("ws://127.0.0.1:2700")
	if _, err := svc.Transcribe(context.Background(), []byte("not audio")); err == nil {
		t.Error("expected error for invalid audio")
	}
}

func TestTranscribeServerUnreachable(t *testing.T) {
	svc := NewService("ws://127.0.0.1:1") // nothing listens here
	_, err := svc.Transcribe(context.Background(), testClip(t))
	if err == nil {
		t.Fatal("expected connection error")
	}
	if !strings.Contains(err.Error(), "speech recognition server") {
		t.Errorf("error should point at the recognizer connection: %v", err)
	}
}
