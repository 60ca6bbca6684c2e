package logger

import (
	"fmt"
	"log"
	"sync"

	"github.com/mvoronin/speech-apps/queue"
)

const defaultMaxEntries = 500

// Logger keeps a bounded in-memory history of log lines for the UI
// sidebar while mirroring every line to the standard logger.
type Logger struct {
	mu      sync.Mutex
	history *queue.Ring[string]
	subs    map[chan string]struct{}
}

// New creates a Logger retaining at most maxEntries lines.
func New(maxEntries int) *Logger {
	return &Logger{
		history: queue.NewRing[string](maxEntries),
		subs:    make(map[chan string]struct{}),
	}
}

// Log records a message and fans it out to subscribers.
func (l *Logger) Log(message string) {
	l.mu.Lock()
	l.history.Enqueue(message)
	for ch := range l.subs {
		// never block on a slow subscriber
		select {
		case ch <- message:
		default:
		}
	}
	l.mu.Unlock()
	log.Println(message)
}

// Logf formats a message and records it.
func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

// History returns a snapshot of the buffered lines, oldest first.
func (l *Logger) History() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.history.Items()
}

// Clear drops all buffered lines.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history.Clear()
}

// Subscribe registers a channel that receives every line logged after the
// call. The returned cancel func unregisters and closes the channel.
func (l *Logger) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	l.mu.Lock()
	l.subs[ch] = struct{}{}
	l.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, ch)
			l.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

var std = New(defaultMaxEntries)

// Log records a message on the process-wide logger.
func Log(message string) { std.Log(message) }

// Logf formats and records a message on the process-wide logger.
func Logf(format string, args ...any) { std.Logf(format, args...) }

// History returns the process-wide log buffer, oldest first.
func History() []string { return std.History() }

// Clear empties the process-wide log buffer.
func Clear() { std.Clear() }

// Subscribe attaches to the process-wide logger.
func Subscribe() (<-chan string, func()) { return std.Subscribe() }
