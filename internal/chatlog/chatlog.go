// Package chatlog appends timestamped channel activity to a per-channel file.
package chatlog

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/tonkon/tonkonbot/internal/telemetry"
)

// ErrClosed is returned by Log after the logger has been closed.
var ErrClosed = errors.New("chat log is closed")

// Logger owns an append-mode file handle for one channel. It is safe for a
// single session's handlers; every write is flushed to disk before Log
// returns, so line order on disk matches call order.
type Logger struct {
	mu sync.Mutex
	f  *os.File
}

// Open opens (or creates) the log file at path in append mode.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat log: %w", err)
	}
	return &Logger{f: f}, nil
}

// Log writes one line as "[HH:MM:SS] message" and syncs it to disk. A write
// or sync failure is returned to the caller; the bot treats that as fatal
// rather than silently dropping log lines.
func (l *Logger) Log(message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return ErrClosed
	}

	stamp := time.Now().Format("[15:04:05]")
	if _, err := fmt.Fprintf(l.f, "%s %s\n", stamp, message); err != nil {
		return fmt.Errorf("failed to write chat log: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("failed to sync chat log: %w", err)
	}

	telemetry.IncChatLine()
	return nil
}

// Close releases the file handle. Further Log calls return ErrClosed.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
