package chatlog

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestLogFormat(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tonkon-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "test")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer l.Close()

	if err := l.Log("<alice> hello"); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	matched, err := regexp.Match(`^\[\d{2}:\d{2}:\d{2}\] <alice> hello\n$`, data)
	if err != nil {
		t.Fatal(err)
	}
	if !matched {
		t.Errorf("Unexpected log line: %q", string(data))
	}
}

func TestLogOrdering(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tonkon-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "test")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer l.Close()

	messages := []string{"first", "second", "third"}
	for _, m := range messages {
		if err := l.Log(m); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	for i, m := range messages {
		if !strings.HasSuffix(lines[i], " "+m) {
			t.Errorf("Line %d should end with %q, got %q", i, m, lines[i])
		}
	}
}

func TestReopenAppends(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tonkon-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "test")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := l.Log("before reconnect"); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A new session reopens the same path without truncation
	l, err = Open(path)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if err := l.Log("after reconnect"); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	l.Close()

	data, _ := os.ReadFile(path)
	content := string(data)
	before := strings.Index(content, "before reconnect")
	after := strings.Index(content, "after reconnect")
	if before < 0 || after < 0 {
		t.Fatalf("Missing lines after reopen: %q", content)
	}
	if before > after {
		t.Errorf("Prior content not preserved in order: %q", content)
	}
}

func TestLogAfterClose(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "tonkon-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	l, err := Open(filepath.Join(tmpDir, "test"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := l.Log("too late"); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}

	// Closing twice is harmless
	if err := l.Close(); err != nil {
		t.Errorf("Second Close should be nil, got %v", err)
	}
}
