package log

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testEvent(category Category) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		SessionID: "test-session",
		Category:  category,
	}
}

func TestFileLoggerWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	logger.Log(testEvent(CategoryCommand))
	logger.Log(testEvent(CategoryReply))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var count int
	for {
		_, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d events, want 2", count)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.blog")

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(testEvent(CategoryPhase))
		logger.Close()
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var count int
	for {
		if _, err := reader.Next(); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d events after two runs, want 2", count)
	}
}

func TestFileLoggerLogAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Must not panic or write.
	logger.Log(testEvent(CategoryError))
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.blog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Log(testEvent(CategoryCommand))
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var count int
	for {
		if _, err := reader.Next(); err == io.EOF {
			break
		} else if err != nil {
			t.Fatalf("Next failed after %d events: %v", count, err)
		}
		count++
	}
	if count != 100 {
		t.Errorf("read %d events, want 100", count)
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	path1 := filepath.Join(t.TempDir(), "a.blog")
	path2 := filepath.Join(t.TempDir(), "b.blog")

	l1, err := NewFileLogger(path1)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	l2, err := NewFileLogger(path2)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	multi := NewMultiLogger(l1, l2, NoopLogger{})
	multi.Log(testEvent(CategoryCommand))
	l1.Close()
	l2.Close()

	for _, path := range []string{path1, path2} {
		reader, err := NewReader(path)
		if err != nil {
			t.Fatalf("NewReader(%s) failed: %v", path, err)
		}
		if _, err := reader.Next(); err != nil {
			t.Errorf("no event in %s: %v", path, err)
		}
		reader.Close()
	}
}

func TestSlogAdapterSmoke(t *testing.T) {
	minutes := uint16(5)
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})))

	// Exercise every payload branch; the adapter must not panic.
	adapter.Log(Event{Category: CategoryCommand, Command: &CommandEvent{Token: "set", Minutes: &minutes}})
	adapter.Log(Event{Category: CategoryReply, Reply: &ReplyEvent{Seconds: 300}})
	adapter.Log(Event{Category: CategoryPhase, PhaseChange: &PhaseChangeEvent{NewPhase: "BREAK", Reason: ReasonCommand}})
	adapter.Log(Event{Category: CategoryError, Error: &ErrorEventData{Message: "boom"}})
}
