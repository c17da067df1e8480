package cli

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"fatura/internal/config"
	"fatura/internal/log"
)

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.New(log.Config{Level: slog.LevelDebug, Format: log.FormatText, Component: "test", Output: buf})
}

func TestOpenPublisher_Disabled(t *testing.T) {
	var buf bytes.Buffer
	pub, closeFn := OpenPublisher(testLogger(&buf), &config.Config{})
	if pub != nil {
		t.Fatalf("expected nil publisher, got %T", pub)
	}
	if closeFn == nil {
		t.Fatal("close func must never be nil")
	}
	closeFn()
	if !bytes.Contains(buf.Bytes(), []byte("AMQP disabled")) {
		t.Errorf("expected disabled log line, got %q", buf.String())
	}
}

func TestOpenStore(t *testing.T) {
	var buf bytes.Buffer
	store := OpenStore(testLogger(&buf), filepath.Join(t.TempDir(), "nested", "fatura.db"))
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestWaitForSignal_ContextDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if sig := WaitForSignal(ctx); sig != nil {
		t.Fatalf("expected nil signal, got %v", sig)
	}
}
