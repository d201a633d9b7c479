package cli

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestSpinnerSilentWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Checking registry")
	s.start()
	time.Sleep(100 * time.Millisecond)
	s.stop()

	if buf.Len() != 0 {
		t.Errorf("spinner wrote to a non-terminal: %q", buf.String())
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s := newSpinner(context.Background(), &bytes.Buffer{}, "Checking registry")
	s.start()
	s.stop()
	s.stop()
}

func TestSpinnerContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &bytes.Buffer{}, "Checking registry")
	s.start()
	cancel()

	deadline := time.After(time.Second)
	for !s.canceled() {
		select {
		case <-deadline:
			t.Fatal("spinner did not notice cancellation")
		case <-time.After(10 * time.Millisecond):
		}
	}
	s.stop()
}
