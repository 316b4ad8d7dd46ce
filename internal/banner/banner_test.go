package banner

import (
	"testing"
	"time"
)

func TestFlashAndExpire(t *testing.T) {
	p := New()
	defer p.Close()

	p.Flash("Selected 2 of 4 appointment slots.", 20*time.Millisecond)

	msg, ok := p.Current()
	if !ok || msg != "Selected 2 of 4 appointment slots." {
		t.Fatalf("expected message to be active, got %q, %v", msg, ok)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := p.Current(); ok {
		t.Error("expected message to auto-dismiss after ttl")
	}
}

func TestFlashSupersedesPendingTimer(t *testing.T) {
	p := New()
	defer p.Close()

	p.Flash("first", 20*time.Millisecond)
	p.Flash("second", 200*time.Millisecond)

	// The first timer must not clear the superseding message.
	time.Sleep(60 * time.Millisecond)
	msg, ok := p.Current()
	if !ok || msg != "second" {
		t.Fatalf("expected 'second' to survive first timer, got %q, %v", msg, ok)
	}
}

func TestZeroTTLSticks(t *testing.T) {
	p := New()
	defer p.Close()

	p.Flash("sticky", 0)
	time.Sleep(30 * time.Millisecond)
	if _, ok := p.Current(); !ok {
		t.Error("expected zero-ttl message to persist")
	}
}

func TestClear(t *testing.T) {
	p := New()
	defer p.Close()

	p.Flash("gone soon", time.Minute)
	p.Clear()
	if _, ok := p.Current(); ok {
		t.Error("expected Clear to dismiss immediately")
	}
}

func TestFlashAfterCloseIsNoop(t *testing.T) {
	p := New()
	p.Close()

	p.Flash("late write", time.Minute)
	if _, ok := p.Current(); ok {
		t.Error("expected Flash after Close to be ignored")
	}
}
