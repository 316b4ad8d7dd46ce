// Package banner holds transient, auto-dismissing status messages for a
// single checkout or reschedule session.
package banner

import (
	"sync"
	"time"
)

// Presenter holds at most one transient message and clears it once its TTL
// elapses. A newer Flash supersedes the pending one and cancels its timer, and
// Close cancels any outstanding timer, so a torn-down session never receives a
// late reset.
type Presenter struct {
	mu     sync.Mutex
	msg    string
	gen    uint64
	timer  *time.Timer
	closed bool
}

// New creates an empty presenter.
func New() *Presenter {
	return &Presenter{}
}

// Flash sets the current message and schedules it to clear after ttl.
// A ttl <= 0 shows the message until the next Flash, Clear, or Close.
func (p *Presenter) Flash(msg string, ttl time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
	p.msg = msg
	if ttl <= 0 {
		return
	}
	gen := p.gen
	p.timer = time.AfterFunc(ttl, func() {
		p.expire(gen)
	})
}

// Current returns the active message, if any.
func (p *Presenter) Current() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.msg, p.msg != ""
}

// Clear dismisses the active message immediately.
func (p *Presenter) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
	p.msg = ""
}

// Close releases the presenter. Subsequent Flash calls are no-ops.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
	p.msg = ""
	p.closed = true
}

// expire clears the message only if no newer Flash superseded the timer. The
// generation check covers the window where AfterFunc fires concurrently with
// Stop.
func (p *Presenter) expire(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return
	}
	p.msg = ""
	p.timer = nil
}
