// Package notify is the toast relay: one ephemeral status message at a time,
// auto-dismissed after a fixed interval.
package notify

import (
	"sync"
	"time"
)

type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Error   Severity = "error"
)

type Message struct {
	Title    string
	Text     string
	Severity Severity
}

// DefaultTTL mirrors the 3-second toast timer of the admin console.
const DefaultTTL = 3 * time.Second

// Center holds the current toast. It is an explicit object created once per
// console session and closed on teardown, not a package-level global.
type Center struct {
	mu      sync.Mutex
	ttl     time.Duration
	current *Message
	timer   *time.Timer
	onShow  func(Message)
	closed  bool
}

func New(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl}
}

// OnShow registers the observer invoked on every pushed message.
func (c *Center) OnShow(fn func(Message)) {
	c.mu.Lock()
	c.onShow = fn
	c.mu.Unlock()
}

// Push replaces the current toast and restarts the dismiss timer.
func (c *Center) Push(sev Severity, title, text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	msg := Message{Title: title, Text: text, Severity: sev}
	c.current = &msg
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.ttl, func() { c.clear(msg) })
	fn := c.onShow
	c.mu.Unlock()

	if fn != nil {
		fn(msg)
	}
}

// clear drops the toast only if it is still the one the timer was armed for.
func (c *Center) clear(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && *c.current == msg {
		c.current = nil
	}
}

// Current returns the visible toast, if any.
func (c *Center) Current() (Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Message{}, false
	}
	return *c.current, true
}

// Close stops the dismiss timer and drops any visible toast.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = nil
}
