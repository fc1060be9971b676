package page

import "time"

// MessageDisplayDuration is how long a message stays visible.
const MessageDisplayDuration = 5 * time.Second

// Message area classes.
const (
	ClassSuccess = "success"
	ClassError   = "error"
	ClassHidden  = "hidden"
)

// Message is the state of the inline message area.
type Message struct {
	Text string
	// Class is ClassSuccess or ClassError once a message has been shown.
	Class  string
	Hidden bool
}

// ClassName returns the area's class attribute, e.g. "success hidden".
func (m Message) ClassName() string {
	switch {
	case m.Class == "":
		return ClassHidden
	case m.Hidden:
		return m.Class + " " + ClassHidden
	default:
		return m.Class
	}
}

// Timer is a scheduled task that can be cancelled.
type Timer interface {
	// Stop cancels the task. It reports false if the task already ran or was stopped.
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// showMessage makes the area visible with text and class, cancels any pending
// hide and schedules a new one.
func (p *Page) showMessage(text, class string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.message = Message{Text: text, Class: class}
	p.generation++
	gen := p.generation

	if p.hideTimer != nil {
		p.hideTimer.Stop()
	}
	p.hideTimer = p.scheduler.AfterFunc(MessageDisplayDuration, func() {
		p.hideMessage(gen)
	})
}

func (p *Page) hideMessage(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return
	}
	p.message.Hidden = true
	p.hideTimer = nil
}

// Close cancels a pending message hide.
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hideTimer != nil {
		p.hideTimer.Stop()
		p.hideTimer = nil
	}
}
