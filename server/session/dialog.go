package session

import "sync"

// WebDialog is the page Dialog of a browser session. A browser cannot block
// on a prompt, so a confirmation is answered ahead of time with Approve and
// alerts are queued until the next page render drains them.
type WebDialog struct {
	mu         sync.Mutex
	approved   bool
	lastPrompt string
	alerts     []string
}

// Approve makes the next Confirm return true.
func (d *WebDialog) Approve() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.approved = true
}

// Confirm records message and consumes a pending approval.
func (d *WebDialog) Confirm(message string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastPrompt = message
	ok := d.approved
	d.approved = false
	return ok
}

// LastPrompt returns the most recent confirmation message.
func (d *WebDialog) LastPrompt() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastPrompt
}

// Reset drops a pending approval and the recorded prompt.
func (d *WebDialog) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.approved = false
	d.lastPrompt = ""
}

// Alert queues message for the next render.
func (d *WebDialog) Alert(message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, message)
}

// DrainAlerts returns and clears the queued alerts.
func (d *WebDialog) DrainAlerts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	alerts := d.alerts
	d.alerts = nil
	return alerts
}
