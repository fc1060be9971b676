package logging

import (
	"sync"
	"time"
)

// DefaultMaxEntries is the per-component capacity of a LogCollector.
const DefaultMaxEntries = 200

// LogEntry represents a single log record with structured data.
type LogEntry struct {
	Time       time.Time              `json:"time"`
	Level      string                 `json:"level"` // "DEBUG", "INFO", "WARN", "ERROR"
	Message    string                 `json:"message"`
	Attributes map[string]interface{} `json:"attributes"`
}

// LogCollector keeps the most recent log entries of each component.
// It is safe for concurrent use.
type LogCollector struct {
	mu         sync.RWMutex
	maxEntries int
	logs       map[string][]LogEntry
}

// NewLogCollector creates a LogCollector holding DefaultMaxEntries per component.
func NewLogCollector() *LogCollector {
	return NewBoundedLogCollector(DefaultMaxEntries)
}

// NewBoundedLogCollector creates a LogCollector holding at most maxEntries per
// component; older entries are dropped first. maxEntries <= 0 means unbounded.
func NewBoundedLogCollector(maxEntries int) *LogCollector {
	return &LogCollector{
		maxEntries: maxEntries,
		logs:       make(map[string][]LogEntry),
	}
}

// Add appends an entry for component.
func (c *LogCollector) Add(component string, entry LogEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := append(c.logs[component], entry)
	if c.maxEntries > 0 && len(entries) > c.maxEntries {
		entries = append([]LogEntry(nil), entries[len(entries)-c.maxEntries:]...)
	}
	c.logs[component] = entries
}

// Entries returns a copy of the entries for component, oldest first.
func (c *LogCollector) Entries(component string) []LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	logs, exists := c.logs[component]
	if !exists {
		return nil
	}
	result := make([]LogEntry, len(logs))
	copy(result, logs)
	return result
}

// All returns a copy of every component's entries.
func (c *LogCollector) All() map[string][]LogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string][]LogEntry, len(c.logs))
	for component, logs := range c.logs {
		logsCopy := make([]LogEntry, len(logs))
		copy(logsCopy, logs)
		result[component] = logsCopy
	}
	return result
}

// Clear removes all stored entries.
func (c *LogCollector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logs = make(map[string][]LogEntry)
}
