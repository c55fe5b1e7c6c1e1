package activity

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ActorSystem is the actor recorded for actions not attributed to a user.
const ActorSystem = "SYSTEM"

// Record is a single audit trail entry. Records are values; once appended to
// a Log they are never modified.
type Record struct {
	LogID      string    `json:"log_id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	DeviceName string    `json:"device_name,omitempty"`
	DeviceID   string    `json:"device_id,omitempty"` // empty for non-device events
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// Sequence hands out monotonically increasing log IDs of the form
// "<prefix>-<n>", starting at 1.
//
// Thread Safety: Next is safe for concurrent use.
type Sequence struct {
	prefix string
	n      atomic.Uint64
}

// NewSequence creates a Sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next ID in the sequence.
func (s *Sequence) Next() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.n.Add(1))
}

// Log is an append-only, ordered collection of records.
//
// Thread Safety: all methods are safe for concurrent use. Readers always
// receive copies, never the backing slice.
type Log struct {
	mu      sync.RWMutex
	records []Record
}

// NewLog creates an empty Log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a record to the end of the log.
func (l *Log) Append(rec Record) {
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
}

// Len returns the number of records in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Records returns a copy of every record in append order.
func (l *Log) Records() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
