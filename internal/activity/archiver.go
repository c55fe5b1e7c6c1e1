package activity

import (
	"context"
	"sync"
)

// archiveChanSize is the buffer size for pending archive writes.
// Records beyond this are dropped (best-effort) to avoid back-pressure on
// the controller.
const archiveChanSize = 256

// Sink receives records for durable storage. Implementations must not block.
type Sink interface {
	Archive(rec Record)
}

// Logger is the logging interface used by the Archiver.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Archiver is a Sink that writes records to a Repository from a single
// background goroutine. SQLite prefers one serial writer.
type Archiver struct {
	repo   Repository
	ch     chan Record
	logger Logger
	done   chan struct{}
	once   sync.Once
}

// NewArchiver creates an Archiver. Call Run to start writing.
func NewArchiver(repo Repository) *Archiver {
	return &Archiver{
		repo:   repo,
		ch:     make(chan Record, archiveChanSize),
		logger: noopLogger{},
		done:   make(chan struct{}),
	}
}

// SetLogger sets the logger for write failures and dropped records.
func (a *Archiver) SetLogger(logger Logger) {
	a.logger = logger
}

// Archive enqueues a record. If the buffer is full the record is dropped and
// a warning is logged.
func (a *Archiver) Archive(rec Record) {
	select {
	case a.ch <- rec:
	default:
		a.logger.Warn("activity archive full, dropping record",
			"log_id", rec.LogID,
			"action", rec.Action,
		)
	}
}

// Run writes queued records until ctx is cancelled, then drains whatever is
// still buffered before returning.
func (a *Archiver) Run(ctx context.Context) {
	defer a.once.Do(func() { close(a.done) })

	for {
		select {
		case rec := <-a.ch:
			a.write(rec)
		case <-ctx.Done():
			for {
				select {
				case rec := <-a.ch:
					a.write(rec)
				default:
					return
				}
			}
		}
	}
}

// Done is closed once Run has returned.
func (a *Archiver) Done() <-chan struct{} {
	return a.done
}

func (a *Archiver) write(rec Record) {
	if err := a.repo.Create(context.Background(), rec); err != nil {
		a.logger.Error("activity archive write failed",
			"log_id", rec.LogID,
			"action", rec.Action,
			"error", err,
		)
	}
}
