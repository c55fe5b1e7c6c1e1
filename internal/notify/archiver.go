package notify

import (
	"context"
	"errors"
	"sync"
)

const archiveChanSize = 128

// Logger is the logging interface used by the Archiver.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// archiveOp is either a new notification or a contact change.
type archiveOp struct {
	store   *Notification
	id      string
	address string
}

// Archiver is a Sink that writes to a Repository from one goroutine.
type Archiver struct {
	repo   Repository
	ch     chan archiveOp
	logger Logger
	done   chan struct{}
	once   sync.Once
}

// NewArchiver creates an Archiver. Call Run to start writing.
func NewArchiver(repo Repository) *Archiver {
	return &Archiver{
		repo:   repo,
		ch:     make(chan archiveOp, archiveChanSize),
		logger: noopLogger{},
		done:   make(chan struct{}),
	}
}

// SetLogger sets the logger for write failures and dropped operations.
func (a *Archiver) SetLogger(logger Logger) {
	a.logger = logger
}

// Store implements Sink.
func (a *Archiver) Store(n Notification) {
	a.enqueue(archiveOp{store: &n})
}

// ContactChanged implements Sink.
func (a *Archiver) ContactChanged(id, address string) {
	a.enqueue(archiveOp{id: id, address: address})
}

func (a *Archiver) enqueue(op archiveOp) {
	select {
	case a.ch <- op:
	default:
		a.logger.Warn("notification archive full, dropping write")
	}
}

// Run applies queued writes until ctx is cancelled, then drains the buffer.
func (a *Archiver) Run(ctx context.Context) {
	defer a.once.Do(func() { close(a.done) })

	for {
		select {
		case op := <-a.ch:
			a.apply(op)
		case <-ctx.Done():
			for {
				select {
				case op := <-a.ch:
					a.apply(op)
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

func (a *Archiver) apply(op archiveOp) {
	ctx := context.Background()
	if op.store != nil {
		if err := a.repo.Save(ctx, *op.store); err != nil {
			a.logger.Error("notification archive write failed", "id", op.store.ID, "error", err)
		}
		return
	}
	if err := a.repo.UpdateContact(ctx, op.id, op.address); err != nil && !errors.Is(err, ErrNotFound) {
		a.logger.Error("notification contact update failed", "id", op.id, "error", err)
	}
}
