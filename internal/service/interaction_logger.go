package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/openlive/faq-chatbot/internal/models"
	"github.com/openlive/faq-chatbot/internal/textutil"
)

// ---- Sink contracts --------------------------------------------------------

// InteractionSink is an append-only destination for interaction records.
type InteractionSink interface {
	Name() string
	Append(ctx context.Context, rec models.InteractionRecord) error
}

// InteractionReader is implemented by sinks that can read records back.
type InteractionReader interface {
	Recent(ctx context.Context, limit int) ([]models.InteractionRecord, error)
}

// ---- Logger ----------------------------------------------------------------

// InteractionLogger records user interactions without blocking the caller.
type InteractionLogger interface {
	// Log queues rec for every sink. It never blocks on I/O and never fails.
	Log(rec models.InteractionRecord)
	// LogStartup records a server_startup system event.
	LogStartup()
	// Close waits for queued records and stops the workers.
	Close()
}

// LoggerOptions configures NewInteractionLogger.
type LoggerOptions struct {
	Workers int
	Timeout time.Duration
}

const maxLoggedMessage = 100

type interactionLogger struct {
	sinks   []InteractionSink
	pool    *ants.Pool
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewInteractionLogger dispatches records to sinks on a bounded worker pool.
// When the pool is saturated new records are dropped and logged locally.
func NewInteractionLogger(sinks []InteractionSink, opts LoggerOptions) (InteractionLogger, error) {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	pool, err := ants.NewPool(opts.Workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p any) {
			log.Printf("[Interaction Logger] Sink panicked: %v", p)
		}),
	)
	if err != nil {
		return nil, err
	}

	return &interactionLogger{
		sinks:   sinks,
		pool:    pool,
		timeout: opts.Timeout,
	}, nil
}

func (l *interactionLogger) Log(rec models.InteractionRecord) {
	if len(l.sinks) == 0 {
		return
	}
	rec = prepareRecord(rec)

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		log.Printf("[Interaction Logger] Dropping %s record %s: logger closed", rec.Action, rec.ID)
		return
	}

	l.wg.Add(1)
	err := l.pool.Submit(func() {
		defer l.wg.Done()
		l.dispatch(rec)
	})
	if err != nil {
		l.wg.Done()
		if errors.Is(err, ants.ErrPoolOverload) {
			log.Printf("[Interaction Logger] Dropping %s record %s: pool saturated", rec.Action, rec.ID)
			return
		}
		log.Printf("[Interaction Logger] Failed to queue record %s: %v", rec.ID, err)
	}
}

func (l *interactionLogger) LogStartup() {
	l.Log(models.InteractionRecord{
		Platform: "system",
		Action:   models.ActionServerStartup,
		Status:   "success",
	})
}

func (l *interactionLogger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.wg.Wait()
	l.pool.Release()
}

func (l *interactionLogger) dispatch(rec models.InteractionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	for _, sink := range l.sinks {
		if err := sink.Append(ctx, rec); err != nil {
			log.Printf("[Interaction Logger] %s append failed for %s: %v", sink.Name(), rec.ID, err)
		}
	}
}

func prepareRecord(rec models.InteractionRecord) models.InteractionRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if rec.Status == "" {
		rec.Status = "processed"
	}
	msg := []rune(textutil.Sanitize(rec.Message))
	if len(msg) > maxLoggedMessage {
		msg = msg[:maxLoggedMessage]
	}
	rec.Message = string(msg)
	return rec
}

// nopLogger discards every record.
type nopLogger struct{}

// NewNopInteractionLogger returns a logger that drops everything.
func NewNopInteractionLogger() InteractionLogger { return nopLogger{} }

func (nopLogger) Log(models.InteractionRecord) {}
func (nopLogger) LogStartup()                  {}
func (nopLogger) Close()                       {}
