package adapters

import (
	"context"
	"errors"
	"sync"
	"time"

	"dockload/internal/core/logger"
	"dockload/internal/core/metrics"
	"dockload/internal/core/recordstore"
	"dockload/internal/features/loading/domain"

	"go.uber.org/zap"
)

const defaultMirrorTimeout = 5 * time.Second

var (
	errMirrorQueueFull = errors.New("mirror queue full")
	errMirrorClosed    = errors.New("mirror closed")
)

// FailureHandler receives mirror writes that failed in the background.
type FailureHandler func(sessionID string, failure domain.MirrorFailure)

type mirrorJob struct {
	sessionID  string
	operation  string
	collection string
	run        func(ctx context.Context) error
}

// Mirror implements ports.ScanMirror. Writes are queued and applied in order
// by a single worker, each bounded by its own timeout.
type Mirror struct {
	store   recordstore.Store
	jobs    chan mirrorJob
	timeout time.Duration
	metrics *metrics.Metrics
	now     func() time.Time
	log     *zap.Logger

	mu        sync.RWMutex
	closed    bool
	onFailure FailureHandler

	done chan struct{}
}

// NewMirror creates a Mirror and starts its worker. Close stops it.
func NewMirror(store recordstore.Store, queueSize int, timeout time.Duration, m *metrics.Metrics, now func() time.Time) *Mirror {
	if queueSize <= 0 {
		queueSize = 1
	}
	if timeout <= 0 {
		timeout = defaultMirrorTimeout
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if now == nil {
		now = time.Now
	}

	mirror := &Mirror{
		store:   store,
		jobs:    make(chan mirrorJob, queueSize),
		timeout: timeout,
		metrics: m,
		now:     now,
		log:     logger.Named("mirror"),
		done:    make(chan struct{}),
	}
	go mirror.work()
	return mirror
}

// OnFailure registers the handler for failed background writes.
func (m *Mirror) OnFailure(fn FailureHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onFailure = fn
}

// CartonLoaded marks the carton record as loaded.
func (m *Mirror) CartonLoaded(s *domain.Session, ev domain.ScanEvent) {
	patch := recordstore.Record{
		"scanned":       true,
		"loaded_by":     s.LoadedBy,
		"loaded_at":     formatTime(ev.ScannedAt),
		"load_position": ev.Position,
	}
	progress := recordstore.Record{"scanned_count": s.ScannedCount()}
	filter := recordstore.Filter{recordstore.IDField: cartonRecordID(s.ID, ev.CartonID)}
	sessionFilter := recordstore.Filter{recordstore.IDField: s.ID}

	m.enqueue(s, mirrorJob{
		sessionID:  s.ID,
		operation:  "update",
		collection: recordstore.CollectionCartons,
		run: func(ctx context.Context) error {
			if _, err := m.store.Update(ctx, recordstore.CollectionCartons, filter, patch); err != nil {
				return err
			}
			_, err := m.store.Update(ctx, recordstore.CollectionSessions, sessionFilter, progress)
			return err
		},
	})
}

// ViolationRecorded appends the violation to the remote log.
func (m *Mirror) ViolationRecorded(s *domain.Session, v domain.ScanViolation) {
	rec := violationRecord(s.ID, v)
	progress := recordstore.Record{"violation_count": len(s.Violations)}
	sessionFilter := recordstore.Filter{recordstore.IDField: s.ID}

	m.enqueue(s, mirrorJob{
		sessionID:  s.ID,
		operation:  "insert",
		collection: recordstore.CollectionViolations,
		run: func(ctx context.Context) error {
			if _, err := m.store.Insert(ctx, recordstore.CollectionViolations, rec); err != nil {
				return err
			}
			_, err := m.store.Update(ctx, recordstore.CollectionSessions, sessionFilter, progress)
			return err
		},
	})
}

// SessionCompleted records the final stage of the session.
func (m *Mirror) SessionCompleted(s *domain.Session) {
	patch := sessionRecord(s)
	delete(patch, recordstore.IDField)
	sessionFilter := recordstore.Filter{recordstore.IDField: s.ID}

	m.enqueue(s, mirrorJob{
		sessionID:  s.ID,
		operation:  "update",
		collection: recordstore.CollectionSessions,
		run: func(ctx context.Context) error {
			_, err := m.store.Update(ctx, recordstore.CollectionSessions, sessionFilter, patch)
			return err
		},
	})
}

// SessionReset marks the record of previousID as superseded by the session's
// new id. A previous session that never reached the store is left alone.
func (m *Mirror) SessionReset(s *domain.Session, previousID string) {
	patch := recordstore.Record{
		"superseded_by": s.ID,
		"reset_at":      formatTime(s.CreatedAt),
	}
	previousFilter := recordstore.Filter{recordstore.IDField: previousID}

	m.enqueue(s, mirrorJob{
		sessionID:  s.ID,
		operation:  "update",
		collection: recordstore.CollectionSessions,
		run: func(ctx context.Context) error {
			_, err := m.store.Update(ctx, recordstore.CollectionSessions, previousFilter, patch)
			return err
		},
	})
}

// enqueue never blocks. A write that cannot be queued is recorded on the
// session right away; the caller already holds it.
func (m *Mirror) enqueue(s *domain.Session, job mirrorJob) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		s.MirrorFailures = append(s.MirrorFailures, m.failure(job, recordstore.Connectivity(job.operation, job.collection, errMirrorClosed)))
		return
	}

	select {
	case m.jobs <- job:
		m.metrics.MirrorQueueDepth.Inc()
	default:
		f := m.failure(job, recordstore.Connectivity(job.operation, job.collection, errMirrorQueueFull))
		s.MirrorFailures = append(s.MirrorFailures, f)
	}
}

func (m *Mirror) work() {
	defer close(m.done)

	for job := range m.jobs {
		m.metrics.MirrorQueueDepth.Dec()

		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		err := job.run(ctx)
		cancel()
		if err == nil {
			continue
		}

		f := m.failure(job, recordstore.Classify(job.operation, job.collection, err))
		m.mu.RLock()
		handler := m.onFailure
		m.mu.RUnlock()
		if handler != nil {
			handler(job.sessionID, f)
		}
	}
}

// failure logs and counts a failed write and describes it for the session.
func (m *Mirror) failure(job mirrorJob, err error) domain.MirrorFailure {
	f := domain.MirrorFailure{
		Operation:  job.operation,
		Collection: job.collection,
		Kind:       string(recordstore.KindOf(err)),
		Message:    err.Error(),
		At:         m.now(),
	}
	var remote *recordstore.RemoteError
	if errors.As(err, &remote) {
		f.Code = remote.Code
	}

	m.metrics.ObserveMirrorFailure(f.Kind)
	m.log.Warn("Mirror write failed",
		zap.String("session_id", job.sessionID),
		zap.String("operation", job.operation),
		zap.String("collection", job.collection),
		zap.Error(err),
	)
	return f
}

// Close stops accepting writes and waits until queued ones are applied.
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		<-m.done
		return
	}
	m.closed = true
	close(m.jobs)
	m.mu.Unlock()

	<-m.done
}
