package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"dockload/internal/core/logger"
	"dockload/internal/core/metrics"
	"dockload/internal/core/recordstore"
	cdomain "dockload/internal/features/compliance/domain"
	"dockload/internal/features/loading/domain"
	"dockload/internal/features/loading/input"
	"dockload/internal/features/loading/ledger"
	"dockload/internal/features/loading/planner"
	"dockload/internal/features/loading/ports"
	"dockload/internal/features/loading/validator"
	mdomain "dockload/internal/features/manifest/domain"
	"dockload/internal/features/manifest/parser"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxScanLength bounds carton and vehicle scans when none is configured.
const DefaultMaxScanLength = 64

// Key names understood by Keys besides single characters.
const (
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
)

// Options holds the loading policy.
type Options struct {
	DefaultDiscipline domain.Discipline
	MaxScanLength     int
	KeyGap            time.Duration
	Quiescence        time.Duration
	// Clock drives timestamps and auto-commit timers. Nil uses the real clock.
	Clock input.Clock
}

// LoadingServiceImpl implements ports.LoadingService.
type LoadingServiceImpl struct {
	sessions  *Registry
	parser    *parser.Parser
	validator *validator.Validator
	repo      ports.SessionRepository
	stops     ports.StopSource
	mirror    ports.ScanMirror
	reporter  ports.Reporter
	metrics   *metrics.Metrics
	opts      Options
	log       *zap.Logger
}

// NewLoadingService creates a new LoadingServiceImpl.
func NewLoadingService(
	repo ports.SessionRepository,
	stops ports.StopSource,
	mirror ports.ScanMirror,
	reporter ports.Reporter,
	m *metrics.Metrics,
	opts Options,
) *LoadingServiceImpl {
	if opts.Clock == nil {
		opts.Clock = input.RealClock()
	}
	if opts.DefaultDiscipline == "" {
		opts.DefaultDiscipline = domain.DisciplineUnordered
	}
	if opts.MaxScanLength <= 0 {
		opts.MaxScanLength = DefaultMaxScanLength
	}
	if m == nil {
		m = metrics.NewNop()
	}

	return &LoadingServiceImpl{
		sessions:  NewRegistry(),
		parser:    parser.New(opts.Clock.Now),
		validator: validator.New(opts.Clock.Now),
		repo:      repo,
		stops:     stops,
		mirror:    mirror,
		reporter:  reporter,
		metrics:   m,
		opts:      opts,
		log:       logger.Named("loading"),
	}
}

// Open starts a session waiting for its manifest. An empty discipline uses the
// configured default.
func (s *LoadingServiceImpl) Open(ctx context.Context, discipline, operator string) (*ports.Progress, error) {
	d := s.opts.DefaultDiscipline
	if strings.TrimSpace(discipline) != "" {
		parsed, err := domain.ParseDiscipline(discipline)
		if err != nil {
			return nil, err
		}
		d = parsed
	}

	id := uuid.NewString()
	e := &entry{
		session: domain.NewSession(id, d, strings.TrimSpace(operator), s.opts.Clock.Now()),
	}
	e.input = input.New(s.opts.Clock, s.opts.KeyGap, s.opts.Quiescence, func(c input.Commit) {
		s.autoCommit(e, c)
	})
	s.sessions.add(e)

	s.log.Info("Loading session opened",
		zap.String("session_id", id),
		zap.String("discipline", string(d)),
		zap.String("operator", e.session.LoadedBy),
	)

	e.mu.Lock()
	defer e.mu.Unlock()
	return s.progress(e), nil
}

// Input routes one committed line to the handler of the session's stage.
// Rejected lines come back as both a Feedback and an error; the session stays
// in its stage.
func (s *LoadingServiceImpl) Input(ctx context.Context, sessionID, text string) (*ports.Feedback, error) {
	e, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, domain.ErrSessionNotFound
	}

	e.input.Clear()
	fb, err := s.route(ctx, e, input.Commit{Text: text, Source: input.SourceManual})
	e.lastFeedback = fb
	return fb, err
}

// Keys feeds raw keystrokes through the session's disambiguator. Enter, or
// submit after the last event, commits the buffered line. A scanner burst
// that is not submitted commits by itself once the line goes quiet; its
// feedback shows up as LastFeedback in Progress.
func (s *LoadingServiceImpl) Keys(ctx context.Context, sessionID string, events []ports.KeyEvent, submit bool) (*ports.Feedback, error) {
	e, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, domain.ErrSessionNotFound
	}

	var (
		fb      *ports.Feedback
		lastErr error
	)
	commit := func() {
		c, ok := e.input.Submit()
		if !ok {
			return
		}
		fb, lastErr = s.route(ctx, e, c)
		e.lastFeedback = fb
	}

	for i, ev := range events {
		var at time.Time
		if ev.At != "" {
			at, err = time.Parse(time.RFC3339Nano, ev.At)
			if err != nil {
				return nil, fmt.Errorf("%w: event %d: %v", domain.ErrInvalidKeyEvent, i, err)
			}
		}

		switch ev.Key {
		case KeyEnter, "\n", "\r":
			commit()
		case KeyBackspace:
			e.input.Backspace()
		default:
			if utf8.RuneCountInString(ev.Key) != 1 {
				// Modifier and navigation keys carry no text.
				continue
			}
			r, _ := utf8.DecodeRuneInString(ev.Key)
			e.input.Key(r, at)
		}
	}
	if submit {
		commit()
	}

	if fb == nil {
		fb = s.feedback(e, nil, "Input buffered")
	}
	return fb, lastErr
}

// Progress returns a snapshot of the session.
func (s *LoadingServiceImpl) Progress(ctx context.Context, sessionID string) (*ports.Progress, error) {
	e, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return s.progress(e), nil
}

// Reset discards the session's data and pending input and starts a new
// session waiting for its manifest. The new session gets a fresh id, which
// the returned Progress carries; the old id stops resolving. Records already
// written under the old id are kept and marked as superseded.
func (s *LoadingServiceImpl) Reset(ctx context.Context, sessionID string) (*ports.Progress, error) {
	e, err := s.sessions.get(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.session.ID != sessionID {
		return nil, domain.ErrSessionNotFound
	}

	previous := e.session.Stage
	e.input.Clear()
	e.session.Reset(uuid.NewString(), s.opts.Clock.Now())
	e.lastFeedback = nil
	s.sessions.rekey(e, sessionID)
	s.mirror.SessionReset(e.session, sessionID)

	s.log.Info("Loading session reset",
		zap.String("previous_session_id", sessionID),
		zap.String("session_id", e.session.ID),
		zap.String("previous_stage", string(previous)),
	)
	return s.progress(e), nil
}

// RegisterStops stores the delivery route used to plan strict loads of a shipment.
func (s *LoadingServiceImpl) RegisterStops(ctx context.Context, shipmentID string, stops []domain.DeliveryStopCarton) error {
	id := mdomain.NormalizeID(shipmentID)
	if id == "" {
		return &domain.ValidationError{Kind: domain.ValidationEmptyInput, Message: "shipment id is required"}
	}
	if len(stops) == 0 {
		return &domain.ValidationError{Kind: domain.ValidationEmptyInput, Message: "at least one delivery stop is required"}
	}

	normalized := make([]domain.DeliveryStopCarton, len(stops))
	for i, stop := range stops {
		stop.CartonID = mdomain.NormalizeID(stop.CartonID)
		if stop.CartonID == "" {
			return &domain.ValidationError{
				Kind:    domain.ValidationEmptyInput,
				Message: fmt.Sprintf("delivery stop %d has no carton id", i+1),
			}
		}
		if stop.StopSequenceNumber < 1 {
			return &domain.ValidationError{
				Kind:     domain.ValidationEmptyInput,
				Message:  fmt.Sprintf("carton %s has no stop sequence number", stop.CartonID),
				Expected: "stop number of at least 1",
				Actual:   fmt.Sprint(stop.StopSequenceNumber),
			}
		}
		normalized[i] = stop
	}

	return s.stops.SaveStops(ctx, id, normalized)
}

// RecordMirrorFailure attaches a failed background write to its session.
// Sessions that are gone are ignored.
func (s *LoadingServiceImpl) RecordMirrorFailure(sessionID string, failure domain.MirrorFailure) {
	e, err := s.sessions.get(sessionID)
	if err != nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.ID != sessionID {
		return
	}
	e.session.MirrorFailures = append(e.session.MirrorFailures, failure)
}

// Close tears down every live session.
func (s *LoadingServiceImpl) Close() {
	s.sessions.Close()
}

// autoCommit routes a scanner burst. A burst taken before the buffer was
// cleared by Input or Reset is dropped.
func (s *LoadingServiceImpl) autoCommit(e *entry, c input.Commit) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	if c.Generation != e.input.Generation() {
		s.log.Debug("Stale scanner input dropped",
			zap.String("session_id", e.session.ID),
			zap.String("text", c.Text),
		)
		return
	}

	fb, err := s.route(context.Background(), e, c)
	e.lastFeedback = fb
	if err != nil {
		s.log.Debug("Scanner input rejected",
			zap.String("session_id", e.session.ID),
			zap.String("stage", string(e.session.Stage)),
			zap.Error(err),
		)
	}
}

// route dispatches a committed line. Callers hold e.mu.
func (s *LoadingServiceImpl) route(ctx context.Context, e *entry, c input.Commit) (*ports.Feedback, error) {
	c.Text = strings.TrimSpace(c.Text)

	var (
		fb  *ports.Feedback
		err error
	)
	switch e.session.Stage {
	case domain.StageManifestPending:
		fb, err = s.submitManifest(ctx, e, c.Text)
	case domain.StageVehicleConfirmPending:
		fb, err = s.confirmVehicle(ctx, e, c.Text)
	case domain.StageScanningInProgress:
		fb, err = s.scanCarton(ctx, e, c.Text)
	default:
		err = &domain.StateError{Stage: e.session.Stage, Operation: "accept input"}
	}

	if fb == nil {
		fb = s.feedback(e, nil, "")
	}
	fb.Input = &c
	if err != nil {
		fb.Error = err.Error()
		if fb.Message == "" {
			fb.Message = err.Error()
		}
	}
	return fb, err
}

func (s *LoadingServiceImpl) submitManifest(ctx context.Context, e *entry, text string) (*ports.Feedback, error) {
	if text == "" {
		return nil, &domain.ValidationError{Kind: domain.ValidationEmptyInput, Message: "scan the shipment manifest"}
	}

	m, err := s.parser.Parse(text)
	if err != nil {
		s.metrics.ObserveManifest("failed")
		return nil, err
	}
	s.metrics.ObserveManifest(string(m.Encoding))

	next := *e.session
	next.Manifest = m
	next.Ledger = ledger.Build(m)
	next.Stage = domain.StageVehicleConfirmPending

	if err := s.repo.SaveManifest(ctx, &next); err != nil {
		s.log.Error("Failed to save manifest",
			zap.String("session_id", next.ID),
			zap.String("shipment_id", m.ShipmentID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("service: failed to save manifest: %w", err)
	}
	*e.session = next

	s.log.Info("Manifest accepted",
		zap.String("session_id", next.ID),
		zap.String("shipment_id", m.ShipmentID),
		zap.String("encoding", string(m.Encoding)),
		zap.Int("cartons", len(m.CartonIDs)),
		zap.Bool("multi_customer", m.MultiCustomer()),
	)

	msg := fmt.Sprintf("Manifest %s accepted with %d cartons; scan vehicle %s", m.ShipmentID, len(m.CartonIDs), m.VehicleID)
	if m.Synthesized(mdomain.FieldVehicleID) {
		msg = fmt.Sprintf("Manifest %s accepted with %d cartons; scan the vehicle", m.ShipmentID, len(m.CartonIDs))
	}
	fb := s.feedback(e, nil, msg)
	fb.Manifest = m
	return fb, nil
}

func (s *LoadingServiceImpl) confirmVehicle(ctx context.Context, e *entry, text string) (*ports.Feedback, error) {
	if err := s.checkScan(text, "scan the vehicle id"); err != nil {
		return nil, err
	}

	id := mdomain.NormalizeID(text)
	next := *e.session

	if next.Manifest.Synthesized(mdomain.FieldVehicleID) {
		bound := *next.Manifest
		bound.VehicleID = id
		next.Manifest = &bound
	} else if !strings.EqualFold(id, next.Manifest.VehicleID) {
		return nil, &domain.ValidationError{
			Kind:     domain.ValidationVehicleMismatch,
			Message:  fmt.Sprintf("Vehicle %s is not assigned to shipment %s", id, next.Manifest.ShipmentID),
			Expected: next.Manifest.VehicleID,
			Actual:   id,
		}
	}

	if next.Discipline == domain.DisciplineStrict {
		stops, err := s.stops.StopsFor(ctx, next.Manifest.ShipmentID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to load delivery stops: %w", err)
		}
		plan := planner.PlanFor(next.Discipline, planner.Restrict(stops, next.Manifest))
		if missing := planner.Coverage(plan, next.Manifest.CartonIDs); len(plan) == 0 || len(missing) > 0 {
			return nil, &domain.ValidationError{
				Kind:     domain.ValidationNoSequencePlan,
				Message:  fmt.Sprintf("Shipment %s has no delivery stop for every carton", next.Manifest.ShipmentID),
				Expected: fmt.Sprintf("%d planned cartons", len(next.Manifest.CartonIDs)),
				Actual:   fmt.Sprintf("%d planned, missing %s", len(plan), strings.Join(missing, ",")),
			}
		}
		next.ExpectedOrder = plan
	}

	next.ConfirmedVehicleID = id
	next.CurrentScanCount = 0
	next.Stage = domain.StageScanningInProgress

	if err := s.repo.SaveVehicleConfirmation(ctx, &next); err != nil {
		s.log.Error("Failed to save vehicle confirmation",
			zap.String("session_id", next.ID),
			zap.String("vehicle_id", id),
			zap.Error(err),
		)
		return nil, fmt.Errorf("service: failed to save vehicle confirmation: %w", err)
	}
	*e.session = next

	s.log.Info("Vehicle confirmed",
		zap.String("session_id", next.ID),
		zap.String("vehicle_id", id),
		zap.Int("planned_slots", len(next.ExpectedOrder)),
	)

	msg := fmt.Sprintf("Vehicle %s confirmed; scan %d cartons in any order", id, next.TotalExpected())
	if slot, ok := next.NextExpected(); ok {
		msg = fmt.Sprintf("Vehicle %s confirmed; load %s first", id, slot.CartonID)
	}
	return s.feedback(e, nil, msg), nil
}

func (s *LoadingServiceImpl) scanCarton(ctx context.Context, e *entry, text string) (*ports.Feedback, error) {
	if err := s.checkScan(text, "scan a carton"); err != nil {
		return nil, err
	}

	session := e.session
	out := s.validator.Validate(text, session)
	s.metrics.ObserveScan(string(out.Kind), string(session.Discipline))

	fb := s.feedback(e, &out, out.Message)
	if !out.Accepted() {
		s.mirror.ViolationRecorded(session, session.Violations[len(session.Violations)-1])
		s.log.Warn("Carton scan rejected",
			zap.String("session_id", session.ID),
			zap.String("carton_id", out.CartonID),
			zap.String("outcome", string(out.Kind)),
		)
		return fb, out.Err()
	}

	s.mirror.CartonLoaded(session, session.ScanLog[len(session.ScanLog)-1])
	if out.Terminal {
		fb.Report = s.complete(ctx, session)
		fb.Stage = session.Stage
	}
	return fb, nil
}

// complete moves a fully loaded session to its final stage and generates the
// compliance report. A report failure is kept on the session; the load stands.
func (s *LoadingServiceImpl) complete(ctx context.Context, session *domain.Session) *cdomain.ComplianceReport {
	session.Stage = domain.StageCompleted
	session.CompletedAt = s.opts.Clock.Now()
	s.metrics.ObserveCompletion(string(session.Discipline))
	s.mirror.SessionCompleted(session)

	report, err := s.reporter.Generate(ctx, session)
	if err != nil {
		s.log.Error("Failed to generate compliance report",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		failure := domain.MirrorFailure{
			Operation:  "generate_report",
			Collection: recordstore.CollectionReports,
			Kind:       string(recordstore.KindOf(err)),
			Message:    err.Error(),
			At:         s.opts.Clock.Now(),
		}
		var remote *recordstore.RemoteError
		if errors.As(err, &remote) {
			failure.Code = remote.Code
		}
		session.MirrorFailures = append(session.MirrorFailures, failure)
		return nil
	}

	s.log.Info("Loading session completed",
		zap.String("session_id", session.ID),
		zap.String("shipment_id", session.Manifest.ShipmentID),
		zap.Int("cartons", session.ScannedCount()),
		zap.Int("violations", len(session.Violations)),
	)
	return report
}

// checkScan rejects blank and oversized carton or vehicle scans.
func (s *LoadingServiceImpl) checkScan(text, prompt string) error {
	if text == "" {
		return &domain.ValidationError{Kind: domain.ValidationEmptyInput, Message: prompt}
	}
	if n := utf8.RuneCountInString(text); n > s.opts.MaxScanLength {
		return &domain.ValidationError{
			Kind:     domain.ValidationOversizedInput,
			Message:  "Scanned text is too long for an identifier",
			Expected: fmt.Sprintf("at most %d characters", s.opts.MaxScanLength),
			Actual:   fmt.Sprintf("%d characters", n),
		}
	}
	return nil
}

func (s *LoadingServiceImpl) feedback(e *entry, out *domain.Outcome, msg string) *ports.Feedback {
	return &ports.Feedback{
		SessionID: e.session.ID,
		Stage:     e.session.Stage,
		Outcome:   out,
		Message:   msg,
	}
}

// progress snapshots the session. Callers hold e.mu.
func (s *LoadingServiceImpl) progress(e *entry) *ports.Progress {
	session := e.session
	p := &ports.Progress{
		SessionID:      session.ID,
		Stage:          session.Stage,
		Discipline:     session.Discipline,
		TotalExpected:  session.TotalExpected(),
		TotalScanned:   session.ScannedCount(),
		ExpectedOrder:  slices.Clone(session.ExpectedOrder),
		ScanLog:        slices.Clone(session.ScanLog),
		Violations:     slices.Clone(session.Violations),
		MirrorFailures: slices.Clone(session.MirrorFailures),
		PendingInput:   e.input.Text(),
		LastFeedback:   e.lastFeedback,
	}
	if session.Manifest != nil {
		p.ShipmentID = session.Manifest.ShipmentID
		p.VehicleID = session.Manifest.VehicleID
	}
	if slot, ok := session.NextExpected(); ok && session.Stage == domain.StageScanningInProgress {
		p.NextExpected = &slot
	}
	if session.Ledger != nil {
		for _, summary := range session.Ledger.Summaries() {
			p.Customers = append(p.Customers, ports.CustomerProgress{
				CustomerName: summary.CustomerName,
				Expected:     summary.Expected,
				Scanned:      summary.Scanned,
				Complete:     summary.Complete(),
			})
		}
	}
	return p
}
