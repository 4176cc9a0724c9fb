package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/models"
)

// DefaultTimeout bounds a single export request.
const DefaultTimeout = 30 * time.Second

// ErrInFlight is returned when an export is requested while another is pending.
var ErrInFlight = errors.New("an export is already in progress")

// State is the export requester's position in its lifecycle.
type State int32

const (
	StateIdle State = iota
	StateRequesting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Error reports a failed export. Network failures, bad statuses and save
// errors all surface as this one kind.
type Error struct {
	Format Format
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// DraftSource supplies the draft to export.
type DraftSource interface {
	Snapshot() models.Draft
}

// Fetcher retrieves a generated document for a draft.
type Fetcher interface {
	Download(ctx context.Context, f Format, d models.Draft) ([]byte, error)
}

// Downloader persists a fetched document and returns where it went.
type Downloader interface {
	Save(filename string, data []byte) (string, error)
}

// Notifier shows outcomes to the user.
type Notifier interface {
	Success(format string, a ...any)
	Error(format string, a ...any)
}

// Recorder keeps a history of finished export attempts.
type Recorder interface {
	RecordExport(ctx context.Context, rec *models.ExportRecord) error
}

// Result describes a successful export.
type Result struct {
	Format   Format
	Filename string
	Path     string
	Bytes    int
}

// Requester runs one export at a time: idle -> requesting -> succeeded|failed -> idle.
type Requester struct {
	source     DraftSource
	fetcher    Fetcher
	downloader Downloader
	notifier   Notifier
	recorder   Recorder
	logger     *slog.Logger
	timeout    time.Duration
	strict     bool
	onState    func(State)
	now        func() time.Time

	state atomic.Int32
}

// Option configures a Requester.
type Option func(*Requester)

// WithNotifier sets where success and failure notices go.
func WithNotifier(n Notifier) Option { return func(r *Requester) { r.notifier = n } }

// WithRecorder enables export history.
func WithRecorder(rec Recorder) Option { return func(r *Requester) { r.recorder = rec } }

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option { return func(r *Requester) { r.logger = l } }

// WithTimeout bounds each request. Zero or negative keeps DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Requester) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithStrict refuses to export drafts that fail validation.
func WithStrict(strict bool) Option { return func(r *Requester) { r.strict = strict } }

// WithStateHook is called on every state change.
func WithStateHook(fn func(State)) Option { return func(r *Requester) { r.onState = fn } }

// NewRequester wires a requester around its collaborators.
func NewRequester(src DraftSource, f Fetcher, dl Downloader, opts ...Option) *Requester {
	r := &Requester{
		source:     src,
		fetcher:    f,
		downloader: dl,
		logger:     slog.Default(),
		timeout:    DefaultTimeout,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current state.
func (r *Requester) State() State {
	return State(r.state.Load())
}

func (r *Requester) setState(s State) {
	r.state.Store(int32(s))
	if r.onState != nil {
		r.onState(s)
	}
}

// Export snapshots the draft from the source and exports it. See ExportDraft.
func (r *Requester) Export(ctx context.Context, f Format) (Result, error) {
	return r.ExportDraft(ctx, f, r.source.Snapshot())
}

// ExportDraft requests the document for snap and saves it as project.<ext>.
// Callers that must pin the draft at trigger time snapshot it themselves.
// It makes exactly one attempt. In strict mode an invalid draft is rejected
// with a *draft.ValidationError before any request, notification or record.
func (r *Requester) ExportDraft(ctx context.Context, f Format, snap models.Draft) (Result, error) {
	if !f.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	snap = draft.Clone(snap)
	if r.strict {
		if err := draft.Check(snap); err != nil {
			return Result{}, err
		}
	}
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateRequesting)) {
		return Result{}, ErrInFlight
	}
	if r.onState != nil {
		r.onState(StateRequesting)
	}
	defer r.setState(StateIdle)

	rec := &models.ExportRecord{
		Format:      string(f),
		Filename:    f.Filename(),
		ProjectName: snap.ProjectName,
		StartedAt:   r.now().UTC(),
	}

	res, err := r.run(ctx, f, snap)
	rec.FinishedAt = r.now().UTC()
	if err != nil {
		r.setState(StateFailed)
		rec.Status = models.ExportStatusFailed
		rec.Error = err.Error()
		r.logger.Error("export failed", "format", string(f), "error", err)
		r.notifyError("Failed to download %s file.", f)
		r.record(ctx, rec)
		return Result{}, &Error{Format: f, Err: err}
	}

	r.setState(StateSucceeded)
	rec.Status = models.ExportStatusSucceeded
	rec.Bytes = int64(res.Bytes)
	r.logger.Info("export saved", "format", string(f), "path", res.Path, "bytes", res.Bytes)
	if r.notifier != nil {
		r.notifier.Success("Saved %s file: %s", f, res.Path)
	}
	r.record(ctx, rec)
	return res, nil
}

func (r *Requester) run(ctx context.Context, f Format, snap models.Draft) (Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.fetcher.Download(reqCtx, f, snap)
	if err != nil {
		return Result{}, err
	}

	path, err := r.downloader.Save(f.Filename(), data)
	if err != nil {
		return Result{}, err
	}
	return Result{Format: f, Filename: f.Filename(), Path: path, Bytes: len(data)}, nil
}

func (r *Requester) notifyError(format string, a ...any) {
	if r.notifier != nil {
		r.notifier.Error(format, a...)
	}
}

// record never changes the export outcome.
func (r *Requester) record(ctx context.Context, rec *models.ExportRecord) {
	if r.recorder == nil {
		return
	}
	// The caller's context may already be done after a timeout.
	if err := r.recorder.RecordExport(context.WithoutCancel(ctx), rec); err != nil {
		r.logger.Warn("record export history", "error", err)
	}
}
