package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/crowdfund/internal/draft"
	"github.com/joescharf/crowdfund/internal/models"
)

// --- fakes ---

type fakeDownloader struct {
	mu    sync.Mutex
	saved map[string][]byte
	calls int
	err   error
}

func (f *fakeDownloader) Save(filename string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if f.saved == nil {
		f.saved = map[string][]byte{}
	}
	f.saved[filename] = data
	return "/downloads/" + filename, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *fakeNotifier) Success(format string, a ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, fmt.Sprintf(format, a...))
}

func (n *fakeNotifier) Error(format string, a ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, fmt.Sprintf(format, a...))
}

type fakeRecorder struct {
	records []*models.ExportRecord
	err     error
}

func (r *fakeRecorder) RecordExport(_ context.Context, rec *models.ExportRecord) error {
	r.records = append(r.records, rec)
	return r.err
}

type fetchFunc func(ctx context.Context, f Format, d models.Draft) ([]byte, error)

func (fn fetchFunc) Download(ctx context.Context, f Format, d models.Draft) ([]byte, error) {
	return fn(ctx, f, d)
}

func filledHolder() *draft.Holder {
	h := draft.NewHolder(draft.New())
	_, _ = h.SetScalar(models.FieldProjectName, "Solar Kite")
	_, _ = h.SetScalar(models.FieldDescription, "A kite that charges phones")
	_, _ = h.SetScalar(models.FieldFundingGoal, "25000")
	_, _ = h.SetListItem(models.FieldFundingMilestones, 0, "Launch MVP")
	return h
}

// --- scenarios ---

func TestExport_PDF_Success(t *testing.T) {
	var requests atomic.Int32
	var gotPath string
	var gotBody struct {
		FormData models.Draft `json:"formData"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		_, _ = w.Write([]byte("pdf-bytes"))
	}))
	defer srv.Close()

	h := filledHolder()
	dl := &fakeDownloader{}
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	r := NewRequester(h, NewClient(srv.URL, srv.Client()), dl,
		WithNotifier(n), WithRecorder(rec))

	res, err := r.Export(context.Background(), FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, int32(1), requests.Load())
	assert.Equal(t, "/api/download/PDF", gotPath)
	assert.Equal(t, h.Snapshot(), gotBody.FormData)

	assert.Equal(t, 1, dl.calls)
	assert.Equal(t, []byte("pdf-bytes"), dl.saved["project.pdf"])
	assert.Equal(t, "project.pdf", res.Filename)
	assert.Equal(t, "/downloads/project.pdf", res.Path)
	assert.Equal(t, len("pdf-bytes"), res.Bytes)

	assert.Len(t, n.successes, 1)
	assert.Empty(t, n.errors)

	require.Len(t, rec.records, 1)
	assert.Equal(t, models.ExportStatusSucceeded, rec.records[0].Status)
	assert.Equal(t, "PDF", rec.records[0].Format)
	assert.Equal(t, "Solar Kite", rec.records[0].ProjectName)
	assert.Equal(t, int64(9), rec.records[0].Bytes)

	assert.Equal(t, StateIdle, r.State())
}

func TestExport_Excel_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	h := filledHolder()
	before := h.Snapshot()
	dl := &fakeDownloader{}
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	r := NewRequester(h, NewClient(url, nil), dl, WithNotifier(n), WithRecorder(rec))

	_, err := r.Export(context.Background(), FormatExcel)
	require.Error(t, err)

	var exportErr *Error
	require.ErrorAs(t, err, &exportErr)
	assert.Equal(t, FormatExcel, exportErr.Format)

	assert.Equal(t, 0, dl.calls)
	assert.Equal(t, []string{"Failed to download Excel file."}, n.errors)
	assert.Empty(t, n.successes)
	assert.Equal(t, before, h.Snapshot())

	require.Len(t, rec.records, 1)
	assert.Equal(t, models.ExportStatusFailed, rec.records[0].Status)
	assert.NotEmpty(t, rec.records[0].Error)
	assert.Equal(t, StateIdle, r.State())
}

func TestExport_StatusFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	dl := &fakeDownloader{}
	n := &fakeNotifier{}
	r := NewRequester(filledHolder(), NewClient(srv.URL, srv.Client()), dl, WithNotifier(n))

	_, err := r.Export(context.Background(), FormatPDF)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, 0, dl.calls)
	assert.Len(t, n.errors, 1)
}

func TestExport_SaveFailure(t *testing.T) {
	fetch := fetchFunc(func(context.Context, Format, models.Draft) ([]byte, error) {
		return []byte("x"), nil
	})
	dl := &fakeDownloader{err: errors.New("disk full")}
	n := &fakeNotifier{}
	r := NewRequester(filledHolder(), fetch, dl, WithNotifier(n))

	_, err := r.Export(context.Background(), FormatExcel)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, n.errors, 1)
}

func TestExport_SnapshotIgnoresLaterEdits(t *testing.T) {
	h := filledHolder()
	want := h.Snapshot()

	var got models.Draft
	fetch := fetchFunc(func(_ context.Context, _ Format, d models.Draft) ([]byte, error) {
		// Edits made while the request is pending.
		_, _ = h.SetScalar(models.FieldProjectName, "Renamed")
		_, _ = h.AppendListItem(models.FieldProjectMembers)

		body, err := json.Marshal(downloadRequest{FormData: d})
		if err != nil {
			return nil, err
		}
		var decoded downloadRequest
		if err := json.Unmarshal(body, &decoded); err != nil {
			return nil, err
		}
		got = decoded.FormData
		return []byte("ok"), nil
	})

	r := NewRequester(h, fetch, &fakeDownloader{})
	_, err := r.Export(context.Background(), FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, "Renamed", h.Snapshot().ProjectName)
}

func TestExport_InFlightGuard(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	var calls atomic.Int32
	fetch := fetchFunc(func(ctx context.Context, _ Format, _ models.Draft) ([]byte, error) {
		calls.Add(1)
		once.Do(func() { close(started) })
		<-release
		return []byte("ok"), nil
	})

	r := NewRequester(filledHolder(), fetch, &fakeDownloader{})

	done := make(chan error, 1)
	go func() {
		_, err := r.Export(context.Background(), FormatPDF)
		done <- err
	}()

	<-started
	assert.Equal(t, StateRequesting, r.State())

	_, err := r.Export(context.Background(), FormatExcel)
	assert.ErrorIs(t, err, ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, StateIdle, r.State())

	// Once idle again, the next export goes through.
	_, err = r.Export(context.Background(), FormatExcel)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestExport_Timeout(t *testing.T) {
	fetch := fetchFunc(func(ctx context.Context, _ Format, _ models.Draft) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	n := &fakeNotifier{}
	r := NewRequester(filledHolder(), fetch, &fakeDownloader{},
		WithTimeout(20*time.Millisecond), WithNotifier(n))

	_, err := r.Export(context.Background(), FormatPDF)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, n.errors, 1)
}

func TestExport_StateTransitions(t *testing.T) {
	var mu sync.Mutex
	var states []State
	hook := func(s State) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}

	ok := fetchFunc(func(context.Context, Format, models.Draft) ([]byte, error) { return []byte("ok"), nil })
	fail := fetchFunc(func(context.Context, Format, models.Draft) ([]byte, error) { return nil, errors.New("down") })

	r := NewRequester(filledHolder(), ok, &fakeDownloader{}, WithStateHook(hook))
	_, err := r.Export(context.Background(), FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, []State{StateRequesting, StateSucceeded, StateIdle}, states)

	states = nil
	r = NewRequester(filledHolder(), fail, &fakeDownloader{}, WithStateHook(hook))
	_, err = r.Export(context.Background(), FormatPDF)
	require.Error(t, err)
	assert.Equal(t, []State{StateRequesting, StateFailed, StateIdle}, states)
}

func TestExport_UnknownFormat(t *testing.T) {
	var calls int
	fetch := fetchFunc(func(context.Context, Format, models.Draft) ([]byte, error) {
		calls++
		return nil, nil
	})
	r := NewRequester(filledHolder(), fetch, &fakeDownloader{})

	_, err := r.Export(context.Background(), Format("Word"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Equal(t, 0, calls)
	assert.Equal(t, StateIdle, r.State())
}

func TestExport_StrictRejectsInvalidDraft(t *testing.T) {
	var calls int
	fetch := fetchFunc(func(context.Context, Format, models.Draft) ([]byte, error) {
		calls++
		return []byte("ok"), nil
	})
	n := &fakeNotifier{}
	rec := &fakeRecorder{}
	var states []State
	r := NewRequester(draft.NewHolder(draft.New()), fetch, &fakeDownloader{},
		WithStrict(true), WithNotifier(n), WithRecorder(rec),
		WithStateHook(func(s State) { states = append(states, s) }))

	_, err := r.Export(context.Background(), FormatPDF)
	var verr *draft.ValidationError
	require.ErrorAs(t, err, &verr)

	var exErr *Error
	assert.False(t, errors.As(err, &exErr), "a rejected draft is not a failed download")
	assert.Equal(t, 0, calls)
	assert.Empty(t, n.errors)
	assert.Empty(t, rec.records)
	assert.Empty(t, states)
	assert.Equal(t, StateIdle, r.State())
}

func TestExportDraft_UsesGivenSnapshot(t *testing.T) {
	var got models.Draft
	fetch := fetchFunc(func(_ context.Context, _ Format, d models.Draft) ([]byte, error) {
		got = d
		return []byte("ok"), nil
	})
	h := filledHolder()
	r := NewRequester(h, fetch, &fakeDownloader{})

	pinned := h.Snapshot()
	_, _ = h.SetScalar(models.FieldProjectName, "Edited later")

	_, err := r.ExportDraft(context.Background(), FormatPDF, pinned)
	require.NoError(t, err)
	assert.Equal(t, pinned, got)
	assert.NotEqual(t, "Edited later", got.ProjectName)
}

func TestExport_RecorderFailureDoesNotChangeOutcome(t *testing.T) {
	ok := fetchFunc(func(context.Context, Format, models.Draft) ([]byte, error) { return []byte("ok"), nil })
	rec := &fakeRecorder{err: errors.New("db locked")}
	r := NewRequester(filledHolder(), ok, &fakeDownloader{}, WithRecorder(rec))

	_, err := r.Export(context.Background(), FormatPDF)
	assert.NoError(t, err)
	assert.Len(t, rec.records, 1)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "requesting", StateRequesting.String())
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
