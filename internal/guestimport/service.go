package guestimport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/idoblueprint/guestlist/internal/store"
)

// Options tunes the import service. Zero values fall back to defaults.
type Options struct {
	// Timeout caps a single import run (default 5m).
	Timeout time.Duration

	// HistoryLimit is how many completed results to retain (default 25).
	HistoryLimit int
}

const (
	defaultTimeout      = 5 * time.Minute
	defaultHistoryLimit = 25
)

// Service orchestrates the import pipeline against a guest store. One
// import mutates the store per run; concurrent imports against the same
// couple are not guarded and would race on the existing-guest snapshot.
type Service struct {
	store store.GuestStore
	opts  Options

	mu      sync.RWMutex
	runs    map[string]*activeImport
	history []ImportResult
}

type activeImport struct {
	ID       string
	FileName string
	Done     chan struct{}
	Result   *ImportResult

	progressMu sync.Mutex
	progress   ImportProgress
	listeners  []chan ImportProgress
}

// NewService creates an import service backed by the given store.
func NewService(st store.GuestStore, opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	return &Service{
		store: st,
		opts:  opts,
		runs:  make(map[string]*activeImport),
	}
}

// Preview parses a file and infers mappings without touching the store.
// Used by the preview endpoint so the user can inspect headers, mappings,
// and validation findings before committing.
func (s *Service) Preview(fileName string, data []byte) (*ImportPreview, []ColumnMapping, ImportValidationResult, error) {
	preview, err := ParsePreview(fileName, data)
	if err != nil {
		return nil, nil, ImportValidationResult{}, err
	}
	mappings := InferMappings(preview.Headers)
	validation := ValidateImport(preview, mappings)
	return preview, mappings, validation, nil
}

// Run executes the whole pipeline synchronously: parse, map, validate,
// convert, snapshot the existing list, reconcile. The returned result is
// populated even on failure; the error carries the typed cause.
func (s *Service) Run(ctx context.Context, coupleID uuid.UUID, fileName string, data []byte, mode ImportMode, mappings []ColumnMapping) (*ImportResult, error) {
	result := &ImportResult{
		ID:        uuid.New().String(),
		FileName:  fileName,
		Mode:      mode,
		StartedAt: time.Now().UTC(),
	}

	err := s.run(ctx, coupleID, data, mode, mappings, result, nil)
	result.Duration = time.Since(result.StartedAt)
	if err != nil {
		result.Error = err.Error()
	}
	s.remember(*result)
	return result, err
}

// Start begins an asynchronous import and returns its id immediately.
// Use SubscribeProgress for phase updates and Result to wait for the
// outcome. The run is bounded by the service timeout; there is no
// user-facing cancel once it starts.
func (s *Service) Start(coupleID uuid.UUID, fileName string, data []byte, mode ImportMode, mappings []ColumnMapping) string {
	id := uuid.New().String()
	run := &activeImport{
		ID:       id,
		FileName: fileName,
		Done:     make(chan struct{}),
		progress: ImportProgress{ID: id, FileName: fileName, Phase: PhaseStarting},
	}

	s.mu.Lock()
	s.runs[id] = run
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.Timeout)
		defer cancel()
		defer func() {
			run.closeListeners()
			close(run.Done)
			s.cleanup(id, 5*time.Minute)
		}()

		result := &ImportResult{
			ID:        id,
			FileName:  fileName,
			Mode:      mode,
			StartedAt: time.Now().UTC(),
		}
		err := s.run(ctx, coupleID, data, mode, mappings, result, run)
		result.Duration = time.Since(result.StartedAt)

		if err != nil {
			result.Error = err.Error()
			run.setPhase(PhaseFailed, err.Error())
		} else {
			run.setPhase(PhaseComplete, "")
		}
		run.Result = result
		s.remember(*result)
	}()

	return id
}

// run is the shared pipeline body. progress is nil for synchronous runs.
func (s *Service) run(ctx context.Context, coupleID uuid.UUID, data []byte, mode ImportMode, mappings []ColumnMapping, result *ImportResult, run *activeImport) error {
	if coupleID == uuid.Nil {
		return ErrTenantMissing
	}

	run.setPhase(PhaseParsing, "")
	preview, err := ParsePreview(result.FileName, data)
	if err != nil {
		return err
	}
	result.TotalRows = preview.TotalRows
	run.setTotalRows(preview.TotalRows)

	if mappings == nil {
		mappings = InferMappings(preview.Headers)
	}

	run.setPhase(PhaseValidating, "")
	result.Validation = ValidateImport(preview, mappings)
	if !result.Validation.IsValid {
		return &ValidationError{Result: result.Validation}
	}

	newGuests := ConvertToGuests(preview, mappings, coupleID)

	// Snapshot once; reconciliation never re-fetches mid-run.
	existing, err := s.store.Guests(ctx, coupleID)
	if err != nil {
		return &RepositoryError{Op: "snapshot", Err: err}
	}

	run.setPhase(PhaseReconciling, "")
	stats, err := Reconcile(ctx, s.store, newGuests, existing, mode)
	result.Stats = stats
	return err
}

// SubscribeProgress returns a channel of progress updates for a running
// import. The channel closes when the run finishes.
func (s *Service) SubscribeProgress(id string) (<-chan ImportProgress, error) {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, id)
	}

	ch := make(chan ImportProgress, 10)
	run.progressMu.Lock()
	run.listeners = append(run.listeners, ch)
	select {
	case ch <- run.progress:
	default:
	}
	run.progressMu.Unlock()
	return ch, nil
}

// Progress returns the current progress snapshot without blocking.
func (s *Service) Progress(id string) (ImportProgress, error) {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return ImportProgress{}, fmt.Errorf("%w: %s", ErrImportNotFound, id)
	}

	run.progressMu.Lock()
	defer run.progressMu.Unlock()
	return run.progress, nil
}

// Result blocks until the run completes and returns its outcome.
func (s *Service) Result(id string) (*ImportResult, error) {
	s.mu.RLock()
	run, ok := s.runs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrImportNotFound, id)
	}

	<-run.Done
	return run.Result, nil
}

// History returns recent import results, newest first.
func (s *Service) History() []ImportResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ImportResult, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Service) remember(r ImportResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append([]ImportResult{r}, s.history...)
	if len(s.history) > s.opts.HistoryLimit {
		s.history = s.history[:s.opts.HistoryLimit]
	}
}

// cleanup drops the run from tracking after a delay so late result polls
// still succeed.
func (s *Service) cleanup(id string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.runs, id)
		s.mu.Unlock()
	})
}

func (run *activeImport) setPhase(phase ImportPhase, errMsg string) {
	if run == nil {
		return
	}
	run.progressMu.Lock()
	run.progress.Phase = phase
	run.progress.Error = errMsg
	run.notifyLocked()
	run.progressMu.Unlock()
}

func (run *activeImport) setTotalRows(n int) {
	if run == nil {
		return
	}
	run.progressMu.Lock()
	run.progress.TotalRows = n
	run.notifyLocked()
	run.progressMu.Unlock()
}

// notifyLocked fans the current progress out to listeners; slow listeners
// miss intermediate updates rather than blocking the run.
func (run *activeImport) notifyLocked() {
	for _, ch := range run.listeners {
		select {
		case ch <- run.progress:
		default:
		}
	}
}

func (run *activeImport) closeListeners() {
	run.progressMu.Lock()
	defer run.progressMu.Unlock()
	for _, ch := range run.listeners {
		close(ch)
	}
	run.listeners = nil
}
