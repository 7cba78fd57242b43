package staging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"eventdesk/internal/adapters/spreadsheet"
	"eventdesk/internal/domain/participant"
)

// State is the stage of an import session.
type State int

// Session states
const (
	StateIdle State = iota
	StateImporting
	StateStaged
	StateCommitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateImporting:
		return "importing"
	case StateStaged:
		return "staged"
	case StateCommitting:
		return "committing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// DefaultPageSize is the page size Load requests.
const DefaultPageSize = 200

// Config configures a Session. Service is required; the rest have defaults.
type Config struct {
	EventID  int64
	Service  Service
	Notifier Notifier
	NewID    func() string // ids for manually added records, default uuid.NewString
	PageSize int           // Load page size, default DefaultPageSize
	SortKey  string        // Load sort key, default "id"
}

// CommitResult reports the outcome of a commit.
type CommitResult struct {
	Added        []participant.Participant
	SkippedCount int
}

// Session is one organizer's import workflow for an event.
//
// It holds the authoritative list of saved participants and the staging
// buffer of candidates awaiting confirmation. Service calls run outside the
// lock; at most one import or commit is in flight, and overlapping requests
// get ErrBusy. After Close, results of calls still in flight are dropped.
type Session struct {
	cfg Config

	mu           sync.Mutex
	state        State
	loading      bool
	deleting     int
	closed       bool
	participants []participant.Participant
	buffer       []participant.Participant
	validation   string
	importErr    string
	saveErr      string
}

// NewSession creates an idle session with an empty participant list.
// PRE: cfg.Service is non-nil
func NewSession(cfg Config) *Session {
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.SortKey == "" {
		cfg.SortKey = "id"
	}
	return &Session{cfg: cfg}
}

// Load replaces the participant list with every saved participant of the event.
// PRE: no commit or delete is in flight
// POST: On error the list is unchanged
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.state == StateCommitting || s.loading || s.deleting > 0 {
		s.mu.Unlock()
		return ErrBusy
	}
	s.loading = true
	s.mu.Unlock()

	all, err := s.fetchAll(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.closed {
		return ErrSessionClosed
	}
	if err != nil {
		return err
	}
	s.participants = all
	return nil
}

func (s *Session) fetchAll(ctx context.Context) ([]participant.Participant, error) {
	var all []participant.Participant
	for page := 0; ; page++ {
		p, err := s.cfg.Service.GetParticipantsByEventID(ctx, s.cfg.EventID, page, s.cfg.PageSize, s.cfg.SortKey)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Content...)
		if page+1 >= p.TotalPages || len(p.Content) == 0 {
			return all, nil
		}
	}
}

// ImportFile uploads a spreadsheet and stages the returned candidates.
// PRE: no import or commit is in flight
// POST: On success the candidates replace the staging buffer and the state is
// Staged (Idle when the file held no rows). A non-.xlsx file returns a
// *ValidationError without calling the service. A service failure sets
// ImportError and leaves the buffer and state as they were
func (s *Session) ImportFile(ctx context.Context, filename, contentType string, file io.Reader) error {
	s.mu.Lock()
	if err := s.checkIdle(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := spreadsheet.ValidateUpload(filename, contentType); err != nil {
		s.validation = err.Error()
		s.mu.Unlock()
		return &ValidationError{Err: err}
	}
	prev := s.state
	s.state = StateImporting
	s.validation, s.importErr = "", ""
	s.mu.Unlock()

	candidates, err := s.cfg.Service.ImportParticipants(ctx, s.cfg.EventID, filename, contentType, file)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err != nil {
		s.importErr = message(err, importFailure)
		s.state = prev
		s.mu.Unlock()
		slog.Info("staging_import_failed", "event_id", s.cfg.EventID, "file", filename, "error", err)
		return err
	}
	s.buffer = make([]participant.Participant, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == "" {
			c.ID = s.cfg.NewID()
		}
		s.buffer = append(s.buffer, c)
	}
	s.state = StateIdle
	if len(s.buffer) > 0 {
		s.state = StateStaged
	}
	n := len(s.buffer)
	s.mu.Unlock()

	if n == 0 {
		s.notify(LevelInfo, "No participants found in "+filename)
	}
	return nil
}

// Reconcile partitions the staging buffer against the saved participants.
// POST: Neither list is modified
func (s *Session) Reconcile() participant.ReconcileResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return participant.Reconcile(s.participants, s.buffer)
}

// Commit saves the staged candidates that are not duplicates.
// PRE: the session is Staged
// POST: On success the added records are appended to the participant list,
// the buffer is cleared and the state is Idle. On a false result or an error
// SaveError is set and the list, buffer and Staged state are unchanged.
// When every candidate is a duplicate no call is made and the buffer is cleared
func (s *Session) Commit(ctx context.Context) (CommitResult, error) {
	s.mu.Lock()
	if err := s.checkIdle(); err != nil {
		s.mu.Unlock()
		return CommitResult{}, err
	}
	if s.loading {
		s.mu.Unlock()
		return CommitResult{}, ErrBusy
	}
	if s.state != StateStaged || len(s.buffer) == 0 {
		s.mu.Unlock()
		return CommitResult{}, ErrNothingStaged
	}
	rec := participant.Reconcile(s.participants, s.buffer)
	result := CommitResult{Added: rec.Added, SkippedCount: rec.SkippedCount}
	if len(rec.Added) == 0 {
		s.buffer = nil
		s.state = StateIdle
		s.saveErr = ""
		s.mu.Unlock()
		s.reportCommit(result)
		return result, nil
	}
	s.state = StateCommitting
	s.saveErr = ""
	s.mu.Unlock()

	ok, err := s.cfg.Service.SaveParticipants(ctx, s.cfg.EventID, rec.Added)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return CommitResult{}, ErrSessionClosed
	}
	if err == nil && !ok {
		err = ErrSaveRejected
	}
	if err != nil {
		s.saveErr = message(err, ErrSaveRejected.Error())
		s.state = StateStaged
		s.mu.Unlock()
		slog.Info("staging_commit_failed", "event_id", s.cfg.EventID, "records", len(rec.Added), "error", err)
		return CommitResult{}, err
	}
	s.participants = append(s.participants, rec.Added...)
	s.buffer = nil
	s.state = StateIdle
	s.mu.Unlock()

	s.reportCommit(result)
	return result, nil
}

// AddManual saves one form-entered record unless it duplicates a saved participant.
// The staging buffer is not touched.
// PRE: no import or commit is in flight
// POST: A duplicate makes no service call and reports zero added. An invalid
// record returns a *ValidationError. On success the record is appended to the
// participant list
func (s *Session) AddManual(ctx context.Context, record participant.Participant) (CommitResult, error) {
	record.Normalize()
	if err := record.Validate(); err != nil {
		s.mu.Lock()
		s.validation = err.Error()
		s.mu.Unlock()
		return CommitResult{}, &ValidationError{Err: err}
	}

	s.mu.Lock()
	if err := s.checkIdle(); err != nil {
		s.mu.Unlock()
		return CommitResult{}, err
	}
	if s.loading {
		s.mu.Unlock()
		return CommitResult{}, ErrBusy
	}
	record.EventID = s.cfg.EventID
	rec := participant.Reconcile(s.participants, []participant.Participant{record})
	if len(rec.Added) == 0 {
		s.mu.Unlock()
		s.notify(LevelWarning, "0 new participants added")
		return CommitResult{SkippedCount: rec.SkippedCount}, nil
	}
	if rec.Added[0].ID == "" {
		rec.Added[0].ID = s.cfg.NewID()
	}
	prev := s.state
	s.state = StateCommitting
	s.validation, s.saveErr = "", ""
	s.mu.Unlock()

	ok, err := s.cfg.Service.SaveParticipants(ctx, s.cfg.EventID, rec.Added)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return CommitResult{}, ErrSessionClosed
	}
	s.state = prev
	if err == nil && !ok {
		err = ErrSaveRejected
	}
	if err != nil {
		s.saveErr = message(err, ErrSaveRejected.Error())
		s.mu.Unlock()
		return CommitResult{}, err
	}
	s.participants = append(s.participants, rec.Added...)
	s.mu.Unlock()

	result := CommitResult{Added: rec.Added}
	s.reportCommit(result)
	return result, nil
}

// RemoveStaged drops one candidate from the staging buffer.
// POST: The session returns to Idle once the buffer is empty
func (s *Session) RemoveStaged(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIdle(); err != nil {
		return err
	}
	i := slices.IndexFunc(s.buffer, func(p participant.Participant) bool { return p.ID == id })
	if i < 0 {
		return ErrNotStaged
	}
	s.buffer = slices.Delete(s.buffer, i, i+1)
	if len(s.buffer) == 0 {
		s.buffer = nil
		s.state = StateIdle
	}
	return nil
}

// Cancel discards the staging buffer.
// POST: Buffer empty, state Idle
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkIdle(); err != nil {
		return err
	}
	s.buffer = nil
	s.state = StateIdle
	s.saveErr = ""
	return nil
}

// DeleteParticipant deletes a saved participant on the server, then removes it
// from the local list.
// PRE: id is in the participant list and carries a server-assigned id; no Load is in flight
// POST: On error the list is unchanged
func (s *Session) DeleteParticipant(ctx context.Context, id string) error {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.loading {
		s.mu.Unlock()
		return ErrBusy
	}
	i := slices.IndexFunc(s.participants, func(p participant.Participant) bool { return p.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	pid, persisted := s.participants[i].PersistedID()
	if !persisted {
		s.mu.Unlock()
		return ErrNotPersisted
	}
	s.deleting++
	s.mu.Unlock()

	err := s.cfg.Service.DeleteParticipant(ctx, s.cfg.EventID, pid)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleting--
	if err != nil {
		return err
	}
	if s.closed {
		return ErrSessionClosed
	}
	s.participants = slices.DeleteFunc(s.participants, func(p participant.Participant) bool { return p.ID == id })
	return nil
}

// Reset clears the validation, import and save messages so the upload form
// starts fresh. Staged candidates are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validation, s.importErr, s.saveErr = "", "", ""
}

// Close ends the session. Calls in flight return ErrSessionClosed and their
// results are discarded; later calls fail with ErrSessionClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsImporting reports whether an import is in flight.
func (s *Session) IsImporting() bool {
	return s.State() == StateImporting
}

// IsSaving reports whether a commit or manual add is in flight.
func (s *Session) IsSaving() bool {
	return s.State() == StateCommitting
}

// Participants returns a copy of the saved participant list.
func (s *Session) Participants() []participant.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.participants)
}

// StagingBuffer returns a copy of the staged candidates.
func (s *Session) StagingBuffer() []participant.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.buffer)
}

// ValidationError returns the last client-side validation message, if any.
func (s *Session) ValidationError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validation
}

// ImportError returns the last import failure message, if any.
func (s *Session) ImportError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importErr
}

// SaveError returns the last save failure message, if any.
func (s *Session) SaveError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// checkOpen requires s.mu.
func (s *Session) checkOpen() error {
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// checkIdle requires s.mu. It rejects work while an import or commit is in flight.
func (s *Session) checkIdle() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.state == StateImporting || s.state == StateCommitting {
		return ErrBusy
	}
	return nil
}

func (s *Session) reportCommit(r CommitResult) {
	if len(r.Added) > 0 {
		s.notify(LevelSuccess, fmt.Sprintf("%d participant(s) added", len(r.Added)))
	} else {
		s.notify(LevelInfo, "0 new participants added")
	}
	if r.SkippedCount > 0 {
		s.notify(LevelWarning, fmt.Sprintf("%d duplicate participant(s) skipped", r.SkippedCount))
	}
}

func (s *Session) notify(level Level, msg string) {
	if s.cfg.Notifier != nil {
		s.cfg.Notifier.Notify(Notification{Level: level, Message: msg})
	}
}
