package orchestrators

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	"eventdesk/internal/adapters/email"
	participantStore "eventdesk/internal/adapters/storage/participant"
	"eventdesk/internal/domain/account"
	"eventdesk/internal/domain/attendance"
	"eventdesk/internal/domain/event"
	"eventdesk/internal/domain/participant"
)

// mockEventStore is an in-memory event store.
type mockEventStore struct {
	events map[int64]event.Event
	nextID int64
}

func newMockEventStore(evs ...event.Event) *mockEventStore {
	s := &mockEventStore{events: map[int64]event.Event{}, nextID: 1}
	for _, e := range evs {
		s.events[e.ID] = e
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	return s
}

// GetByID returns a wrapped sql.ErrNoRows for unknown ids, like the SQLite store.
func (m *mockEventStore) GetByID(_ context.Context, id int64) (event.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return event.Event{}, fmt.Errorf("event not found: %w", sql.ErrNoRows)
	}
	return e, nil
}

func (m *mockEventStore) Create(_ context.Context, e event.Event) (int64, error) {
	e.ID = m.nextID
	m.nextID++
	m.events[e.ID] = e
	return e.ID, nil
}

func (m *mockEventStore) Update(_ context.Context, e event.Event) error {
	if _, ok := m.events[e.ID]; !ok {
		return fmt.Errorf("event not found: %w", sql.ErrNoRows)
	}
	m.events[e.ID] = e
	return nil
}

// mockParticipantStore is an in-memory participant store enforcing key uniqueness.
type mockParticipantStore struct {
	byEvent     map[int64][]participant.Participant
	nextID      int64
	insertCalls int
	insertErr   error
}

func newMockParticipantStore() *mockParticipantStore {
	return &mockParticipantStore{byEvent: map[int64][]participant.Participant{}, nextID: 1}
}

// seed stores records directly and returns them with ids assigned.
func (m *mockParticipantStore) seed(eventID int64, ps ...participant.Participant) []participant.Participant {
	out := make([]participant.Participant, 0, len(ps))
	for _, p := range ps {
		p.ID = strconv.FormatInt(m.nextID, 10)
		p.EventID = eventID
		m.nextID++
		m.byEvent[eventID] = append(m.byEvent[eventID], p)
		out = append(out, p)
	}
	return out
}

func (m *mockParticipantStore) ListAllByEvent(_ context.Context, eventID int64) ([]participant.Participant, error) {
	return append([]participant.Participant(nil), m.byEvent[eventID]...), nil
}

func (m *mockParticipantStore) InsertBatch(_ context.Context, eventID int64, records []participant.Participant) ([]participant.Participant, error) {
	m.insertCalls++
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	if rec := participant.Reconcile(m.byEvent[eventID], records); rec.SkippedCount > 0 {
		return nil, participantStore.ErrDuplicate
	}
	return m.seed(eventID, records...), nil
}

func (m *mockParticipantStore) GetByID(_ context.Context, eventID, id int64) (participant.Participant, error) {
	for _, p := range m.byEvent[eventID] {
		if pid, _ := p.PersistedID(); pid == id {
			return p, nil
		}
	}
	return participant.Participant{}, fmt.Errorf("participant not found: %w", sql.ErrNoRows)
}

func (m *mockParticipantStore) GetByCheckInCode(_ context.Context, code string) (participant.Participant, error) {
	for _, ps := range m.byEvent {
		for _, p := range ps {
			if p.CheckInCode == code {
				return p, nil
			}
		}
	}
	return participant.Participant{}, fmt.Errorf("participant not found: %w", sql.ErrNoRows)
}

func (m *mockParticipantStore) Delete(_ context.Context, eventID, id int64) error {
	ps := m.byEvent[eventID]
	for i, p := range ps {
		if pid, _ := p.PersistedID(); pid == id {
			m.byEvent[eventID] = append(ps[:i:i], ps[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("participant not found: %w", sql.ErrNoRows)
}

// mockAttendanceStore records check-ins keyed by event and participant.
type mockAttendanceStore struct {
	records map[[2]int64]attendance.Attendance
}

func newMockAttendanceStore() *mockAttendanceStore {
	return &mockAttendanceStore{records: map[[2]int64]attendance.Attendance{}}
}

func (m *mockAttendanceStore) Create(_ context.Context, a attendance.Attendance) error {
	key := [2]int64{a.EventID, a.ParticipantID}
	if _, ok := m.records[key]; ok {
		return attendance.ErrAlreadyCheckedIn
	}
	m.records[key] = a
	return nil
}

// mockAccountStore is an in-memory account store keyed by email.
type mockAccountStore struct {
	byEmail map[string]account.Account
	saves   int
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{byEmail: map[string]account.Account{}}
}

func (m *mockAccountStore) GetByEmail(_ context.Context, e string) (account.Account, error) {
	a, ok := m.byEmail[e]
	if !ok {
		return account.Account{}, fmt.Errorf("account not found: %w", sql.ErrNoRows)
	}
	return a, nil
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	m.saves++
	m.byEmail[a.Email] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.byEmail), nil
}

// mockSender captures ticket mail.
type mockSender struct {
	mu   sync.Mutex
	sent []email.SendRequest
	err  error
}

func (m *mockSender) Send(ctx context.Context, req email.SendRequest) (email.SendResult, error) {
	res, err := m.SendBatch(ctx, []email.SendRequest{req})
	if err != nil {
		return email.SendResult{}, err
	}
	return res[0], nil
}

func (m *mockSender) SendBatch(_ context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, reqs...)
	return make([]email.SendResult, len(reqs)), nil
}

// seqID returns a generator producing prefix-1, prefix-2, ...
func seqID(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
