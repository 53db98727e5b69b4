package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"greenballot/contexts/election-core/ballot-ledger/domain/entities"
	domainerrors "greenballot/contexts/election-core/ballot-ledger/domain/errors"
	"greenballot/contexts/election-core/ballot-ledger/ports"
	"greenballot/internal/shared/events"

	"github.com/google/uuid"
)

type auditRecord struct {
	message   ports.AuditMessage
	published bool
	seq       int
}

// Store is the canonical in-memory ledger: candidate and session arenas are
// append-only slices indexed by id-1, voters are keyed by principal. One
// RWMutex guards all four registries so every write commits as a unit.
type Store struct {
	mu sync.RWMutex

	system     entities.SystemState
	candidates []entities.Candidate
	voters     map[string]entities.Voter
	sessions   []entities.Session

	audit    map[string]auditRecord
	auditSeq int
}

func NewStore(admin string) *Store {
	return &Store{
		system: entities.SystemState{Admin: admin, Active: true},
		voters: make(map[string]entities.Voter),
		audit:  make(map[string]auditRecord),
	}
}

func (s *Store) SystemState(_ context.Context) (entities.SystemState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.system, nil
}

func (s *Store) SetSystemActive(_ context.Context, active bool, audit *ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.buildAuditRecord(audit)
	if err != nil {
		return err
	}
	s.system.Active = active
	s.commitAuditRecord(record)
	return nil
}

func (s *Store) CandidateCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates), nil
}

func (s *Store) GetCandidate(_ context.Context, id int) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 1 || id > len(s.candidates) {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidateID
	}
	return cloneCandidate(s.candidates[id-1]), nil
}

func (s *Store) ListCandidates(_ context.Context) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		items = append(items, cloneCandidate(candidate))
	}
	return items, nil
}

func (s *Store) AppendCandidate(_ context.Context, candidate entities.Candidate, audit *ports.EventEnvelope) (entities.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.buildAuditRecord(audit)
	if err != nil {
		return entities.Candidate{}, err
	}
	candidate.ID = len(s.candidates) + 1
	candidate.VoteCount = 0
	s.candidates = append(s.candidates, candidate)
	s.commitAuditRecord(record)
	return candidate, nil
}

func (s *Store) VoterCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.voters), nil
}

func (s *Store) GetVoter(_ context.Context, principal string) (entities.Voter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voter, ok := s.voters[principal]
	if !ok {
		return entities.Voter{}, false, nil
	}
	return voter, true, nil
}

func (s *Store) PutVoter(_ context.Context, voter entities.Voter, audit *ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.buildAuditRecord(audit)
	if err != nil {
		return err
	}
	s.voters[voter.Principal] = voter
	s.commitAuditRecord(record)
	return nil
}

func (s *Store) DeleteVoter(_ context.Context, principal string, audit *ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.voters[principal]; !ok {
		return domainerrors.ErrVoterNotRegistered
	}
	record, err := s.buildAuditRecord(audit)
	if err != nil {
		return err
	}
	delete(s.voters, principal)
	s.commitAuditRecord(record)
	return nil
}

func (s *Store) SessionCount(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

func (s *Store) GetSession(_ context.Context, id int) (entities.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 1 || id > len(s.sessions) {
		return entities.Session{}, domainerrors.ErrInvalidSessionID
	}
	return cloneSession(s.sessions[id-1]), nil
}

func (s *Store) AppendSession(_ context.Context, session entities.Session, audit *ports.EventEnvelope) (entities.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.buildAuditRecord(audit)
	if err != nil {
		return entities.Session{}, err
	}
	session.ID = len(s.sessions) + 1
	session.Active = true
	session.Voters = nil
	session.TotalVotes = 0
	s.sessions = append(s.sessions, session)
	s.commitAuditRecord(record)
	return cloneSession(session), nil
}

func (s *Store) SetSessionActive(_ context.Context, id int, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > len(s.sessions) {
		return domainerrors.ErrInvalidSessionID
	}
	s.sessions[id-1].Active = active
	return nil
}

func (s *Store) ApplyVote(_ context.Context, principal string, candidateID int, sessionID int, audit *ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if candidateID < 1 || candidateID > len(s.candidates) {
		return domainerrors.ErrInvalidCandidateID
	}
	if sessionID < 1 || sessionID > len(s.sessions) {
		return domainerrors.ErrInvalidSessionID
	}
	voter, ok := s.voters[principal]
	if !ok {
		return domainerrors.ErrVoterNotRegistered
	}
	if voter.HasVoted {
		return domainerrors.ErrAlreadyVoted
	}
	record, err := s.buildAuditRecord(audit)
	if err != nil {
		return err
	}

	s.candidates[candidateID-1].VoteCount++
	voter.HasVoted = true
	voter.VotedCandidateID = candidateID
	s.voters[principal] = voter
	session := &s.sessions[sessionID-1]
	session.Voters = append(session.Voters, principal)
	session.TotalVotes = len(session.Voters)
	s.commitAuditRecord(record)
	return nil
}

func (s *Store) TotalVotes(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, candidate := range s.candidates {
		total += candidate.VoteCount
	}
	return total, nil
}

func (s *Store) AppendAudit(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.buildAuditRecord(&envelope)
	if err != nil {
		return err
	}
	s.commitAuditRecord(record)
	return nil
}

// buildAuditRecord resolves defaults and marshals the wire payload without
// touching store state, so mutating methods can fail before committing
// anything. Call with the write lock held.
func (s *Store) buildAuditRecord(envelope *ports.EventEnvelope) (*auditRecord, error) {
	if envelope == nil {
		return nil, nil
	}
	auditID := envelope.EventID
	if auditID == "" {
		auditID = uuid.NewString()
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	payload, err := json.Marshal(events.Envelope{
		EventID:       auditID,
		EventType:     envelope.EventType,
		SourceService: events.SourceBallotLedger,
		OccurredAtUTC: createdAt,
		EntityType:    envelope.EntityType,
		EntityID:      envelope.EntityID,
		Payload:       envelope.Data,
	})
	if err != nil {
		return nil, err
	}
	return &auditRecord{
		message: ports.AuditMessage{
			AuditID:   auditID,
			EventType: envelope.EventType,
			EntityID:  envelope.EntityID,
			Payload:   payload,
			CreatedAt: createdAt,
		},
	}, nil
}

func (s *Store) commitAuditRecord(record *auditRecord) {
	if record == nil {
		return
	}
	s.auditSeq++
	record.seq = s.auditSeq
	s.audit[record.message.AuditID] = *record
}

func (s *Store) ListPendingAudit(_ context.Context, limit int) ([]ports.AuditMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	type pending struct {
		message ports.AuditMessage
		seq     int
	}
	rows := make([]pending, 0, len(s.audit))
	for _, row := range s.audit {
		if row.published {
			continue
		}
		rows = append(rows, pending{message: row.message, seq: row.seq})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].seq < rows[j].seq
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	items := make([]ports.AuditMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkAuditPublished(_ context.Context, auditID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.audit[auditID]
	if !ok {
		return nil
	}
	row.published = true
	s.audit[auditID] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneCandidate(candidate entities.Candidate) entities.Candidate {
	return candidate
}

func cloneSession(session entities.Session) entities.Session {
	copied := session
	copied.Voters = append([]string(nil), session.Voters...)
	return copied
}
