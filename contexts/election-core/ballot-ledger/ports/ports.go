package ports

import (
	"context"
	"time"

	"greenballot/contexts/election-core/ballot-ledger/domain/entities"
)

// BallotRepository is the storage port for the four registries. Every
// mutating method takes the audit envelope for the operation and persists it
// in the same commit as the state change: either both are visible afterwards
// or neither is. A nil envelope commits the mutation alone. Validation
// ordering lives in the application layer, which linearizes all mutating
// calls, so the dense ids the envelope references match what the repository
// allocates.
type BallotRepository interface {
	SystemState(ctx context.Context) (entities.SystemState, error)
	SetSystemActive(ctx context.Context, active bool, audit *EventEnvelope) error

	CandidateCount(ctx context.Context) (int, error)
	GetCandidate(ctx context.Context, id int) (entities.Candidate, error)
	ListCandidates(ctx context.Context) ([]entities.Candidate, error)
	AppendCandidate(ctx context.Context, candidate entities.Candidate, audit *EventEnvelope) (entities.Candidate, error)

	VoterCount(ctx context.Context) (int, error)
	GetVoter(ctx context.Context, principal string) (entities.Voter, bool, error)
	PutVoter(ctx context.Context, voter entities.Voter, audit *EventEnvelope) error
	DeleteVoter(ctx context.Context, principal string, audit *EventEnvelope) error

	SessionCount(ctx context.Context) (int, error)
	GetSession(ctx context.Context, id int) (entities.Session, error)
	AppendSession(ctx context.Context, session entities.Session, audit *EventEnvelope) (entities.Session, error)
	SetSessionActive(ctx context.Context, id int, active bool) error

	// ApplyVote increments the candidate tally, marks the voter as having
	// voted for candidateID, appends the principal to the session roster,
	// and records the audit row as one atomic unit.
	ApplyVote(ctx context.Context, principal string, candidateID int, sessionID int, audit *EventEnvelope) error

	TotalVotes(ctx context.Context) (int, error)
}

// EventEnvelope is the audit event shape appended on every committed
// mutation.
type EventEnvelope struct {
	EventID    string         `json:"event_id"`
	EventType  string         `json:"event_type"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data"`
}

type AuditMessage struct {
	AuditID   string
	EventType string
	EntityID  string
	Payload   []byte
	CreatedAt time.Time
}

// AuditLog is the append-only audit outbox written in the same commit scope
// as the state mutation and drained by the relay worker.
type AuditLog interface {
	AppendAudit(ctx context.Context, envelope EventEnvelope) error
	ListPendingAudit(ctx context.Context, limit int) ([]AuditMessage, error)
	MarkAuditPublished(ctx context.Context, auditID string, publishedAt time.Time) error
}

// Publisher delivers relayed audit messages to the event bus.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
