package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"greenballot/contexts/election-core/ballot-ledger/domain/entities"
	domainerrors "greenballot/contexts/election-core/ballot-ledger/domain/errors"
	"greenballot/contexts/election-core/ballot-ledger/ports"
)

func TestStoreAssignsDenseIDs(t *testing.T) {
	store := NewStore("admin-1")
	ctx := context.Background()

	for i, name := range []string{"Ada", "Bola", "Chike"} {
		candidate, err := store.AppendCandidate(ctx, entities.Candidate{Name: name, Party: "P", VoteCount: 42}, nil)
		if err != nil {
			t.Fatalf("append candidate failed: %v", err)
		}
		if candidate.ID != i+1 {
			t.Fatalf("expected dense id %d, got %d", i+1, candidate.ID)
		}
	}

	candidate, err := store.GetCandidate(ctx, 3)
	if err != nil {
		t.Fatalf("get candidate failed: %v", err)
	}
	if candidate.Name != "Chike" {
		t.Fatalf("candidate 3 mismatch: %+v", candidate)
	}
	if candidate.VoteCount != 0 {
		t.Fatalf("append must reset the tally, got %d", candidate.VoteCount)
	}

	session, err := store.AppendSession(ctx, entities.Session{Name: "General", Active: false, TotalVotes: 9}, nil)
	if err != nil {
		t.Fatalf("append session failed: %v", err)
	}
	if session.ID != 1 || !session.Active || session.TotalVotes != 0 || len(session.Voters) != 0 {
		t.Fatalf("append must normalize session state: %+v", session)
	}
}

func TestStoreApplyVoteCommitsAllThreeMutations(t *testing.T) {
	store := NewStore("admin-1")
	ctx := context.Background()

	if _, err := store.AppendCandidate(ctx, entities.Candidate{Name: "Ada", Party: "P"}, nil); err != nil {
		t.Fatalf("append candidate failed: %v", err)
	}
	if _, err := store.AppendSession(ctx, entities.Session{Name: "General"}, nil); err != nil {
		t.Fatalf("append session failed: %v", err)
	}
	if err := store.PutVoter(ctx, entities.Voter{Principal: "voter-1", Name: "Alice", Registered: true}, nil); err != nil {
		t.Fatalf("put voter failed: %v", err)
	}

	if err := store.ApplyVote(ctx, "voter-1", 1, 1, nil); err != nil {
		t.Fatalf("apply vote failed: %v", err)
	}

	candidate, _ := store.GetCandidate(ctx, 1)
	if candidate.VoteCount != 1 {
		t.Fatalf("expected tally 1, got %d", candidate.VoteCount)
	}
	voter, ok, _ := store.GetVoter(ctx, "voter-1")
	if !ok || !voter.HasVoted || voter.VotedCandidateID != 1 {
		t.Fatalf("voter state mismatch: %+v", voter)
	}
	session, _ := store.GetSession(ctx, 1)
	if session.TotalVotes != 1 || len(session.Voters) != 1 || session.Voters[0] != "voter-1" {
		t.Fatalf("session state mismatch: %+v", session)
	}
	total, _ := store.TotalVotes(ctx)
	if total != 1 {
		t.Fatalf("expected total votes 1, got %d", total)
	}

	if err := store.ApplyVote(ctx, "voter-1", 1, 1, nil); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected double vote rejection, got %v", err)
	}
	if err := store.ApplyVote(ctx, "ghost", 1, 1, nil); !errors.Is(err, domainerrors.ErrVoterNotRegistered) {
		t.Fatalf("expected unknown voter rejection, got %v", err)
	}
}

func TestStoreMutationsCommitAuditRowInSameStep(t *testing.T) {
	store := NewStore("admin-1")
	ctx := context.Background()

	candidateAudit := &ports.EventEnvelope{
		EventID:   "ev-candidate",
		EventType: "CandidateRegistered",
		EntityID:  "candidate-1",
	}
	if _, err := store.AppendCandidate(ctx, entities.Candidate{Name: "Ada", Party: "P"}, candidateAudit); err != nil {
		t.Fatalf("append candidate failed: %v", err)
	}

	pending, err := store.ListPendingAudit(ctx, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 1 || pending[0].AuditID != "ev-candidate" {
		t.Fatalf("expected candidate audit row, got %+v", pending)
	}
}

func TestStoreMutationRollsBackWhenAuditCannotBeRecorded(t *testing.T) {
	store := NewStore("admin-1")
	ctx := context.Background()

	if _, err := store.AppendCandidate(ctx, entities.Candidate{Name: "Ada", Party: "P"}, nil); err != nil {
		t.Fatalf("append candidate failed: %v", err)
	}
	if _, err := store.AppendSession(ctx, entities.Session{Name: "General"}, nil); err != nil {
		t.Fatalf("append session failed: %v", err)
	}
	if err := store.PutVoter(ctx, entities.Voter{Principal: "voter-1", Registered: true}, nil); err != nil {
		t.Fatalf("put voter failed: %v", err)
	}

	// A channel cannot be marshaled, so recording this envelope must fail
	// before any of the three vote mutations become visible.
	badAudit := &ports.EventEnvelope{
		EventID:   "ev-vote",
		EventType: "VoteCasted",
		EntityID:  "voter-1",
		Data:      map[string]any{"bad": make(chan int)},
	}
	if err := store.ApplyVote(ctx, "voter-1", 1, 1, badAudit); err == nil {
		t.Fatalf("expected apply vote to fail when the audit row cannot be recorded")
	}

	candidate, _ := store.GetCandidate(ctx, 1)
	if candidate.VoteCount != 0 {
		t.Fatalf("failed commit must not change tallies, got %d", candidate.VoteCount)
	}
	voter, _, _ := store.GetVoter(ctx, "voter-1")
	if voter.HasVoted {
		t.Fatalf("failed commit must not mark the voter: %+v", voter)
	}
	session, _ := store.GetSession(ctx, 1)
	if session.TotalVotes != 0 || len(session.Voters) != 0 {
		t.Fatalf("failed commit must not touch the roster: %+v", session)
	}
	pending, _ := store.ListPendingAudit(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("failed commit must not leave audit rows, got %d", len(pending))
	}

	// The ledger stays usable: the same vote with a recordable envelope lands.
	if err := store.ApplyVote(ctx, "voter-1", 1, 1, &ports.EventEnvelope{
		EventID:   "ev-vote",
		EventType: "VoteCasted",
		EntityID:  "voter-1",
	}); err != nil {
		t.Fatalf("apply vote failed: %v", err)
	}
	candidate, _ = store.GetCandidate(ctx, 1)
	if candidate.VoteCount != 1 {
		t.Fatalf("expected tally 1 after clean commit, got %d", candidate.VoteCount)
	}
	pending, _ = store.ListPendingAudit(ctx, 10)
	if len(pending) != 1 {
		t.Fatalf("expected one audit row after clean commit, got %d", len(pending))
	}
}

func TestStoreGetSessionReturnsDetachedRoster(t *testing.T) {
	store := NewStore("admin-1")
	ctx := context.Background()

	if _, err := store.AppendCandidate(ctx, entities.Candidate{Name: "Ada", Party: "P"}, nil); err != nil {
		t.Fatalf("append candidate failed: %v", err)
	}
	if _, err := store.AppendSession(ctx, entities.Session{Name: "General"}, nil); err != nil {
		t.Fatalf("append session failed: %v", err)
	}
	if err := store.PutVoter(ctx, entities.Voter{Principal: "voter-1", Registered: true}, nil); err != nil {
		t.Fatalf("put voter failed: %v", err)
	}
	if err := store.ApplyVote(ctx, "voter-1", 1, 1, nil); err != nil {
		t.Fatalf("apply vote failed: %v", err)
	}

	session, err := store.GetSession(ctx, 1)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	session.Voters[0] = "tampered"

	fresh, err := store.GetSession(ctx, 1)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if fresh.Voters[0] != "voter-1" {
		t.Fatalf("caller mutation leaked into the store: %+v", fresh)
	}
}

func TestStoreAuditPendingOrderAndPublish(t *testing.T) {
	store := NewStore("admin-1")
	ctx := context.Background()

	for _, eventID := range []string{"ev-1", "ev-2", "ev-3"} {
		if err := store.AppendAudit(ctx, ports.EventEnvelope{
			EventID:    eventID,
			EventType:  "VoteCasted",
			EntityID:   "voter-1",
			OccurredAt: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("append audit failed: %v", err)
		}
	}

	pending, err := store.ListPendingAudit(ctx, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending rows, got %d", len(pending))
	}
	for i, want := range []string{"ev-1", "ev-2", "ev-3"} {
		if pending[i].AuditID != want {
			t.Fatalf("pending order mismatch at %d: got %s want %s", i, pending[i].AuditID, want)
		}
	}

	if err := store.MarkAuditPublished(ctx, "ev-2", time.Now().UTC()); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	pending, err = store.ListPendingAudit(ctx, 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 2 || pending[0].AuditID != "ev-1" || pending[1].AuditID != "ev-3" {
		t.Fatalf("pending after publish mismatch: %+v", pending)
	}

	limited, err := store.ListPendingAudit(ctx, 1)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(limited) != 1 || limited[0].AuditID != "ev-1" {
		t.Fatalf("limit must keep oldest rows first: %+v", limited)
	}
}
