package commands

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	application "greenballot/contexts/election-core/ballot-ledger/application"
	"greenballot/contexts/election-core/ballot-ledger/domain/entities"
	domainerrors "greenballot/contexts/election-core/ballot-ledger/domain/errors"
	"greenballot/contexts/election-core/ballot-ledger/ports"
)

// RegisterCandidateCommand is the write-model input for candidate creation.
type RegisterCandidateCommand struct {
	Name     string
	Party    string
	Platform string
}

// RegisterVoterCommand is the write-model input for voter self-registration.
type RegisterVoterCommand struct {
	Name        string
	Nationality string
	Age         int
	LGA         string
}

// CreateSessionCommand is the write-model input for session creation.
type CreateSessionCommand struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
}

// BallotUseCase orchestrates every mutating ledger operation. All writes are
// linearized behind one mutex: each operation runs its ordered validation
// chain against committed state, then applies the mutation and its audit
// event through a single repository call that commits both or neither. A
// failure at any point leaves the ledger untouched.
type BallotUseCase struct {
	mu sync.Mutex

	Ledger ports.BallotRepository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// RegisterCandidate is admin-only. Platform text is deliberately not
// validated for emptiness.
func (uc *BallotUseCase) RegisterCandidate(ctx context.Context, caller string, cmd RegisterCandidateCommand) (entities.Candidate, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	logger := application.ResolveLogger(uc.Logger)

	if err := uc.authorize(ctx, caller); err != nil {
		logger.Warn("candidate registration rejected",
			"event", "ballot_candidate_register_rejected",
			"module", "election-core/ballot-ledger",
			"layer", "application",
			"caller", caller,
			"error", err.Error(),
		)
		return entities.Candidate{}, err
	}
	if cmd.Name == "" {
		return entities.Candidate{}, domainerrors.ErrEmptyCandidateName
	}
	if cmd.Party == "" {
		return entities.Candidate{}, domainerrors.ErrEmptyPartyName
	}

	// The mutex makes the next dense id predictable, so the envelope can
	// reference it before the repository allocates it.
	count, err := uc.Ledger.CandidateCount(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	nextID := count + 1
	envelope, err := uc.auditEnvelope(ctx, EventCandidateRegistered, candidateEntityID(nextID), map[string]any{
		"candidate_id": nextID,
		"name":         cmd.Name,
		"party":        cmd.Party,
	})
	if err != nil {
		return entities.Candidate{}, err
	}
	candidate, err := uc.Ledger.AppendCandidate(ctx, entities.Candidate{
		Name:     cmd.Name,
		Party:    cmd.Party,
		Platform: cmd.Platform,
	}, envelope)
	if err != nil {
		return entities.Candidate{}, err
	}
	logger.Info("candidate registered",
		"event", "ballot_candidate_registered",
		"module", "election-core/ballot-ledger",
		"layer", "application",
		"candidate_id", candidate.ID,
		"party", candidate.Party,
	)
	return candidate, nil
}

// RegisterVoter creates the caller's voter record. One record per principal;
// a registration while the system is inactive fails before any field check.
func (uc *BallotUseCase) RegisterVoter(ctx context.Context, caller string, cmd RegisterVoterCommand) (entities.Voter, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	logger := application.ResolveLogger(uc.Logger)

	if err := uc.requireSystemActive(ctx); err != nil {
		return entities.Voter{}, err
	}
	if cmd.Name == "" {
		return entities.Voter{}, domainerrors.ErrEmptyVoterName
	}
	if cmd.Nationality == "" {
		return entities.Voter{}, domainerrors.ErrEmptyNationality
	}
	if cmd.LGA == "" {
		return entities.Voter{}, domainerrors.ErrEmptyLGA
	}
	if cmd.Age < 18 {
		return entities.Voter{}, domainerrors.ErrVoterUnderage
	}
	if _, exists, err := uc.Ledger.GetVoter(ctx, caller); err != nil {
		return entities.Voter{}, err
	} else if exists {
		logger.Warn("duplicate voter registration rejected",
			"event", "ballot_voter_register_duplicate",
			"module", "election-core/ballot-ledger",
			"layer", "application",
			"principal", caller,
		)
		return entities.Voter{}, domainerrors.ErrVoterAlreadyRegistered
	}

	voter := entities.Voter{
		Principal:   caller,
		Name:        cmd.Name,
		Nationality: cmd.Nationality,
		Age:         cmd.Age,
		LGA:         cmd.LGA,
		Registered:  true,
	}
	envelope, err := uc.auditEnvelope(ctx, EventVoterRegistered, caller, map[string]any{
		"principal":   caller,
		"name":        voter.Name,
		"nationality": voter.Nationality,
	})
	if err != nil {
		return entities.Voter{}, err
	}
	if err := uc.Ledger.PutVoter(ctx, voter, envelope); err != nil {
		return entities.Voter{}, err
	}
	logger.Info("voter registered",
		"event", "ballot_voter_registered",
		"module", "election-core/ballot-ledger",
		"layer", "application",
		"principal", caller,
	)
	return voter, nil
}

// UnregisterVoter is admin-only and frees the principal to register again.
func (uc *BallotUseCase) UnregisterVoter(ctx context.Context, caller string, target string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	logger := application.ResolveLogger(uc.Logger)

	if err := uc.authorize(ctx, caller); err != nil {
		return err
	}
	voter, exists, err := uc.Ledger.GetVoter(ctx, target)
	if err != nil {
		return err
	}
	if !exists {
		return domainerrors.ErrVoterNotRegistered
	}
	envelope, err := uc.auditEnvelope(ctx, EventVoterUnregistered, target, map[string]any{
		"principal": target,
		"name":      voter.Name,
	})
	if err != nil {
		return err
	}
	if err := uc.Ledger.DeleteVoter(ctx, target, envelope); err != nil {
		return err
	}
	logger.Info("voter unregistered",
		"event", "ballot_voter_unregistered",
		"module", "election-core/ballot-ledger",
		"layer", "application",
		"principal", target,
	)
	return nil
}

// CreateVotingSession is admin-only. The window must be well-formed and end
// in the future, but it is descriptive only: elapsing never closes a session.
func (uc *BallotUseCase) CreateVotingSession(ctx context.Context, caller string, cmd CreateSessionCommand) (entities.Session, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	logger := application.ResolveLogger(uc.Logger)

	if err := uc.authorize(ctx, caller); err != nil {
		return entities.Session{}, err
	}
	if !cmd.StartTime.Before(cmd.EndTime) {
		return entities.Session{}, domainerrors.ErrStartAfterEnd
	}
	if !cmd.EndTime.After(uc.now()) {
		return entities.Session{}, domainerrors.ErrEndNotInFuture
	}

	count, err := uc.Ledger.SessionCount(ctx)
	if err != nil {
		return entities.Session{}, err
	}
	nextID := count + 1
	envelope, err := uc.auditEnvelope(ctx, EventVotingSessionCreated, sessionEntityID(nextID), map[string]any{
		"session_id": nextID,
		"name":       cmd.Name,
		"start_time": cmd.StartTime.UTC(),
		"end_time":   cmd.EndTime.UTC(),
	})
	if err != nil {
		return entities.Session{}, err
	}
	session, err := uc.Ledger.AppendSession(ctx, entities.Session{
		Name:      cmd.Name,
		StartTime: cmd.StartTime.UTC(),
		EndTime:   cmd.EndTime.UTC(),
	}, envelope)
	if err != nil {
		return entities.Session{}, err
	}
	logger.Info("voting session created",
		"event", "ballot_session_created",
		"module", "election-core/ballot-ledger",
		"layer", "application",
		"session_id", session.ID,
		"name", session.Name,
	)
	return session, nil
}

// ToggleVotingSession flips a session's active flag. Sessions have no
// terminal state; the admin may reopen a closed one.
func (uc *BallotUseCase) ToggleVotingSession(ctx context.Context, caller string, sessionID int) (entities.Session, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	logger := application.ResolveLogger(uc.Logger)

	if err := uc.authorize(ctx, caller); err != nil {
		return entities.Session{}, err
	}
	session, err := uc.Ledger.GetSession(ctx, sessionID)
	if err != nil {
		return entities.Session{}, err
	}
	if err := uc.Ledger.SetSessionActive(ctx, sessionID, !session.Active); err != nil {
		return entities.Session{}, err
	}
	session.Active = !session.Active
	logger.Info("voting session toggled",
		"event", "ballot_session_toggled",
		"module", "election-core/ballot-ledger",
		"layer", "application",
		"session_id", sessionID,
		"active", session.Active,
	)
	return session, nil
}

// ToggleSystem flips the system-wide active flag.
func (uc *BallotUseCase) ToggleSystem(ctx context.Context, caller string) (entities.SystemState, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	logger := application.ResolveLogger(uc.Logger)

	if err := uc.authorize(ctx, caller); err != nil {
		return entities.SystemState{}, err
	}
	state, err := uc.Ledger.SystemState(ctx)
	if err != nil {
		return entities.SystemState{}, err
	}
	state.Active = !state.Active
	envelope, err := uc.auditEnvelope(ctx, EventSystemStateChanged, "system", map[string]any{
		"active": state.Active,
	})
	if err != nil {
		return entities.SystemState{}, err
	}
	if err := uc.Ledger.SetSystemActive(ctx, state.Active, envelope); err != nil {
		return entities.SystemState{}, err
	}
	logger.Info("system state toggled",
		"event", "ballot_system_toggled",
		"module", "election-core/ballot-ledger",
		"layer", "application",
		"active", state.Active,
	)
	return state, nil
}

// CastVote runs the strict precondition chain, short-circuiting on the first
// failure in contract order, then applies the three-way mutation atomically.
func (uc *BallotUseCase) CastVote(ctx context.Context, caller string, candidateID int, sessionID int) (entities.Voter, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	logger := application.ResolveLogger(uc.Logger)

	if err := uc.requireSystemActive(ctx); err != nil {
		return entities.Voter{}, err
	}
	sessionCount, err := uc.Ledger.SessionCount(ctx)
	if err != nil {
		return entities.Voter{}, err
	}
	if sessionID < 1 || sessionID > sessionCount {
		return entities.Voter{}, domainerrors.ErrInvalidSessionID
	}
	candidateCount, err := uc.Ledger.CandidateCount(ctx)
	if err != nil {
		return entities.Voter{}, err
	}
	if candidateID < 1 || candidateID > candidateCount {
		return entities.Voter{}, domainerrors.ErrInvalidCandidateID
	}
	voter, exists, err := uc.Ledger.GetVoter(ctx, caller)
	if err != nil {
		return entities.Voter{}, err
	}
	if !exists || !voter.Registered {
		return entities.Voter{}, domainerrors.ErrVoterNotRegistered
	}
	session, err := uc.Ledger.GetSession(ctx, sessionID)
	if err != nil {
		return entities.Voter{}, err
	}
	if !session.Active {
		return entities.Voter{}, domainerrors.ErrSessionInactive
	}
	if voter.HasVoted {
		logger.Warn("double vote rejected",
			"event", "ballot_vote_double_rejected",
			"module", "election-core/ballot-ledger",
			"layer", "application",
			"principal", caller,
			"session_id", sessionID,
		)
		return entities.Voter{}, domainerrors.ErrAlreadyVoted
	}

	envelope, err := uc.auditEnvelope(ctx, EventVoteCasted, caller, map[string]any{
		"principal":    caller,
		"candidate_id": candidateID,
		"session_id":   sessionID,
	})
	if err != nil {
		return entities.Voter{}, err
	}
	if err := uc.Ledger.ApplyVote(ctx, caller, candidateID, sessionID, envelope); err != nil {
		return entities.Voter{}, err
	}
	voter.HasVoted = true
	voter.VotedCandidateID = candidateID
	logger.Info("vote casted",
		"event", "ballot_vote_casted",
		"module", "election-core/ballot-ledger",
		"layer", "application",
		"principal", caller,
		"candidate_id", candidateID,
		"session_id", sessionID,
	)
	return voter, nil
}

// authorize is the single admin guard invoked at the top of every admin-only
// operation.
func (uc *BallotUseCase) authorize(ctx context.Context, caller string) error {
	state, err := uc.Ledger.SystemState(ctx)
	if err != nil {
		return err
	}
	if caller == "" || caller != state.Admin {
		return domainerrors.ErrNotAdmin
	}
	return nil
}

func (uc *BallotUseCase) requireSystemActive(ctx context.Context) error {
	state, err := uc.Ledger.SystemState(ctx)
	if err != nil {
		return err
	}
	if !state.Active {
		return domainerrors.ErrSystemInactive
	}
	return nil
}

// auditEnvelope builds the event that the repository commits together with
// the mutation.
func (uc *BallotUseCase) auditEnvelope(ctx context.Context, eventType string, entityID string, data map[string]any) (*ports.EventEnvelope, error) {
	eventID, err := uc.newID(ctx)
	if err != nil {
		return nil, err
	}
	envelope := newAuditEnvelope(eventID, eventType, entityID, uc.now(), data)
	return &envelope, nil
}

func (uc *BallotUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (uc *BallotUseCase) newID(ctx context.Context) (string, error) {
	if uc.IDGen != nil {
		return uc.IDGen.NewID(ctx)
	}
	return "", nil
}

func candidateEntityID(id int) string {
	return "candidate-" + strconv.Itoa(id)
}

func sessionEntityID(id int) string {
	return "session-" + strconv.Itoa(id)
}
