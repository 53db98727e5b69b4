package queries

import (
	"context"

	"greenballot/contexts/election-core/ballot-ledger/domain/entities"
	domainerrors "greenballot/contexts/election-core/ballot-ledger/domain/errors"
	"greenballot/contexts/election-core/ballot-ledger/ports"
)

// ResultsUseCase serves every read-only projection over the ledger. It never
// mutates state and never caches: each call computes from the latest
// committed snapshot.
type ResultsUseCase struct {
	Ledger ports.BallotRepository
}

// WinningCandidate scans candidates in ascending id order and returns the
// first one holding the maximal tally, so ties resolve to the lowest id.
func (uc ResultsUseCase) WinningCandidate(ctx context.Context) (entities.Candidate, error) {
	candidates, err := uc.Ledger.ListCandidates(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	if len(candidates) == 0 {
		return entities.Candidate{}, domainerrors.ErrNoCandidates
	}
	winner := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.VoteCount > winner.VoteCount {
			winner = candidate
		}
	}
	return winner, nil
}

// SessionResults returns one tally row per registered candidate in ascending
// id order. Tallies are global: the model never partitions counts by session.
func (uc ResultsUseCase) SessionResults(ctx context.Context, sessionID int) ([]entities.CandidateTally, error) {
	if _, err := uc.Ledger.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	candidates, err := uc.Ledger.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]entities.CandidateTally, 0, len(candidates))
	for _, candidate := range candidates {
		results = append(results, entities.CandidateTally{
			CandidateID: candidate.ID,
			VoteCount:   candidate.VoteCount,
		})
	}
	return results, nil
}

// SessionVoters returns the session roster in vote order.
func (uc ResultsUseCase) SessionVoters(ctx context.Context, sessionID int) ([]string, error) {
	session, err := uc.Ledger.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return session.Voters, nil
}

func (uc ResultsUseCase) SystemStats(ctx context.Context) (entities.SystemStats, error) {
	state, err := uc.Ledger.SystemState(ctx)
	if err != nil {
		return entities.SystemStats{}, err
	}
	candidates, err := uc.Ledger.CandidateCount(ctx)
	if err != nil {
		return entities.SystemStats{}, err
	}
	voters, err := uc.Ledger.VoterCount(ctx)
	if err != nil {
		return entities.SystemStats{}, err
	}
	sessions, err := uc.Ledger.SessionCount(ctx)
	if err != nil {
		return entities.SystemStats{}, err
	}
	totalVotes, err := uc.Ledger.TotalVotes(ctx)
	if err != nil {
		return entities.SystemStats{}, err
	}
	return entities.SystemStats{
		TotalCandidates:       candidates,
		TotalRegisteredVoters: voters,
		TotalSessions:         sessions,
		TotalVotes:            totalVotes,
		SystemActive:          state.Active,
	}, nil
}

func (uc ResultsUseCase) CandidateInfo(ctx context.Context, candidateID int) (entities.Candidate, error) {
	return uc.Ledger.GetCandidate(ctx, candidateID)
}

func (uc ResultsUseCase) CandidateVoteCount(ctx context.Context, candidateID int) (int, error) {
	candidate, err := uc.Ledger.GetCandidate(ctx, candidateID)
	if err != nil {
		return 0, err
	}
	return candidate.VoteCount, nil
}

func (uc ResultsUseCase) VoterInfo(ctx context.Context, principal string) (entities.Voter, error) {
	voter, exists, err := uc.Ledger.GetVoter(ctx, principal)
	if err != nil {
		return entities.Voter{}, err
	}
	if !exists {
		return entities.Voter{}, domainerrors.ErrVoterNotRegistered
	}
	return voter, nil
}

// HasVoterVoted reports false for unknown principals rather than erroring.
func (uc ResultsUseCase) HasVoterVoted(ctx context.Context, principal string) (bool, error) {
	voter, exists, err := uc.Ledger.GetVoter(ctx, principal)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	return voter.HasVoted, nil
}

func (uc ResultsUseCase) SessionInfo(ctx context.Context, sessionID int) (entities.Session, error) {
	return uc.Ledger.GetSession(ctx, sessionID)
}

func (uc ResultsUseCase) Admin(ctx context.Context) (string, error) {
	state, err := uc.Ledger.SystemState(ctx)
	if err != nil {
		return "", err
	}
	return state.Admin, nil
}
