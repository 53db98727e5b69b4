package httpadapter

import (
	"context"
	"log/slog"

	"greenballot/contexts/election-core/ballot-ledger/application/commands"
	"greenballot/contexts/election-core/ballot-ledger/application/queries"
	"greenballot/contexts/election-core/ballot-ledger/domain/entities"
	httptransport "greenballot/contexts/election-core/ballot-ledger/transport/http"
)

// Handler maps transport DTOs onto the command and query use cases. It holds
// no business rules.
type Handler struct {
	Ballot  *commands.BallotUseCase
	Results queries.ResultsUseCase
	Logger  *slog.Logger
}

func (h Handler) RegisterCandidateHandler(
	ctx context.Context,
	caller string,
	req httptransport.RegisterCandidateRequest,
) (httptransport.CandidateResponse, error) {
	candidate, err := h.Ballot.RegisterCandidate(ctx, caller, commands.RegisterCandidateCommand{
		Name:     req.Name,
		Party:    req.Party,
		Platform: req.Platform,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

func (h Handler) CandidateInfoHandler(ctx context.Context, candidateID int) (httptransport.CandidateResponse, error) {
	candidate, err := h.Results.CandidateInfo(ctx, candidateID)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

func (h Handler) CandidateVoteCountHandler(ctx context.Context, candidateID int) (httptransport.CandidateVotesResponse, error) {
	count, err := h.Results.CandidateVoteCount(ctx, candidateID)
	if err != nil {
		return httptransport.CandidateVotesResponse{}, err
	}
	return httptransport.CandidateVotesResponse{
		CandidateID: candidateID,
		VoteCount:   count,
	}, nil
}

func (h Handler) RegisterVoterHandler(
	ctx context.Context,
	caller string,
	req httptransport.RegisterVoterRequest,
) (httptransport.VoterResponse, error) {
	voter, err := h.Ballot.RegisterVoter(ctx, caller, commands.RegisterVoterCommand{
		Name:        req.Name,
		Nationality: req.Nationality,
		Age:         req.Age,
		LGA:         req.LGA,
	})
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return mapVoter(voter), nil
}

func (h Handler) UnregisterVoterHandler(ctx context.Context, caller string, target string) error {
	return h.Ballot.UnregisterVoter(ctx, caller, target)
}

func (h Handler) VoterInfoHandler(ctx context.Context, principal string) (httptransport.VoterResponse, error) {
	voter, err := h.Results.VoterInfo(ctx, principal)
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return mapVoter(voter), nil
}

func (h Handler) HasVotedHandler(ctx context.Context, principal string) (httptransport.HasVotedResponse, error) {
	voted, err := h.Results.HasVoterVoted(ctx, principal)
	if err != nil {
		return httptransport.HasVotedResponse{}, err
	}
	return httptransport.HasVotedResponse{
		Principal: principal,
		HasVoted:  voted,
	}, nil
}

func (h Handler) CreateSessionHandler(
	ctx context.Context,
	caller string,
	req httptransport.CreateSessionRequest,
) (httptransport.SessionResponse, error) {
	session, err := h.Ballot.CreateVotingSession(ctx, caller, commands.CreateSessionCommand{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(session), nil
}

func (h Handler) ToggleSessionHandler(ctx context.Context, caller string, sessionID int) (httptransport.SessionResponse, error) {
	session, err := h.Ballot.ToggleVotingSession(ctx, caller, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(session), nil
}

func (h Handler) SessionInfoHandler(ctx context.Context, sessionID int) (httptransport.SessionResponse, error) {
	session, err := h.Results.SessionInfo(ctx, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(session), nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	caller string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	voter, err := h.Ballot.CastVote(ctx, caller, req.CandidateID, req.SessionID)
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		Principal:   voter.Principal,
		CandidateID: voter.VotedCandidateID,
		SessionID:   req.SessionID,
	}, nil
}

func (h Handler) ToggleSystemHandler(ctx context.Context, caller string) (httptransport.SystemStateResponse, error) {
	state, err := h.Ballot.ToggleSystem(ctx, caller)
	if err != nil {
		return httptransport.SystemStateResponse{}, err
	}
	return httptransport.SystemStateResponse{
		Admin:  state.Admin,
		Active: state.Active,
	}, nil
}

func (h Handler) AdminHandler(ctx context.Context) (httptransport.AdminResponse, error) {
	admin, err := h.Results.Admin(ctx)
	if err != nil {
		return httptransport.AdminResponse{}, err
	}
	return httptransport.AdminResponse{Admin: admin}, nil
}

func (h Handler) WinningCandidateHandler(ctx context.Context) (httptransport.CandidateResponse, error) {
	winner, err := h.Results.WinningCandidate(ctx)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(winner), nil
}

func (h Handler) SessionResultsHandler(ctx context.Context, sessionID int) (httptransport.SessionResultsResponse, error) {
	tallies, err := h.Results.SessionResults(ctx, sessionID)
	if err != nil {
		return httptransport.SessionResultsResponse{}, err
	}
	items := make([]httptransport.TallyItem, 0, len(tallies))
	for _, tally := range tallies {
		items = append(items, httptransport.TallyItem{
			CandidateID: tally.CandidateID,
			VoteCount:   tally.VoteCount,
		})
	}
	return httptransport.SessionResultsResponse{
		SessionID: sessionID,
		Items:     items,
	}, nil
}

func (h Handler) SessionVotersHandler(ctx context.Context, sessionID int) (httptransport.SessionVotersResponse, error) {
	voters, err := h.Results.SessionVoters(ctx, sessionID)
	if err != nil {
		return httptransport.SessionVotersResponse{}, err
	}
	return httptransport.SessionVotersResponse{
		SessionID: sessionID,
		Voters:    voters,
	}, nil
}

func (h Handler) SystemStatsHandler(ctx context.Context) (httptransport.SystemStatsResponse, error) {
	stats, err := h.Results.SystemStats(ctx)
	if err != nil {
		return httptransport.SystemStatsResponse{}, err
	}
	return httptransport.SystemStatsResponse{
		TotalCandidates:       stats.TotalCandidates,
		TotalRegisteredVoters: stats.TotalRegisteredVoters,
		TotalSessions:         stats.TotalSessions,
		TotalVotes:            stats.TotalVotes,
		SystemActive:          stats.SystemActive,
	}, nil
}

func mapCandidate(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		CandidateID: candidate.ID,
		Name:        candidate.Name,
		Party:       candidate.Party,
		Platform:    candidate.Platform,
		VoteCount:   candidate.VoteCount,
	}
}

func mapVoter(voter entities.Voter) httptransport.VoterResponse {
	return httptransport.VoterResponse{
		Principal:        voter.Principal,
		Name:             voter.Name,
		Nationality:      voter.Nationality,
		Age:              voter.Age,
		LGA:              voter.LGA,
		Registered:       voter.Registered,
		HasVoted:         voter.HasVoted,
		VotedCandidateID: voter.VotedCandidateID,
	}
}

func mapSession(session entities.Session) httptransport.SessionResponse {
	voters := session.Voters
	if voters == nil {
		voters = []string{}
	}
	return httptransport.SessionResponse{
		SessionID:  session.ID,
		Name:       session.Name,
		StartTime:  session.StartTime,
		EndTime:    session.EndTime,
		Active:     session.Active,
		TotalVotes: session.TotalVotes,
		Voters:     voters,
	}
}
