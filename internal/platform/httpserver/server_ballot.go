package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	ballotdomainerrors "greenballot/contexts/election-core/ballot-ledger/domain/errors"
	ballothttp "greenballot/contexts/election-core/ballot-ledger/transport/http"
)

// The caller principal rides on X-Principal-Id; the ledger treats it as an
// opaque identifier. Mutating routes require it, read routes do not.
func resolvePrincipal(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Principal-Id"))
}

func requirePrincipal(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal := resolvePrincipal(r)
	if principal == "" {
		writeBallotError(w, http.StatusUnauthorized, "missing_principal", "X-Principal-Id header is required")
		return "", false
	}
	return principal, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.PathValue(name)
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_id", name+" must be an integer")
		return 0, false
	}
	return id, true
}

func (s *Server) handleRegisterCandidate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ballothttp.RegisterCandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballot.Handler.RegisterCandidateHandler(r.Context(), caller, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCandidateInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "candidate_id")
	if !ok {
		return
	}
	resp, err := s.ballot.Handler.CandidateInfoHandler(r.Context(), id)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCandidateVoteCount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "candidate_id")
	if !ok {
		return
	}
	resp, err := s.ballot.Handler.CandidateVoteCountHandler(r.Context(), id)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterVoter(w http.ResponseWriter, r *http.Request) {
	caller, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ballothttp.RegisterVoterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballot.Handler.RegisterVoterHandler(r.Context(), caller, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleUnregisterVoter(w http.ResponseWriter, r *http.Request) {
	caller, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	target := r.PathValue("principal")
	if err := s.ballot.Handler.UnregisterVoterHandler(r.Context(), caller, target); err != nil {
		writeBallotDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVoterInfo(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballot.Handler.VoterInfoHandler(r.Context(), r.PathValue("principal"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballot.Handler.HasVotedHandler(r.Context(), r.PathValue("principal"))
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ballothttp.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballot.Handler.CreateSessionHandler(r.Context(), caller, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleToggleSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "session_id")
	if !ok {
		return
	}
	resp, err := s.ballot.Handler.ToggleSessionHandler(r.Context(), caller, id)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "session_id")
	if !ok {
		return
	}
	resp, err := s.ballot.Handler.SessionInfoHandler(r.Context(), id)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionResults(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "session_id")
	if !ok {
		return
	}
	resp, err := s.ballot.Handler.SessionResultsHandler(r.Context(), id)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionVoters(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "session_id")
	if !ok {
		return
	}
	resp, err := s.ballot.Handler.SessionVotersHandler(r.Context(), id)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req ballothttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBallotError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballot.Handler.CastVoteHandler(r.Context(), caller, req)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleToggleSystem(w http.ResponseWriter, r *http.Request) {
	caller, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	resp, err := s.ballot.Handler.ToggleSystemHandler(r.Context(), caller)
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballot.Handler.AdminHandler(r.Context())
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWinningCandidate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballot.Handler.WinningCandidateHandler(r.Context())
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSystemStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballot.Handler.SystemStatsHandler(r.Context())
	if err != nil {
		writeBallotDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeBallotError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, ballothttp.ErrorResponse{Code: code, Message: message})
}

func writeBallotDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ballotdomainerrors.ErrNotAdmin):
		writeBallotError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrEmptyCandidateName),
		errors.Is(err, ballotdomainerrors.ErrEmptyPartyName),
		errors.Is(err, ballotdomainerrors.ErrEmptyVoterName),
		errors.Is(err, ballotdomainerrors.ErrEmptyNationality),
		errors.Is(err, ballotdomainerrors.ErrEmptyLGA),
		errors.Is(err, ballotdomainerrors.ErrVoterUnderage),
		errors.Is(err, ballotdomainerrors.ErrStartAfterEnd),
		errors.Is(err, ballotdomainerrors.ErrEndNotInFuture):
		writeBallotError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrSystemInactive),
		errors.Is(err, ballotdomainerrors.ErrSessionInactive):
		writeBallotError(w, http.StatusConflict, "inactive", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrInvalidCandidateID),
		errors.Is(err, ballotdomainerrors.ErrInvalidSessionID),
		errors.Is(err, ballotdomainerrors.ErrVoterNotRegistered),
		errors.Is(err, ballotdomainerrors.ErrNoCandidates):
		writeBallotError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ballotdomainerrors.ErrVoterAlreadyRegistered),
		errors.Is(err, ballotdomainerrors.ErrAlreadyVoted):
		writeBallotError(w, http.StatusConflict, "conflict", err.Error())
	default:
		writeBallotError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
