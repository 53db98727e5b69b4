package errors

import "errors"

// The message texts below are the observable ledger contract and must stay
// verbatim; callers compare them byte for byte.
var (
	ErrNotAdmin               = errors.New("Only admin can call this function")
	ErrSystemInactive         = errors.New("System is not active")
	ErrEmptyCandidateName     = errors.New("Candidate name cannot be empty")
	ErrEmptyPartyName         = errors.New("Party name cannot be empty")
	ErrEmptyVoterName         = errors.New("Name cannot be empty")
	ErrEmptyNationality       = errors.New("Nationality cannot be empty")
	ErrEmptyLGA               = errors.New("LGA cannot be empty")
	ErrVoterUnderage          = errors.New("Voter must be 18 years or older")
	ErrVoterAlreadyRegistered = errors.New("Voter already registered")
	ErrVoterNotRegistered     = errors.New("Voter is not registered")
	ErrInvalidCandidateID     = errors.New("Invalid candidate ID")
	ErrInvalidSessionID       = errors.New("Invalid session ID")
	ErrSessionInactive        = errors.New("Voting session is not active")
	ErrAlreadyVoted           = errors.New("Voter has already voted")
	ErrStartAfterEnd          = errors.New("Start time must be before end time")
	ErrEndNotInFuture         = errors.New("End time must be in the future")
	ErrNoCandidates           = errors.New("No candidates registered")
)
