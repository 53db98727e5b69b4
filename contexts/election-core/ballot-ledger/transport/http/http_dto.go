package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RegisterCandidateRequest struct {
	Name     string `json:"name"`
	Party    string `json:"party"`
	Platform string `json:"platform"`
}

type CandidateResponse struct {
	CandidateID int    `json:"candidate_id"`
	Name        string `json:"name"`
	Party       string `json:"party"`
	Platform    string `json:"platform"`
	VoteCount   int    `json:"vote_count"`
}

type CandidateVotesResponse struct {
	CandidateID int `json:"candidate_id"`
	VoteCount   int `json:"vote_count"`
}

type RegisterVoterRequest struct {
	Name        string `json:"name"`
	Nationality string `json:"nationality"`
	Age         int    `json:"age"`
	LGA         string `json:"lga"`
}

type VoterResponse struct {
	Principal        string `json:"principal"`
	Name             string `json:"name"`
	Nationality      string `json:"nationality"`
	Age              int    `json:"age"`
	LGA              string `json:"lga"`
	Registered       bool   `json:"registered"`
	HasVoted         bool   `json:"has_voted"`
	VotedCandidateID int    `json:"voted_candidate_id,omitempty"`
}

type HasVotedResponse struct {
	Principal string `json:"principal"`
	HasVoted  bool   `json:"has_voted"`
}

type CreateSessionRequest struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type SessionResponse struct {
	SessionID  int       `json:"session_id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Active     bool      `json:"active"`
	TotalVotes int       `json:"total_votes"`
	Voters     []string  `json:"voters"`
}

type CastVoteRequest struct {
	CandidateID int `json:"candidate_id"`
	SessionID   int `json:"session_id"`
}

type CastVoteResponse struct {
	Principal   string `json:"principal"`
	CandidateID int    `json:"candidate_id"`
	SessionID   int    `json:"session_id"`
}

type SystemStateResponse struct {
	Admin  string `json:"admin"`
	Active bool   `json:"active"`
}

type AdminResponse struct {
	Admin string `json:"admin"`
}

type TallyItem struct {
	CandidateID int `json:"candidate_id"`
	VoteCount   int `json:"vote_count"`
}

type SessionResultsResponse struct {
	SessionID int         `json:"session_id"`
	Items     []TallyItem `json:"items"`
}

type SessionVotersResponse struct {
	SessionID int      `json:"session_id"`
	Voters    []string `json:"voters"`
}

type SystemStatsResponse struct {
	TotalCandidates       int  `json:"total_candidates"`
	TotalRegisteredVoters int  `json:"total_registered_voters"`
	TotalSessions         int  `json:"total_sessions"`
	TotalVotes            int  `json:"total_votes"`
	SystemActive          bool `json:"system_active"`
}
