package entities

import "time"

// Candidate ids are dense integers assigned sequentially from 1 and never
// reused. VoteCount only ever grows.
type Candidate struct {
	ID        int
	Name      string
	Party     string
	Platform  string
	VoteCount int
}

// Voter is keyed by its principal id; at most one record per principal.
// HasVoted is global across all sessions: one vote per principal, ever.
type Voter struct {
	Principal        string
	Name             string
	Nationality      string
	Age              int
	LGA              string
	Registered       bool
	HasVoted         bool
	VotedCandidateID int
}

// Session ids are dense integers assigned sequentially from 1. The time
// window is descriptive metadata only; sessions are opened and closed by
// the admin toggle, never by the clock.
type Session struct {
	ID         int
	Name       string
	StartTime  time.Time
	EndTime    time.Time
	Active     bool
	Voters     []string
	TotalVotes int
}

// SystemState is the process-lifetime singleton: the designated admin
// principal and the system-wide active flag.
type SystemState struct {
	Admin  string
	Active bool
}

type SystemStats struct {
	TotalCandidates       int
	TotalRegisteredVoters int
	TotalSessions         int
	TotalVotes            int
	SystemActive          bool
}

// CandidateTally is one row of a session results projection, ordered by
// ascending candidate id.
type CandidateTally struct {
	CandidateID int
	VoteCount   int
}
