package commands

import (
	"time"

	"greenballot/contexts/election-core/ballot-ledger/ports"
)

// Audit event types mirror the ledger's public event names; subscribers key
// off these strings.
const (
	EventCandidateRegistered  = "CandidateRegistered"
	EventVoterRegistered      = "VoterRegistered"
	EventVoterUnregistered    = "VoterUnregistered"
	EventVotingSessionCreated = "VotingSessionCreated"
	EventSystemStateChanged   = "SystemStateChanged"
	EventVoteCasted           = "VoteCasted"
)

// eventEntityTypes names the registry an event belongs to; the bus payload
// carries it so subscribers can route without parsing entity ids.
var eventEntityTypes = map[string]string{
	EventCandidateRegistered:  "candidate",
	EventVoterRegistered:      "voter",
	EventVoterUnregistered:    "voter",
	EventVotingSessionCreated: "session",
	EventSystemStateChanged:   "system",
	EventVoteCasted:           "voter",
}

func newAuditEnvelope(
	eventID string,
	eventType string,
	entityID string,
	occurredAt time.Time,
	data map[string]any,
) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:    eventID,
		EventType:  eventType,
		EntityType: eventEntityTypes[eventType],
		EntityID:   entityID,
		OccurredAt: occurredAt.UTC(),
		Data:       data,
	}
}
