package events

import "time"

// SourceBallotLedger identifies the ledger service on the bus.
const SourceBallotLedger = "election-core/ballot-ledger"

// Envelope is the canonical event shape published on the GreenBallot bus.
// Adapters build it from the ledger's audit envelope at append time so every
// persisted payload is already in wire form.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SourceService string    `json:"source_service"`
	OccurredAtUTC time.Time `json:"occurred_at_utc"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Payload       any       `json:"payload"`
}
