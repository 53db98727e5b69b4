// Package ballotledger implements the GreenBallot transactional voting
// ledger inside the election-core context.
//
// The module owns candidate and voter registration, timed voting sessions,
// single-use vote casting under the system/session eligibility rules, and
// tamper-evident tally reads. Every mutation is linearized and commits
// atomically together with its audit event; reads are live projections over
// committed state. Business rules live in application/domain layers behind
// ports and adapters.
package ballotledger
