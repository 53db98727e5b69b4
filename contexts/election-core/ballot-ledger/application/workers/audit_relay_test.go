package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"greenballot/contexts/election-core/ballot-ledger/adapters/memory"
	"greenballot/contexts/election-core/ballot-ledger/ports"
)

type capturingPublisher struct {
	keys    []string
	failOn  string
	failErr error
}

func (p *capturingPublisher) Publish(_ context.Context, key string, _ []byte) error {
	if p.failOn != "" && key == p.failOn {
		return p.failErr
	}
	p.keys = append(p.keys, key)
	return nil
}

func seedAudit(t *testing.T, store *memory.Store, entityIDs ...string) {
	t.Helper()
	for i, entityID := range entityIDs {
		if err := store.AppendAudit(context.Background(), ports.EventEnvelope{
			EventID:    entityID + "-event",
			EventType:  "VoteCasted",
			EntityID:   entityID,
			OccurredAt: time.Now().UTC().Add(time.Duration(i) * time.Millisecond),
		}); err != nil {
			t.Fatalf("seed audit failed: %v", err)
		}
	}
}

func TestAuditRelayPublishesPendingInOrder(t *testing.T) {
	store := memory.NewStore("admin-1")
	seedAudit(t, store, "voter-1", "voter-2", "voter-3")
	publisher := &capturingPublisher{}

	relay := AuditRelay{
		Audit:     store,
		Publisher: publisher,
		Clock:     store,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}

	want := []string{"voter-1", "voter-2", "voter-3"}
	if len(publisher.keys) != len(want) {
		t.Fatalf("expected %d published messages, got %d", len(want), len(publisher.keys))
	}
	for i, key := range publisher.keys {
		if key != want[i] {
			t.Fatalf("publish order mismatch at %d: got %s want %s", i, key, want[i])
		}
	}

	pending, err := store.ListPendingAudit(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending rows after relay, got %d", len(pending))
	}
}

func TestAuditRelayStopsOnFirstPublishFailure(t *testing.T) {
	store := memory.NewStore("admin-1")
	seedAudit(t, store, "voter-1", "voter-2", "voter-3")
	bang := errors.New("broker unavailable")
	publisher := &capturingPublisher{failOn: "voter-2", failErr: bang}

	relay := AuditRelay{
		Audit:     store,
		Publisher: publisher,
		Clock:     store,
	}
	if err := relay.RunOnce(context.Background()); !errors.Is(err, bang) {
		t.Fatalf("expected publish failure to surface, got %v", err)
	}

	// The failed row and everything behind it stay pending for the next cycle.
	pending, err := store.ListPendingAudit(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 2 || pending[0].EntityID != "voter-2" || pending[1].EntityID != "voter-3" {
		t.Fatalf("pending after failure mismatch: %+v", pending)
	}
}

func TestAuditRelayNoPendingIsANoOp(t *testing.T) {
	store := memory.NewStore("admin-1")
	publisher := &capturingPublisher{}

	relay := AuditRelay{
		Audit:     store,
		Publisher: publisher,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if len(publisher.keys) != 0 {
		t.Fatalf("expected nothing published, got %d", len(publisher.keys))
	}
}
