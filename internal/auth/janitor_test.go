package auth

import (
	"context"
	"testing"
	"time"
)

func TestJanitorSweepsOnSchedule(t *testing.T) {
	store := NewMemoryStore()
	ledger := store.Ledger()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := ledger.Record(ctx, Fingerprint(string(rune('a'+i))), time.Now().UTC()); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	j := NewJanitor(ledger, 10*time.Millisecond)
	go func() {
		defer close(done)
		j.Run(runCtx)
	}()

	deadline := time.After(2 * time.Second)
	for {
		revoked, err := ledger.IsRevoked(ctx, Fingerprint("a"))
		if err != nil {
			t.Fatalf("IsRevoked: %v", err)
		}
		if !revoked {
			break
		}
		select {
		case <-deadline:
			t.Fatal("janitor never swept the ledger")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop on cancel")
	}
}

func TestNewJanitorDefaultsInterval(t *testing.T) {
	j := NewJanitor(NewMemoryStore().Ledger(), 0)
	if j.interval != DefaultPurgeInterval {
		t.Fatalf("expected weekly default, got %v", j.interval)
	}
}
