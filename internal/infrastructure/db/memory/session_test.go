package memory

import (
	"context"
	"testing"
	"time"
)

func TestRevocationList(t *testing.T) {
	l := NewRevocationList()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	if revoked, _ := l.IsRevoked(ctx, "a"); revoked {
		t.Fatalf("nothing revoked yet")
	}
	_ = l.Revoke(ctx, "a", now.Add(time.Hour))
	if revoked, _ := l.IsRevoked(ctx, "a"); !revoked {
		t.Fatalf("expected a revoked")
	}

	now = now.Add(2 * time.Hour)
	if revoked, _ := l.IsRevoked(ctx, "a"); revoked {
		t.Fatalf("revocation should lapse once the session has expired")
	}

	_ = l.Revoke(ctx, "b", now.Add(-time.Minute))
	if revoked, _ := l.IsRevoked(ctx, "b"); revoked {
		t.Fatalf("already expired sessions need no entry")
	}
}

func TestLoginLimiter_FixedWindow(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if blocked, _ := l.Blocked(ctx, "alice"); blocked {
			t.Fatalf("blocked after %d failures", i)
		}
		_ = l.RecordFailure(ctx, "alice")
	}
	if blocked, _ := l.Blocked(ctx, "alice"); !blocked {
		t.Fatalf("expected alice blocked after 3 failures")
	}
	if blocked, _ := l.Blocked(ctx, "bob"); blocked {
		t.Fatalf("keys must be independent")
	}

	now = now.Add(time.Minute)
	if blocked, _ := l.Blocked(ctx, "alice"); blocked {
		t.Fatalf("expected window to reset")
	}
}

func TestLoginLimiter_Reset(t *testing.T) {
	l := NewLoginLimiter(1, time.Hour)
	ctx := context.Background()

	_ = l.RecordFailure(ctx, "alice")
	if blocked, _ := l.Blocked(ctx, "alice"); !blocked {
		t.Fatalf("expected blocked")
	}
	_ = l.Reset(ctx, "alice")
	if blocked, _ := l.Blocked(ctx, "alice"); blocked {
		t.Fatalf("expected reset to unblock")
	}
}

func TestLoginLimiter_SweepsEndedWindows(t *testing.T) {
	l := NewLoginLimiter(5, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for _, user := range []string{"u1", "u2", "u3", "u4"} {
		_ = l.RecordFailure(ctx, user)
	}
	now = now.Add(2 * time.Minute)
	_ = l.RecordFailure(ctx, "u5")

	l.mu.Lock()
	n := len(l.counts)
	l.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected only the live window to remain, got %d", n)
	}
}
