package logic

import (
	"testing"
	"time"
)

func TestSourceIsBumper(t *testing.T) {
	tests := []struct {
		id   SourceID
		want bool
	}{
		{SourceBumper1, true},
		{SourceBumper2, true},
		{"bumper-7", true},
		{"bumper-", false},
		{SourceTarget, false},
		{SourceCompletion, false},
	}
	for _, tt := range tests {
		if got := tt.id.IsBumper(); got != tt.want {
			t.Errorf("%q.IsBumper(): got %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSourceCoil(t *testing.T) {
	if got := SourceBumper1.Coil(); got != "bumper-1-coil" {
		t.Errorf("Coil: got %q, want bumper-1-coil", got)
	}
}

func TestEventCountsCount(t *testing.T) {
	var c EventCounts
	c.Count(ScoreEvent{Source: SourceTarget})
	c.Count(ScoreEvent{Source: SourceBumper1})
	c.Count(ScoreEvent{Source: SourceBumper2})
	c.Count(ScoreEvent{Source: SourceCompletion})

	if c.Target != 1 || c.Bumper != 2 || c.Jackpot != 1 {
		t.Errorf("unexpected counts: %+v", c)
	}
}

func TestHeartbeat(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(time.Minute, start)
	counts := EventCounts{Target: 3}

	if hb := h.Check(start.Add(59*time.Second), counts); hb != nil {
		t.Error("expected no heartbeat before interval")
	}

	hb := h.Check(start.Add(time.Minute), counts)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != time.Minute {
		t.Errorf("Uptime: got %v, want 1m", hb.Uptime)
	}
	if hb.Counts.Target != 3 {
		t.Errorf("Counts.Target: got %d, want 3", hb.Counts.Target)
	}

	if hb := h.Check(start.Add(90*time.Second), counts); hb != nil {
		t.Error("expected no heartbeat until the next interval")
	}
	if hb := h.Check(start.Add(2*time.Minute), counts); hb == nil {
		t.Error("expected second heartbeat")
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(0, start)
	if hb := h.Check(start.Add(time.Hour), EventCounts{}); hb != nil {
		t.Error("expected disabled heartbeat to return nil")
	}
}
