package monitoring

import (
	"errors"
	"testing"
	"time"
)

func TestStatsRecord(t *testing.T) {
	s := NewStats()
	s.Record("price", 10*time.Millisecond, nil)
	s.Record("price", 30*time.Millisecond, errors.New("bad input"))
	s.Record("satisfaction", time.Millisecond, nil)

	snap := s.Snapshot()
	price := snap["price"]
	if price.Requests != 2 || price.Errors != 1 {
		t.Fatalf("unexpected price counters: %+v", price)
	}
	if price.AvgLatency != 20*time.Millisecond {
		t.Fatalf("expected 20ms average, got %v", price.AvgLatency)
	}
	if price.LastLatency != 30*time.Millisecond {
		t.Fatalf("expected 30ms last latency, got %v", price.LastLatency)
	}
	if snap["satisfaction"].Requests != 1 {
		t.Fatalf("unexpected satisfaction counters: %+v", snap["satisfaction"])
	}
	if s.Uptime() < 0 {
		t.Fatal("uptime must not be negative")
	}
}
