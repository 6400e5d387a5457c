package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordMutation("toggle_like", "ok")
	c.RecordMutation("toggle_like", "ok")
	c.RecordMutation("follow", "error")
	c.RecordSecondaryFailure("follow")
	c.RecordAIFallback("enhance")
	c.RecordFeedComposition(true)
	c.RecordNotification("sent")

	if got := testutil.ToFloat64(c.mutations.WithLabelValues("toggle_like", "ok")); got != 2 {
		t.Errorf("toggle_like ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.secondaryFails.WithLabelValues("follow")); got != 1 {
		t.Errorf("secondary follow = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.compositions.WithLabelValues("true")); got != 1 {
		t.Errorf("cached compositions = %v, want 1", got)
	}

	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 {
		t.Error("expected registered series")
	}
}

func TestNopSatisfiesRecorder(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordMutation("x", "ok")
	r.RecordFeedComposition(false)
}
