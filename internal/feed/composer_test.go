package feed

import (
	"reflect"
	"testing"
	"time"

	models "io.winapps.starlight/internal/models/account"
)

type countingRecorder struct {
	hits, misses int
}

func (r *countingRecorder) RecordMutation(string, string) {}
func (r *countingRecorder) RecordSecondaryFailure(string) {}
func (r *countingRecorder) RecordAIFallback(string)       {}
func (r *countingRecorder) RecordNotification(string)     {}
func (r *countingRecorder) RecordFeedComposition(cached bool) {
	if cached {
		r.hits++
	} else {
		r.misses++
	}
}

func TestComposer_MemoizesPerRevisionAndFollowSet(t *testing.T) {
	rec := &countingRecorder{}
	c := NewComposer(time.Minute, rec)
	in := []models.Entry{entry("a", "A", 2), entry("b", "B", 1)}

	first := c.Compose(1, in, []string{"B", "C"})
	second := c.Compose(1, in, []string{"C", "B"})
	if !reflect.DeepEqual(ids(first), []string{"b", "a"}) || !reflect.DeepEqual(ids(second), ids(first)) {
		t.Fatalf("unexpected orderings %v %v", ids(first), ids(second))
	}
	if rec.hits != 1 || rec.misses != 1 {
		t.Errorf("hits=%d misses=%d, want 1/1", rec.hits, rec.misses)
	}

	c.Compose(2, in, []string{"B", "C"})
	if rec.misses != 2 {
		t.Errorf("new revision should recompute, misses=%d", rec.misses)
	}
}

func TestComposer_NoFollowsSkipsCache(t *testing.T) {
	rec := &countingRecorder{}
	c := NewComposer(time.Minute, rec)
	in := []models.Entry{entry("a", "A", 2)}
	if got := c.Compose(1, in, nil); !reflect.DeepEqual(got, in) {
		t.Errorf("Compose without follows = %v", ids(got))
	}
	if rec.hits+rec.misses != 0 {
		t.Error("identity path should not touch the memo")
	}
}

func TestFingerprintOrderInsensitive(t *testing.T) {
	if fingerprint([]string{"a", "b"}) != fingerprint([]string{"b", "a"}) {
		t.Error("fingerprint depends on order")
	}
	if fingerprint([]string{"ab"}) == fingerprint([]string{"a", "b"}) {
		t.Error("fingerprint should separate ids")
	}
}
