package genrelay

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/genrelay/internal/normalize"
	"github.com/jpalmerr/genrelay/internal/poller"
)

func TestObserve_CallbacksInOrder(t *testing.T) {
	var order []int
	relay, err := New(
		WithLogger(testLogger()),
		WithProgressCallback(func(Progress) { order = append(order, 1) }),
		WithProgressCallback(func(Progress) { order = append(order, 2) }),
		WithProgressCallback(func(Progress) { order = append(order, 3) }),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	relay.observe(poller.Observation{PollID: "p1", RequestID: "r1", Attempt: 1})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("callback order = %v, want [1 2 3]", order)
	}
}

func TestObserve_FieldsMapped(t *testing.T) {
	var got Progress
	relay, _ := New(
		WithLogger(testLogger()),
		WithProgressCallback(func(p Progress) { got = p }),
	)

	checked := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	relay.observe(poller.Observation{
		PollID:    "p1",
		RequestID: "r1",
		Attempt:   4,
		Status:    normalize.StatusPending,
		Progress:  70,
		Elapsed:   45 * time.Second,
		CheckedAt: checked,
		Err:       errors.New("connection error: reset"),
	})

	if got.PollID != "p1" || got.RequestID != "r1" || got.Attempt != 4 {
		t.Errorf("ids = %+v", got)
	}
	if got.Status != "pending" || got.Percent != 70 {
		t.Errorf("status = %q %d", got.Status, got.Percent)
	}
	if got.Elapsed != 45*time.Second || !got.CheckedAt.Equal(checked) {
		t.Errorf("timing = %v %v", got.Elapsed, got.CheckedAt)
	}
	if !got.Failed() {
		t.Error("Failed() = false, want true")
	}

	stored := relay.Progress()
	if len(stored) != 1 {
		t.Fatalf("Progress() = %d, want 1", len(stored))
	}
	if stored[0].Err == nil || stored[0].Err.Error() != "connection error: reset" {
		t.Errorf("stored Err = %v", stored[0].Err)
	}
	if stored[0].Elapsed != 45*time.Second {
		t.Errorf("stored Elapsed = %v", stored[0].Elapsed)
	}
}

func TestObserve_StoreUpdatedBeforeCallbacks(t *testing.T) {
	var seen int
	var relay *Relay
	relay, _ = New(
		WithLogger(testLogger()),
		WithProgressCallback(func(Progress) { seen = len(relay.Progress()) }),
	)

	relay.observe(poller.Observation{PollID: "p1"})

	if seen != 1 {
		t.Errorf("store had %d records when callback ran, want 1", seen)
	}
}

func TestObserve_PanicRecovered(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var after atomic.Int32
	relay, _ := New(
		WithLogger(logger),
		WithProgressCallback(func(Progress) { panic("callback exploded") }),
		WithProgressCallback(func(Progress) { after.Add(1) }),
	)

	relay.observe(poller.Observation{PollID: "p1", RequestID: "r1"})

	if after.Load() != 1 {
		t.Error("callback after a panicking one should still run")
	}
	logs := buf.String()
	if !strings.Contains(logs, "progress callback panicked") || !strings.Contains(logs, "correlation_id") {
		t.Errorf("panic not logged with correlation id: %s", logs)
	}
}

func TestObserve_NoCallbacksStillStores(t *testing.T) {
	relay, _ := New(WithLogger(testLogger()))

	relay.observe(poller.Observation{PollID: "p1"})
	relay.observe(poller.Observation{PollID: "p2"})

	if len(relay.Progress()) != 2 {
		t.Errorf("Progress() = %d, want 2", len(relay.Progress()))
	}
}

func TestProgressHistory_Bounded(t *testing.T) {
	relay, _ := New(WithLogger(testLogger()), WithProgressHistory(2))

	for _, id := range []string{"a", "b", "c"} {
		relay.observe(poller.Observation{PollID: id})
	}

	got := relay.Progress()
	if len(got) != 2 || got[0].PollID != "b" || got[1].PollID != "c" {
		t.Errorf("Progress() = %+v, want b, c", got)
	}
}
