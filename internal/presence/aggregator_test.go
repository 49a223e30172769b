package presence

import (
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"workshop-app-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(exercise, step int) *model.Location {
	return &model.Location{
		WorkshopTitle: "Web Forms",
		Origin:        "http://localhost:5639",
		Exercise:      &model.ExerciseLocation{ExerciseNumber: exercise, StepNumber: step, Type: "problem"},
	}
}

func update(id string, seq uint64, loc *model.Location) Event {
	return Event{
		Type:      EventUpdate,
		Learner:   model.Learner{ID: id, Name: "Learner " + id},
		Location:  loc,
		Timestamp: epoch.Add(time.Duration(seq) * time.Second),
		Seq:       seq,
	}
}

func newTestAggregator(viewer *model.Location) *Aggregator {
	return NewAggregator(viewer, DefaultDistancePolicy(), Options{Now: func() time.Time { return epoch }})
}

func ids(v View) []string {
	out := make([]string, 0, len(v.Records))
	for _, r := range v.Records {
		out = append(out, r.Learner.ID)
	}
	return out
}

func storedIDs(a *Aggregator) []string {
	var out []string
	a.records.Range(func(key, _ any) bool {
		out = append(out, key.(string))
		return true
	})
	sort.Strings(out)
	return out
}

func TestAggregator_LaterObservationWins(t *testing.T) {
	agg := newTestAggregator(at(3, 1))

	require.True(t, agg.Update(update("A", 1, at(1, 1))))
	view := agg.Snapshot(17)
	require.Len(t, view.Records, 1)
	assert.InDelta(t, 0.5, view.Records[0].Score, 1e-9)

	require.True(t, agg.Update(update("A", 2, at(3, 1))))
	view = agg.Snapshot(17)
	require.Equal(t, 1, view.Total)
	assert.Equal(t, 1.0, view.Records[0].Score)
}

func TestAggregator_DropsOutOfOrder(t *testing.T) {
	agg := newTestAggregator(at(1, 1))

	require.True(t, agg.Update(update("A", 5, at(1, 3))))
	assert.False(t, agg.Update(update("A", 4, at(1, 1))))
	assert.False(t, agg.Update(update("A", 5, at(1, 1))), "equal sequence is a duplicate")

	view := agg.Snapshot(17)
	require.Len(t, view.Records, 1)
	assert.Equal(t, 3, view.Records[0].Location.Exercise.StepNumber)
}

func TestAggregator_TimestampOrderingWithoutSeq(t *testing.T) {
	agg := newTestAggregator(at(1, 1))

	later := update("A", 0, at(1, 2))
	later.Timestamp = epoch.Add(time.Minute)
	earlier := update("A", 0, at(1, 1))

	require.True(t, agg.Update(later))
	assert.False(t, agg.Update(earlier))

	tie := update("A", 0, at(1, 4))
	tie.Timestamp = later.Timestamp
	assert.True(t, agg.Update(tie), "ties go to the later arrival")
	assert.Equal(t, 4, agg.Snapshot(1).Records[0].Location.Exercise.StepNumber)
}

func TestAggregator_IncreasingSeqAlwaysShowsLatest(t *testing.T) {
	agg := newTestAggregator(at(1, 1))
	for seq := uint64(1); seq <= 50; seq++ {
		require.True(t, agg.Update(update("A", seq, at(1, int(seq)))))
		view := agg.Snapshot(17)
		require.Len(t, view.Records, 1)
		assert.Equal(t, int(seq), view.Records[0].Location.Exercise.StepNumber)
	}
}

func TestAggregator_OverflowAndLimit(t *testing.T) {
	agg := newTestAggregator(at(1, 1))
	for i := 1; i <= 18; i++ {
		agg.Update(update(fmt.Sprintf("user-%02d", i), 1, at(1, i)))
	}

	expanded := agg.Snapshot(17)
	assert.Len(t, expanded.Records, 17)
	assert.Equal(t, 18, expanded.Total)
	assert.Equal(t, 1, expanded.Overflow)

	collapsed := agg.Snapshot(0)
	assert.Empty(t, collapsed.Records)
	assert.Equal(t, 18, collapsed.Overflow)
}

func TestAggregator_OverflowNeverNegative(t *testing.T) {
	for total := 0; total <= 20; total++ {
		agg := newTestAggregator(nil)
		for i := 0; i < total; i++ {
			agg.Update(update(fmt.Sprintf("u%d", i), 1, nil))
		}
		for _, limit := range []int{-1, 0, 1, 5, 17, 40} {
			view := agg.Snapshot(limit)
			want := total - max(limit, 0)
			if want < 0 {
				want = 0
			}
			assert.Equal(t, want, view.Overflow, "total=%d limit=%d", total, limit)
			assert.LessOrEqual(t, len(view.Records), max(limit, 0)+1)
		}
	}
}

func TestAggregator_InsertionOrderIsStable(t *testing.T) {
	agg := newTestAggregator(at(1, 1))
	agg.Update(update("C", 1, at(2, 1)))
	agg.Update(update("A", 1, at(1, 1)))
	agg.Update(update("B", 1, at(1, 2)))

	// a closer location does not move A ahead of C
	agg.Update(update("C", 2, at(1, 1)))
	assert.Equal(t, []string{"C", "A", "B"}, ids(agg.Snapshot(17)))
}

func TestAggregator_LeaveRemovesAndKeepsTombstone(t *testing.T) {
	agg := newTestAggregator(at(1, 1))
	agg.Update(update("A", 1, at(1, 1)))
	agg.Update(update("B", 1, at(1, 1)))

	leave := update("A", 3, nil)
	leave.Type = EventLeave
	require.True(t, agg.Update(leave))
	assert.Equal(t, []string{"B"}, ids(agg.Snapshot(17)))

	assert.False(t, agg.Update(update("A", 2, at(1, 1))), "late update older than the leave")
	require.True(t, agg.Update(update("A", 4, at(1, 1))))
	assert.Equal(t, []string{"B", "A"}, ids(agg.Snapshot(17)), "a returning learner is appended")
}

func TestAggregator_PromoEntry(t *testing.T) {
	agg := NewAggregator(at(1, 1), DefaultDistancePolicy(), Options{Promo: DefaultPromo()})
	agg.Update(update("A", 1, at(1, 1)))

	view := agg.Snapshot(17)
	require.Len(t, view.Records, 2)
	assert.True(t, view.Records[1].Promotional)
	assert.Equal(t, "Tiffany Tunes", view.Records[1].Learner.Name)
	assert.Equal(t, 1, view.Total)
	assert.Equal(t, 0, view.Overflow)

	assert.Empty(t, agg.Snapshot(0).Records, "collapsed menus never show the promo")

	agg.Update(update("B", 1, at(1, 1)))
	assert.Len(t, agg.Snapshot(17).Records, 2)
}

func TestAggregator_SetViewerRescores(t *testing.T) {
	agg := newTestAggregator(at(1, 1))
	agg.Update(update("A", 1, at(2, 1)))
	assert.Less(t, agg.Snapshot(1).Records[0].Score, 1.0)

	agg.SetViewer(at(2, 1))
	assert.Equal(t, 1.0, agg.Snapshot(1).Records[0].Score)
}

func TestAggregator_ChangedSignal(t *testing.T) {
	agg := newTestAggregator(nil)
	agg.Update(update("A", 1, nil))

	select {
	case <-agg.Changed():
	default:
		t.Fatal("expected a change notification")
	}

	agg.Update(update("A", 1, nil))
	select {
	case <-agg.Changed():
		t.Fatal("dropped update must not notify")
	default:
	}
}

func TestAggregator_CloseIgnoresUpdates(t *testing.T) {
	agg := newTestAggregator(nil)
	agg.Update(update("A", 1, nil))
	agg.Close()

	assert.True(t, agg.Closed())
	assert.False(t, agg.Update(update("B", 1, nil)))
	assert.Equal(t, 0, agg.Len())
}

func TestAggregator_RejectsMissingIdentity(t *testing.T) {
	agg := newTestAggregator(nil)
	agg.Update(update("A", 1, nil))
	assert.False(t, agg.Update(Event{Type: EventUpdate}))
	assert.Equal(t, 1, agg.Len())
}

func TestAggregator_ConcurrentUpdates(t *testing.T) {
	agg := newTestAggregator(at(1, 1))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for seq := uint64(1); seq <= 200; seq++ {
				agg.Update(update(fmt.Sprintf("user-%d", w), seq, at(1, int(seq%5)+1)))
				agg.Snapshot(17)
			}
		}(w)
	}
	wg.Wait()

	view := agg.Snapshot(17)
	require.Len(t, view.Records, 8)
	for _, r := range view.Records {
		assert.Equal(t, epoch.Add(200*time.Second), r.UpdatedAt, r.Learner.ID)
	}
}

func TestAggregator_PrunesOldTombstones(t *testing.T) {
	now := epoch
	agg := NewAggregator(nil, DefaultDistancePolicy(), Options{
		Now:          func() time.Time { return now },
		TombstoneTTL: time.Minute,
	})

	leaveA := update("A", 2, nil)
	leaveA.Type = EventLeave
	agg.Update(update("A", 1, nil))
	require.True(t, agg.Update(leaveA))
	agg.Update(update("C", 1, nil))

	now = now.Add(2 * time.Minute)
	leaveB := update("B", 2, nil)
	leaveB.Type = EventLeave
	agg.Update(update("B", 1, nil))
	require.True(t, agg.Update(leaveB))

	assert.Equal(t, []string{"B", "C"}, storedIDs(agg))
	assert.False(t, agg.Update(update("B", 1, nil)), "fresh tombstone still rejects late updates")
	assert.Equal(t, []string{"C"}, ids(agg.Snapshot(17)))
}

func TestAggregator_CloseDuringUpdatesLeavesNothing(t *testing.T) {
	agg := newTestAggregator(at(1, 1))

	var wg sync.WaitGroup
	start := make(chan struct{})
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			<-start
			for seq := uint64(1); seq <= 200; seq++ {
				agg.Update(update(fmt.Sprintf("user-%d-%d", w, seq), 1, nil))
			}
		}(w)
	}
	close(start)
	agg.Close()
	wg.Wait()

	assert.Empty(t, storedIDs(agg))
	assert.Equal(t, 0, agg.Len())
}
