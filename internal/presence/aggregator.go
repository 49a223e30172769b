package presence

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"workshop-app-be/internal/model"
)

// Record is one learner as shown to a viewer.
type Record struct {
	Learner   model.Learner   `json:"user"`
	Location  *model.Location `json:"location,omitempty"`
	Score     float64         `json:"score"`
	UpdatedAt time.Time       `json:"updatedAt"`
	// Set only on the promotional entry.
	Link        string `json:"link,omitempty"`
	Promotional bool   `json:"promotional,omitempty"`
}

// View is a capped, ordered snapshot of the aggregator.
type View struct {
	Records  []Record `json:"records"`
	Total    int      `json:"total"`
	Overflow int      `json:"overflow"`
}

// PromoEntry is the extra identity surfaced when exactly one learner is
// present and the menu is expanded.
type PromoEntry struct {
	Learner model.Learner
	Link    string
}

func DefaultPromo() *PromoEntry {
	return &PromoEntry{
		Learner: model.Learner{ID: "tiffany-tunes", Name: "Tiffany Tunes", AvatarURL: "/img/tiffany.png"},
		Link:    "https://www.youtube.com/watch?v=w6Q3mHyzn78",
	}
}

// DefaultTombstoneTTL matches the feed's default stale window.
const DefaultTombstoneTTL = 5 * time.Minute

type Options struct {
	Promo *PromoEntry
	Now   func() time.Time
	// TombstoneTTL is how long a departed learner's last event is kept to
	// reject late updates.
	TombstoneTTL time.Duration
}

type entry struct {
	mu     sync.Mutex
	ev     Event
	order  uint64
	seen   bool
	live   bool
	leftAt time.Time
	// removed is set once the entry is out of the map; holders must reload.
	removed bool
}

// Aggregator holds the presence records one viewer sees. Updates for
// different learners never contend on the same lock.
type Aggregator struct {
	policy       ScorePolicy
	promo        *PromoEntry
	now          func() time.Time
	tombstoneTTL time.Duration

	viewerMu sync.RWMutex
	viewer   *model.Location

	records   sync.Map // learner id -> *entry
	nextOrder atomic.Uint64
	closed    atomic.Bool
	changed   chan struct{}
}

func NewAggregator(viewer *model.Location, policy ScorePolicy, opts Options) *Aggregator {
	if policy == nil {
		policy = DefaultDistancePolicy()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.TombstoneTTL
	if ttl <= 0 {
		ttl = DefaultTombstoneTTL
	}
	return &Aggregator{
		policy:       policy,
		promo:        opts.Promo,
		now:          now,
		tombstoneTTL: ttl,
		viewer:       viewer,
		changed:      make(chan struct{}, 1),
	}
}

// Update applies ev if it is newer than what is known for the learner.
// A leave event keeps a tombstone so late updates older than it stay
// dropped; tombstones older than the TTL are pruned when the next leave lands.
func (a *Aggregator) Update(ev Event) bool {
	if a.closed.Load() || ev.Learner.ID == "" {
		return false
	}
	id := ev.Learner.ID

	var e *entry
	for {
		v, _ := a.records.LoadOrStore(id, &entry{})
		e = v.(*entry)
		e.mu.Lock()
		if !e.removed {
			break
		}
		e.mu.Unlock()
	}

	// Close may have swept the map before our entry was stored.
	if a.closed.Load() {
		a.remove(id, e)
		e.mu.Unlock()
		return false
	}
	if e.seen && !ev.newerThan(e.ev) {
		e.mu.Unlock()
		return false
	}
	wasLive := e.live
	e.ev = ev
	e.seen = true
	e.live = ev.Type != EventLeave
	if e.live && !wasLive {
		e.order = a.nextOrder.Add(1)
	}
	live := e.live
	if !live {
		e.leftAt = a.now()
	}
	e.mu.Unlock()

	if !live {
		a.pruneTombstones(id)
	}
	if live || wasLive {
		a.notify()
	}
	return true
}

// pruneTombstones drops departed learners whose leave is older than the
// TTL. keep is the learner that just left.
func (a *Aggregator) pruneTombstones(keep string) {
	cutoff := a.now().Add(-a.tombstoneTTL)
	a.records.Range(func(key, v any) bool {
		if key == keep {
			return true
		}
		e := v.(*entry)
		e.mu.Lock()
		if e.seen && !e.live && !e.removed && e.leftAt.Before(cutoff) {
			a.remove(key, e)
		}
		e.mu.Unlock()
		return true
	})
}

// remove must be called with e.mu held.
func (a *Aggregator) remove(key any, e *entry) {
	e.removed = true
	a.records.CompareAndDelete(key, e)
}

// Publish lets the aggregator subscribe to a Feed.
func (a *Aggregator) Publish(ev Event) {
	a.Update(ev)
}

// SetViewer moves the viewer. Scores are derived at snapshot time so every
// record is rescored against the new location.
func (a *Aggregator) SetViewer(loc *model.Location) {
	if a.closed.Load() {
		return
	}
	a.viewerMu.Lock()
	a.viewer = loc
	a.viewerMu.Unlock()
	a.notify()
}

// Changed is signalled after any accepted update or viewer move.
func (a *Aggregator) Changed() <-chan struct{} {
	return a.changed
}

// Close tears the aggregator down. Later updates are ignored.
func (a *Aggregator) Close() {
	if a.closed.Swap(true) {
		return
	}
	a.records.Range(func(key, v any) bool {
		e := v.(*entry)
		e.mu.Lock()
		a.remove(key, e)
		e.mu.Unlock()
		return true
	})
}

func (a *Aggregator) Closed() bool {
	return a.closed.Load()
}

// Len is the number of live learners.
func (a *Aggregator) Len() int {
	n := 0
	a.records.Range(func(_, v any) bool {
		e := v.(*entry)
		e.mu.Lock()
		if e.live {
			n++
		}
		e.mu.Unlock()
		return true
	})
	return n
}

// Snapshot returns live records in first-seen order capped at limit.
// A negative limit behaves like 0.
func (a *Aggregator) Snapshot(limit int) View {
	if limit < 0 {
		limit = 0
	}

	type live struct {
		ev    Event
		order uint64
	}
	var all []live
	a.records.Range(func(_, v any) bool {
		e := v.(*entry)
		e.mu.Lock()
		if e.live {
			all = append(all, live{ev: e.ev, order: e.order})
		}
		e.mu.Unlock()
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].order < all[j].order })

	a.viewerMu.RLock()
	viewer := a.viewer
	a.viewerMu.RUnlock()
	now := a.now()

	total := len(all)
	shown := min(limit, total)
	view := View{
		Records:  make([]Record, 0, shown+1),
		Total:    total,
		Overflow: max(0, total-limit),
	}
	for _, l := range all[:shown] {
		view.Records = append(view.Records, Record{
			Learner:   l.ev.Learner,
			Location:  l.ev.Location,
			Score:     a.policy.Score(viewer, l.ev, now),
			UpdatedAt: l.ev.Timestamp,
		})
	}
	if a.promo != nil && limit > 0 && total == 1 {
		view.Records = append(view.Records, Record{
			Learner:     a.promo.Learner,
			Score:       1,
			Link:        a.promo.Link,
			Promotional: true,
		})
	}
	return view
}

func (a *Aggregator) notify() {
	select {
	case a.changed <- struct{}{}:
	default:
	}
}
