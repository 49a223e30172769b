package presence

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"workshop-app-be/internal/pkg/logger"
	"workshop-app-be/internal/pkg/metrics"

	"github.com/patrickmn/go-cache"
)

type cachedEvent struct {
	ev    Event
	order uint64
}

// Feed is the process-wide view of the presence stream. It remembers the
// last event of every learner for staleAfter and fans events out to
// subscribers, typically one Aggregator per viewer connection.
type Feed struct {
	cache      *cache.Cache
	staleAfter time.Duration
	keyLocks   sync.Map // learner id -> *sync.Mutex
	order      atomic.Uint64

	mu   sync.RWMutex
	subs map[string]Sink

	logger  logger.ILogger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewFeed(staleAfter time.Duration, log logger.ILogger, m *metrics.Metrics) *Feed {
	if staleAfter <= 0 {
		staleAfter = 5 * time.Minute
	}
	cleanup := max(staleAfter/2, time.Second)
	f := &Feed{
		cache:      cache.New(staleAfter, cleanup),
		staleAfter: staleAfter,
		subs:       make(map[string]Sink),
		logger:     log,
		metrics:    m,
		now:        time.Now,
	}
	f.cache.OnEvicted(f.onEvicted)
	return f
}

func (f *Feed) lockFor(id string) *sync.Mutex {
	v, _ := f.keyLocks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Publish records ev and forwards it to every subscriber unless an equal or
// newer event for the same learner is already known.
func (f *Feed) Publish(ev Event) {
	if ev.Learner.ID == "" {
		return
	}
	mu := f.lockFor(ev.Learner.ID)
	mu.Lock()
	prev, found := f.get(ev.Learner.ID)
	if found && !ev.newerThan(prev.ev) {
		mu.Unlock()
		return
	}
	next := cachedEvent{ev: ev, order: prev.order}
	if ev.Type != EventLeave && (!found || prev.ev.Type == EventLeave) {
		next.order = f.order.Add(1)
	}
	// Leave events stay cached as tombstones until they expire.
	f.cache.Set(ev.Learner.ID, next, cache.DefaultExpiration)
	mu.Unlock()

	f.broadcast(ev)
	f.metrics.SetPresenceLearners(f.Len())
}

func (f *Feed) get(id string) (cachedEvent, bool) {
	v, ok := f.cache.Get(id)
	if !ok {
		return cachedEvent{}, false
	}
	return v.(cachedEvent), true
}

// onEvicted turns an expired learner into a leave event.
func (f *Feed) onEvicted(id string, v interface{}) {
	expired := v.(cachedEvent)
	if expired.ev.Type == EventLeave {
		return
	}

	mu := f.lockFor(id)
	mu.Lock()
	if _, replaced := f.cache.Get(id); replaced {
		mu.Unlock()
		return
	}
	// The learner's next update carries a higher seq even when its clock lags ours.
	leave := Event{Type: EventLeave, Learner: expired.ev.Learner, Timestamp: f.now(), Seq: expired.ev.Seq}
	f.cache.Set(id, cachedEvent{ev: leave, order: expired.order}, cache.DefaultExpiration)
	mu.Unlock()

	f.logger.Debug("PresenceFeed", "Learner went stale", map[string]interface{}{"learner_id": id})
	f.broadcast(leave)
	f.metrics.SetPresenceLearners(f.Len())
}

func (f *Feed) broadcast(ev Event) {
	f.mu.RLock()
	subs := make([]Sink, 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	f.mu.RUnlock()

	for _, s := range subs {
		s.Publish(ev)
	}
}

// Subscribe registers s under id and seeds it with every live learner in
// first-seen order. The returned func unsubscribes.
func (f *Feed) Subscribe(id string, s Sink) func() {
	f.mu.Lock()
	f.subs[id] = s
	f.mu.Unlock()

	for _, ev := range f.Live() {
		s.Publish(ev)
	}
	return func() { f.Unsubscribe(id) }
}

func (f *Feed) Unsubscribe(id string) {
	f.mu.Lock()
	delete(f.subs, id)
	f.mu.Unlock()
}

func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Live returns the last event of every present learner in first-seen order.
func (f *Feed) Live() []Event {
	items := f.cache.Items()
	live := make([]cachedEvent, 0, len(items))
	for _, item := range items {
		c := item.Object.(cachedEvent)
		if c.ev.Type != EventLeave {
			live = append(live, c)
		}
	}
	sort.Slice(live, func(i, j int) bool { return live[i].order < live[j].order })

	events := make([]Event, len(live))
	for i, c := range live {
		events[i] = c.ev
	}
	return events
}

// StaleAfter is how long a silent learner stays live.
func (f *Feed) StaleAfter() time.Duration {
	return f.staleAfter
}

func (f *Feed) Len() int {
	return len(f.Live())
}

// Sweep expires stale learners now instead of waiting for the janitor.
func (f *Feed) Sweep() {
	f.cache.DeleteExpired()
}
