package match

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Bounds on the bounded, rate-limited replay log. Grounded on the
// teacher's EventLog constants (internal/game/event_log.go): a fixed-size
// circular buffer plus a global and a per-source token-bucket limiter,
// so a flood of external commands degrades gracefully (oldest entries
// drop) instead of growing the log without bound.
const (
	defaultLogCapacity  = 20_000
	globalEventsPerSec  = 500
	perSourceEventsBurst = 20
	sourceLimiterCleanup = 5 * time.Minute
)

type sourceLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// EventLog is the match's bounded circular buffer of RecordedEvents,
// guarded by a global rate limiter and a per-source (per player/team id)
// limiter. Grounded on the teacher's EventLog: same circular-buffer +
// dual-limiter shape, simplified from its async disk-writer goroutines
// to an in-memory log since the replay record is built from the whole
// buffer at match end rather than streamed to a file tick by tick.
type EventLog struct {
	mu       sync.Mutex
	buffer   []RecordedEvent
	writePos uint64
	count    int

	globalLimiter  *rate.Limiter
	sourceLimiters sync.Map // string -> *sourceLimiterEntry

	dropped atomic.Uint64
	total   atomic.Uint64

	lastCleanup time.Time
}

// NewEventLog builds a log bounded to capacity entries (0 means
// defaultLogCapacity).
func NewEventLog(capacity int) *EventLog {
	if capacity <= 0 {
		capacity = defaultLogCapacity
	}
	return &EventLog{
		buffer:        make([]RecordedEvent, capacity),
		globalLimiter: rate.NewLimiter(rate.Limit(globalEventsPerSec), globalEventsPerSec/10+1),
		lastCleanup:   time.Now(),
	}
}

// Append records an event, subject to the global and (if source is
// non-empty) per-source rate limit. Returns false if the event was
// dropped for rate-limiting reasons; the event is still recorded even
// when the buffer wraps (oldest entry is silently overwritten, mirroring
// the teacher's "drop oldest under attack" backpressure policy).
func (l *EventLog) Append(ev RecordedEvent, source string) bool {
	if !l.globalLimiter.Allow() {
		l.dropped.Add(1)
		return false
	}
	if source != "" {
		lim := l.sourceLimiter(source)
		if !lim.Allow() {
			l.dropped.Add(1)
			return false
		}
	}

	l.mu.Lock()
	idx := l.writePos % uint64(len(l.buffer))
	l.buffer[idx] = ev
	l.writePos++
	if l.count < len(l.buffer) {
		l.count++
	}
	l.mu.Unlock()

	l.total.Add(1)
	l.maybeCleanup()
	return true
}

func (l *EventLog) sourceLimiter(source string) *rate.Limiter {
	if v, ok := l.sourceLimiters.Load(source); ok {
		e := v.(*sourceLimiterEntry)
		e.lastUsed = time.Now()
		return e.limiter
	}
	entry := &sourceLimiterEntry{
		limiter:  rate.NewLimiter(rate.Limit(perSourceEventsBurst), perSourceEventsBurst),
		lastUsed: time.Now(),
	}
	actual, _ := l.sourceLimiters.LoadOrStore(source, entry)
	return actual.(*sourceLimiterEntry).limiter
}

func (l *EventLog) maybeCleanup() {
	now := time.Now()
	l.mu.Lock()
	due := now.Sub(l.lastCleanup) > sourceLimiterCleanup
	if due {
		l.lastCleanup = now
	}
	l.mu.Unlock()
	if !due {
		return
	}
	cutoff := now.Add(-sourceLimiterCleanup)
	l.sourceLimiters.Range(func(key, value any) bool {
		if value.(*sourceLimiterEntry).lastUsed.Before(cutoff) {
			l.sourceLimiters.Delete(key)
		}
		return true
	})
}

// Snapshot returns all currently retained events in chronological order.
func (l *EventLog) Snapshot() []RecordedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]RecordedEvent, 0, l.count)
	if l.count < len(l.buffer) {
		out = append(out, l.buffer[:l.count]...)
		return out
	}
	start := l.writePos % uint64(len(l.buffer))
	out = append(out, l.buffer[start:]...)
	out = append(out, l.buffer[:start]...)
	return out
}

// Stats reports the log's DoS-monitoring counters.
func (l *EventLog) Stats() (total, dropped uint64, pending int) {
	l.mu.Lock()
	pending = l.count
	l.mu.Unlock()
	return l.total.Load(), l.dropped.Load(), pending
}
