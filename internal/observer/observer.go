package observer

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/loykin/statewatch/internal/history"
	"github.com/loykin/statewatch/internal/metrics"
	"github.com/loykin/statewatch/internal/record"
	"github.com/loykin/statewatch/internal/ringlog"
)

// Options configures an Observer at construction time.
type Options struct {
	// MaxRecords bounds each subject's event log and state log separately.
	// Values below 1 fall back to ringlog.DefaultCapacity.
	MaxRecords int
	// Logger receives diagnostics for swallowed failures (listener panics,
	// sink errors). Defaults to slog.Default().
	Logger *slog.Logger
}

// Observer is the central registry for observed subjects. It receives the
// lifecycle hooks of an external state-machine framework, retains bounded
// per-subject histories, and notifies registered listeners after every
// mutation.
//
// All lifecycle hooks are non-throwing: internal describe/listener/sink
// failures are logged and never surface to the caller.
type Observer struct {
	mu         sync.RWMutex
	maxRecords int
	logger     *slog.Logger

	active  map[string]struct{}
	created map[string]time.Time
	events  map[string]*ringlog.Log[record.Event]
	states  map[string]*ringlog.Log[record.State]

	listeners []listener
	nextID    uint64

	sinks []history.Sink
}

type listener struct {
	id uint64
	fn func()
}

func New(opts Options) *Observer {
	maxRecords := opts.MaxRecords
	if maxRecords < 1 {
		maxRecords = ringlog.DefaultCapacity
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{
		maxRecords: maxRecords,
		logger:     logger,
		active:     make(map[string]struct{}),
		created:    make(map[string]time.Time),
		events:     make(map[string]*ringlog.Log[record.Event]),
		states:     make(map[string]*ringlog.Log[record.State]),
	}
}

// SetHistorySinks configures external history sinks (SQLite, Postgres,
// ClickHouse, OpenSearch). Passing no sinks clears the list.
func (o *Observer) SetHistorySinks(sinks ...history.Sink) {
	o.mu.Lock()
	o.sinks = append([]history.Sink(nil), sinks...)
	o.mu.Unlock()
}

// OnCreate registers a subject in the active set and stamps its creation
// time. Re-creation under the same name overwrites the timestamp.
func (o *Observer) OnCreate(subject string) {
	now := time.Now().UTC()
	o.mu.Lock()
	o.active[subject] = struct{}{}
	o.created[subject] = now
	n := len(o.active)
	o.mu.Unlock()
	metrics.IncCreate(subject)
	metrics.SetActiveSubjects(n)
	o.notify()
}

// OnEvent records an event for the subject, creating its log on demand.
func (o *Observer) OnEvent(subject string, payload any) {
	rec := record.NewEvent(subject, payload)
	o.appendEvent(subject, rec)
	metrics.IncEvent(subject)
	o.export(history.Entry{
		Kind:        history.KindEvent,
		Subject:     subject,
		Description: timedDescription(rec.Description),
		OccurredAt:  rec.Timestamp,
	})
	o.notify()
}

// OnStateChange records a transition from previousState to nextState.
func (o *Observer) OnStateChange(subject string, previousState, nextState any) {
	rec := record.NewState(subject, previousState, nextState)
	o.mu.Lock()
	l := o.states[subject]
	if l == nil {
		l = ringlog.New[record.State](o.maxRecords)
		o.states[subject] = l
	}
	evicted := l.Len() == l.Cap()
	l.Append(rec)
	o.mu.Unlock()
	if evicted {
		metrics.IncEviction(subject, "states")
	}
	metrics.IncStateChange(subject)
	o.export(history.Entry{
		Kind:            history.KindState,
		Subject:         subject,
		Description:     timedDescription(rec.NextDescription),
		PrevDescription: timedDescription(rec.PrevDescription),
		OccurredAt:      rec.Timestamp,
	})
	o.notify()
}

// OnError records a synthetic error event carrying err and the stack trace
// captured by the caller.
func (o *Observer) OnError(subject string, err error, stack string) {
	rec := record.NewFailure(subject, err, stack)
	o.appendEvent(subject, rec)
	metrics.IncError(subject)
	o.export(history.Entry{
		Kind:        history.KindError,
		Subject:     subject,
		Description: timedDescription(rec.Description),
		OccurredAt:  rec.Timestamp,
	})
	o.notify()
}

// OnClose removes the subject from the active set. Its recorded history is
// retained until cleared explicitly.
func (o *Observer) OnClose(subject string) {
	o.mu.Lock()
	delete(o.active, subject)
	n := len(o.active)
	o.mu.Unlock()
	metrics.SetActiveSubjects(n)
	o.notify()
}

func (o *Observer) appendEvent(subject string, rec record.Event) {
	o.mu.Lock()
	l := o.events[subject]
	if l == nil {
		l = ringlog.New[record.Event](o.maxRecords)
		o.events[subject] = l
	}
	evicted := l.Len() == l.Cap()
	l.Append(rec)
	o.mu.Unlock()
	if evicted {
		metrics.IncEviction(subject, "events")
	}
}

// EventsFor returns the retained event records for a subject, oldest first.
// Unknown subjects yield an empty slice, never an error.
func (o *Observer) EventsFor(subject string) []record.Event {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if l := o.events[subject]; l != nil {
		return l.Items()
	}
	return nil
}

// StatesFor returns the retained state transition records for a subject,
// oldest first.
func (o *Observer) StatesFor(subject string) []record.State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if l := o.states[subject]; l != nil {
		return l.Items()
	}
	return nil
}

// CreatedAt returns a subject's creation timestamp, if one was recorded.
func (o *Observer) CreatedAt(subject string) (time.Time, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	t, ok := o.created[subject]
	return t, ok
}

// ActiveSubjects returns the currently active subject names, most recently
// created first. Subjects without a recorded creation timestamp sort after
// all timestamped ones; ties fall back to name order.
func (o *Observer) ActiveSubjects() []string {
	o.mu.RLock()
	names := make([]string, 0, len(o.active))
	for name := range o.active {
		names = append(names, name)
	}
	created := make(map[string]time.Time, len(o.created))
	for name, t := range o.created {
		created[name] = t
	}
	o.mu.RUnlock()

	sort.Slice(names, func(i, j int) bool {
		ti, iok := created[names[i]]
		tj, jok := created[names[j]]
		switch {
		case iok && jok:
			if !ti.Equal(tj) {
				return ti.After(tj)
			}
			return names[i] < names[j]
		case iok:
			return true
		case jok:
			return false
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// ClearSubject empties the subject's event and state logs. The subject stays
// in the active set if it was active.
func (o *Observer) ClearSubject(subject string) {
	o.mu.Lock()
	if l := o.events[subject]; l != nil {
		l.Clear()
	}
	if l := o.states[subject]; l != nil {
		l.Clear()
	}
	o.mu.Unlock()
	o.notify()
}

// ClearAll empties every log, the active set and all creation timestamps.
func (o *Observer) ClearAll() {
	o.mu.Lock()
	o.active = make(map[string]struct{})
	o.created = make(map[string]time.Time)
	o.events = make(map[string]*ringlog.Log[record.Event])
	o.states = make(map[string]*ringlog.Log[record.State])
	o.mu.Unlock()
	metrics.SetActiveSubjects(0)
	o.notify()
}

// Subscribe registers a callback invoked after every mutating operation and
// returns an id for Unsubscribe. Callbacks run in registration order; a
// panicking callback is isolated so the remaining ones still fire.
func (o *Observer) Subscribe(fn func()) uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.nextID++
	id := o.nextID
	o.listeners = append(o.listeners, listener{id: id, fn: fn})
	return id
}

// Unsubscribe removes a previously registered callback. Unknown ids are
// ignored.
func (o *Observer) Unsubscribe(id uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, l := range o.listeners {
		if l.id == id {
			o.listeners = append(o.listeners[:i], o.listeners[i+1:]...)
			return
		}
	}
}

// notify invokes all listeners on a snapshot of the registration list. It
// runs after the triggering mutation has been fully applied and the lock
// released, so listeners may reenter the read API.
func (o *Observer) notify() {
	o.mu.RLock()
	snapshot := append([]listener(nil), o.listeners...)
	o.mu.RUnlock()
	for _, l := range snapshot {
		o.invoke(l)
	}
}

func (o *Observer) invoke(l listener) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncListenerFailure()
			o.logger.Warn("observer listener panicked", "listener_id", l.id, "panic", r)
		}
	}()
	l.fn()
}

// timedDescription derives a description while feeding the duration
// histogram.
func timedDescription(fn func() string) string {
	start := time.Now()
	s := fn()
	metrics.ObserveDescribeDuration(time.Since(start).Seconds())
	return s
}

// export sends an entry to every configured sink, best effort. Sink errors
// are logged and never propagated to the lifecycle-hook caller.
func (o *Observer) export(e history.Entry) {
	o.mu.RLock()
	sinks := append([]history.Sink(nil), o.sinks...)
	o.mu.RUnlock()
	if len(sinks) == 0 {
		return
	}
	ctx := context.Background()
	for _, s := range sinks {
		if err := s.Send(ctx, e); err != nil {
			o.logger.Warn("history sink send failed", "subject", e.Subject, "kind", string(e.Kind), "error", err)
		}
	}
}
