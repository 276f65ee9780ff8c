package statewatch

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/loykin/statewatch/internal/config"
	"github.com/loykin/statewatch/internal/describe"
	"github.com/loykin/statewatch/internal/diff"
	"github.com/loykin/statewatch/internal/history"
	"github.com/loykin/statewatch/internal/history/factory"
	"github.com/loykin/statewatch/internal/logger"
	"github.com/loykin/statewatch/internal/metrics"
	"github.com/loykin/statewatch/internal/observer"
	"github.com/loykin/statewatch/internal/record"
	iapi "github.com/loykin/statewatch/internal/server"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Event = record.Event

type State = record.State

type Failure = record.Failure

type DiffEntry = diff.Entry

type DiffKind = diff.Kind

type Options = observer.Options

type HistoryConfig = cfg.HistoryConfig

type HistorySink = history.Sink

type HistoryEntry = history.Entry

type LogConfig = logger.Config

// Observer is a thin facade over internal/observer.Observer.
// It provides a stable public API for embedding.

type Observer struct{ inner *observer.Observer }

func New() *Observer { return &Observer{inner: observer.New(observer.Options{})} }

func NewWithOptions(opts Options) *Observer {
	return &Observer{inner: observer.New(opts)}
}

func (o *Observer) OnCreate(subject string)         { o.inner.OnCreate(subject) }
func (o *Observer) OnEvent(subject string, v any)   { o.inner.OnEvent(subject, v) }
func (o *Observer) OnClose(subject string)          { o.inner.OnClose(subject) }
func (o *Observer) OnStateChange(subject string, prev, next any) {
	o.inner.OnStateChange(subject, prev, next)
}
func (o *Observer) OnError(subject string, err error, stack string) {
	o.inner.OnError(subject, err, stack)
}
func (o *Observer) EventsFor(subject string) []Event          { return o.inner.EventsFor(subject) }
func (o *Observer) StatesFor(subject string) []State          { return o.inner.StatesFor(subject) }
func (o *Observer) ActiveSubjects() []string                  { return o.inner.ActiveSubjects() }
func (o *Observer) CreatedAt(subject string) (time.Time, bool) { return o.inner.CreatedAt(subject) }
func (o *Observer) ClearSubject(subject string)               { o.inner.ClearSubject(subject) }
func (o *Observer) ClearAll()                                 { o.inner.ClearAll() }
func (o *Observer) Subscribe(fn func()) uint64                { return o.inner.Subscribe(fn) }
func (o *Observer) Unsubscribe(id uint64)                     { o.inner.Unsubscribe(id) }
func (o *Observer) SetHistorySinks(sinks ...HistorySink)      { o.inner.SetHistorySinks(sinks...) }

// Describe derives a one-line textual description of an arbitrary value.
func Describe(v any) string { return describe.Describe(v) }

// DiffStates computes the field-level difference between two state values.
func DiffStates(prev, next any) []DiffEntry { return diff.Diff(prev, next) }

// NewHistorySink creates a history sink from a DSN
// (sqlite, postgres, clickhouse, opensearch).
func NewHistorySink(dsn string) (HistorySink, error) {
	return factory.NewSinkFromDSN(dsn)
}

func LoadConfig(path string) (*cfg.Config, error) {
	return cfg.LoadConfig(path)
}

// NewLogger builds a slog logger from config. The returned closer flushes the
// rotating file writer when file output is configured.
func NewLogger(c LogConfig) (*slog.Logger, io.Closer, error) {
	return logger.New(c)
}

// NewHTTPServer starts an HTTP server exposing the inspection API using the given observer.
func NewHTTPServer(addr, basePath string, o *Observer) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, o.inner)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the default registry.
// It returns any immediate listen error; otherwise it runs the server in the caller goroutine.
func ServeMetrics(addr string) error {
	http.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           nil,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
