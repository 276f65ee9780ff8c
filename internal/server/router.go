package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/loykin/statewatch/internal/diff"
	"github.com/loykin/statewatch/internal/observer"
)

// Router provides embeddable HTTP handlers for inspecting an Observer.
// Endpoints:
//
//	GET  {basePath}/subjects             active subjects, newest first
//	GET  {basePath}/events?subject=...   retained event records
//	GET  {basePath}/states?subject=...   retained state transition records
//	GET  {basePath}/diff?subject=...&index=N   field diff of transition N (default: latest)
//	POST {basePath}/ingest               remote lifecycle hook delivery
//	POST {basePath}/clear?subject=...    clear one subject's logs
//	POST {basePath}/clear-all            clear everything
//
// basePath may be empty or start with '/'; no trailing slash.
type Router struct {
	obs      *observer.Observer
	basePath string
}

// NewRouter constructs a new Router with configurable basePath.
// Example basePath: "/api" results in /api/subjects, /api/events, ...
func NewRouter(obs *observer.Observer, basePath string) *Router {
	return &Router{obs: obs, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/subjects", r.handleSubjects)
	group.GET("/events", r.handleEvents)
	group.GET("/states", r.handleStates)
	group.GET("/diff", r.handleDiff)
	group.POST("/ingest", r.handleIngest)
	group.POST("/clear", r.handleClear)
	group.POST("/clear-all", r.handleClearAll)
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr, basePath string, obs *observer.Observer) (*http.Server, error) {
	r := NewRouter(obs, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

type subjectResp struct {
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type eventResp struct {
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	IsError     bool      `json:"is_error"`
	Timestamp   time.Time `json:"timestamp"`
}

type stateResp struct {
	Subject   string    `json:"subject"`
	Prev      string    `json:"prev"`
	Next      string    `json:"next"`
	Timestamp time.Time `json:"timestamp"`
}

type diffResp struct {
	Subject string       `json:"subject"`
	Index   int          `json:"index"`
	Changes []diff.Entry `json:"changes"`
}

func (r *Router) handleSubjects(c *gin.Context) {
	names := r.obs.ActiveSubjects()
	out := make([]subjectResp, 0, len(names))
	for _, n := range names {
		s := subjectResp{Name: n}
		if t, ok := r.obs.CreatedAt(n); ok {
			s.CreatedAt = &t
		}
		out = append(out, s)
	}
	c.JSON(http.StatusOK, out)
}

func (r *Router) handleEvents(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, errorResp{Error: "subject required"})
		return
	}
	events := r.obs.EventsFor(subject)
	out := make([]eventResp, 0, len(events))
	for _, e := range events {
		out = append(out, eventResp{
			Subject:     e.Subject,
			Description: e.Description(),
			IsError:     e.IsError(),
			Timestamp:   e.Timestamp,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (r *Router) handleStates(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, errorResp{Error: "subject required"})
		return
	}
	states := r.obs.StatesFor(subject)
	out := make([]stateResp, 0, len(states))
	for _, s := range states {
		out = append(out, stateResp{
			Subject:   s.Subject,
			Prev:      s.PrevDescription(),
			Next:      s.NextDescription(),
			Timestamp: s.Timestamp,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (r *Router) handleDiff(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, errorResp{Error: "subject required"})
		return
	}
	states := r.obs.StatesFor(subject)
	if len(states) == 0 {
		c.JSON(http.StatusNotFound, errorResp{Error: "no recorded transitions for subject"})
		return
	}
	index := len(states) - 1
	if raw := c.Query("index"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResp{Error: "invalid index: " + err.Error()})
			return
		}
		index = i
	}
	if index < 0 || index >= len(states) {
		c.JSON(http.StatusBadRequest, errorResp{Error: "index out of range"})
		return
	}
	rec := states[index]
	changes := diff.Diff(rec.Prev, rec.Next)
	if changes == nil {
		changes = []diff.Entry{}
	}
	c.JSON(http.StatusOK, diffResp{Subject: subject, Index: index, Changes: changes})
}

// ingestReq mirrors the lifecycle hooks for remote delivery. Payload values
// arrive as opaque JSON and are recorded as-is.
type ingestReq struct {
	Type    string `json:"type"` // create, event, state, error, close
	Subject string `json:"subject"`
	Payload any    `json:"payload"`
	Prev    any    `json:"prev"`
	Next    any    `json:"next"`
	Error   string `json:"error"`
	Stack   string `json:"stack"`
}

func (r *Router) handleIngest(c *gin.Context) {
	var req ingestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Subject == "" {
		c.JSON(http.StatusBadRequest, errorResp{Error: "subject required"})
		return
	}
	switch req.Type {
	case "create":
		r.obs.OnCreate(req.Subject)
	case "event":
		r.obs.OnEvent(req.Subject, req.Payload)
	case "state":
		r.obs.OnStateChange(req.Subject, req.Prev, req.Next)
	case "error":
		r.obs.OnError(req.Subject, errors.New(req.Error), req.Stack)
	case "close":
		r.obs.OnClose(req.Subject)
	default:
		c.JSON(http.StatusBadRequest, errorResp{Error: "unknown type: " + req.Type})
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true})
}

func (r *Router) handleClear(c *gin.Context) {
	subject := c.Query("subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, errorResp{Error: "subject required"})
		return
	}
	r.obs.ClearSubject(subject)
	c.JSON(http.StatusOK, okResp{OK: true})
}

func (r *Router) handleClearAll(c *gin.Context) {
	r.obs.ClearAll()
	c.JSON(http.StatusOK, okResp{OK: true})
}

// sanitizeBase normalizes a base path: empty stays empty, otherwise a single
// leading '/' and no trailing slash.
func sanitizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimRight(base, "/")
}
