// Package web exposes the loaded colloscopes over HTTP: a small JSON API
// for chat-bot style consumers plus the grid page the capture pipeline
// screenshots.
package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"colloscope/internal/capture"
	"colloscope/internal/config"
	"colloscope/internal/export"
	appLog "colloscope/internal/log"
	"colloscope/internal/model"
	"colloscope/internal/query"
)

// maxNextLimit caps how many sessions /api/next returns in one response.
const maxNextLimit = 12

// Server provides HTTP access to the schedule store.
type Server struct {
	cfg    *config.Config
	store  *model.Store
	engine *export.Engine
	mux    *http.ServeMux
}

// NewServer constructs a new Server over an already-populated store.
func NewServer(cfg *config.Config, store *model.Store, engine *export.Engine) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		engine: engine,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/classes", s.handleClasses)
	s.mux.HandleFunc("/api/next", s.handleNext)
	s.mux.HandleFunc("/api/export", s.handleExport)
	s.mux.HandleFunc("/grid", s.handleGrid)
	s.mux.HandleFunc("/grid.png", s.handleGridPNG)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// classesResponse is the JSON response shape for /api/classes.
type classesResponse struct {
	Classes  []classDTO `json:"classes"`
	LoadedAt time.Time  `json:"loaded_at"`
}

type classDTO struct {
	Class  string   `json:"class"`
	Groups []string `json:"groups"`
	Colles int      `json:"colles"`
}

func (s *Server) handleClasses(w http.ResponseWriter, _ *http.Request) {
	classes := s.store.Classes()
	dtos := make([]classDTO, 0, len(classes))
	for _, class := range classes {
		c, ok := s.store.Get(class)
		if !ok {
			continue
		}
		dtos = append(dtos, classDTO{
			Class:  c.Class,
			Groups: c.Groups,
			Colles: len(c.Colles),
		})
	}
	writeJSON(w, http.StatusOK, classesResponse{Classes: dtos, LoadedAt: s.store.LoadedAt()})
}

// colleDTO is a JSON-friendly view of one session.
type colleDTO struct {
	Subject   string    `json:"subject"`
	Professor string    `json:"professor"`
	Classroom string    `json:"classroom"`
	Group     string    `json:"group"`
	Start     time.Time `json:"start"`
	LongDate  string    `json:"long_date"`
	Time      string    `json:"time"`
}

// handleNext returns the next sessions for a group.
//
// GET /api/next?class=mpi&group=3&limit=5
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	class := q.Get("class")
	group := q.Get("group")
	if class == "" || group == "" {
		writeError(w, http.StatusBadRequest, "class and group are required")
		return
	}
	limit := parseIntDefault(q.Get("limit"), 5)
	if limit <= 0 {
		limit = 5
	}
	if limit > maxNextLimit {
		limit = maxNextLimit
	}

	c, ok := s.store.Get(class)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown class")
		return
	}

	upcoming := query.Upcoming(c.Colles, group, time.Now(), limit, c.Holidays)

	dtos := make([]colleDTO, 0, len(upcoming))
	for _, colle := range upcoming {
		dtos = append(dtos, colleDTO{
			Subject:   colle.Subject,
			Professor: colle.Professor,
			Classroom: colle.Classroom,
			Group:     colle.Group,
			Start:     colle.Start,
			LongDate:  colle.LongDate(),
			Time:      colle.ClockTime(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"colles": dtos})
}

// handleExport streams a rendered export.
//
// GET /api/export?class=mpi&group=3&format=flat
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	class := q.Get("class")
	group := q.Get("group")
	if class == "" || group == "" {
		writeError(w, http.StatusBadRequest, "class and group are required")
		return
	}

	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, ok := s.store.Get(class)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown class")
		return
	}

	colles := query.SortByTime(query.ForGroup(c.Colles, group))

	// Render into a buffer first so an export failure never leaves a
	// half-written body behind the already-sent headers.
	var buf bytes.Buffer
	if err := s.engine.Render(format, colles, group, c.Holidays, &buf); err != nil {
		if errors.Is(err, export.ErrNoSessions) {
			writeError(w, http.StatusNotFound, "no sessions for this group")
			return
		}
		appLog.Error("export render failed", err, "class", class, "group", group, "format", string(format))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleGrid serves the paginated grid as HTML. This is also the page the
// capture pipeline loads when rasterizing over HTTP.
//
// GET /grid?class=mpi&group=3
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	class := q.Get("class")
	group := q.Get("group")
	if class == "" || group == "" {
		writeError(w, http.StatusBadRequest, "class and group are required")
		return
	}

	c, ok := s.store.Get(class)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown class")
		return
	}

	colles := query.SortByTime(query.ForGroup(c.Colles, group))
	if len(colles) == 0 {
		writeError(w, http.StatusNotFound, "no sessions for this group")
		return
	}

	pages := s.engine.BuildGrid(colles, group, c.Holidays)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.RenderGridHTML(w, group, pages); err != nil {
		appLog.Error("grid render failed", err, "class", class, "group", group)
	}
}

// handleGridPNG rasterizes one grid page. Capture concurrency is bounded
// inside the capture package, so a burst of requests queues instead of
// spawning a browser per request.
//
// GET /grid.png?class=mpi&group=3&page=1
func (s *Server) handleGridPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	class := q.Get("class")
	group := q.Get("group")
	if class == "" || group == "" {
		writeError(w, http.StatusBadRequest, "class and group are required")
		return
	}
	page := parseIntDefault(q.Get("page"), 1)

	c, ok := s.store.Get(class)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown class")
		return
	}

	colles := query.SortByTime(query.ForGroup(c.Colles, group))
	pages := s.engine.BuildGrid(colles, group, c.Holidays)
	if len(pages) == 0 {
		writeError(w, http.StatusNotFound, "no sessions for this group")
		return
	}
	if page < 1 || page > len(pages) {
		writeError(w, http.StatusBadRequest, "page out of range")
		return
	}

	png, err := capture.PagePNG(r.Context(), pages[page-1], capture.Options{
		Width:  s.cfg.Grid.Width,
		Height: s.cfg.Grid.Height,
	})
	if err != nil {
		appLog.Error("grid capture failed", err, "class", class, "group", group, "page", page)
		writeError(w, http.StatusInternalServerError, "capture failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func contentTypeFor(format export.Format) string {
	switch format {
	case export.FormatAgenda:
		return "text/calendar; charset=utf-8"
	case export.FormatGrid:
		return "text/html; charset=utf-8"
	default:
		return "text/csv; charset=utf-8"
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
