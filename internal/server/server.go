package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Happy-Ferret/addons-code-manager/internal/api"
	"github.com/Happy-Ferret/addons-code-manager/internal/app"
	"github.com/Happy-Ferret/addons-code-manager/internal/compare"
	"github.com/Happy-Ferret/addons-code-manager/internal/logging"
	"github.com/Happy-Ferret/addons-code-manager/internal/versions"
)

// Server is the HTTP + WebSocket surface consumed by the review UI.
type Server struct {
	cfg      Config
	sessions *app.Manager
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer wires the session manager into a router.
func NewServer(cfg Config, sessions *app.Manager) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = app.DefaultConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:      cfg,
		sessions: sessions,
		router:   r,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/sessions", s.optionsHandler("GET, POST"))
	r.Options("/sessions/{sessionID}", s.optionsHandler("GET, DELETE"))
	r.Options("/sessions/{sessionID}/tree", s.optionsHandler("GET"))
	r.Options("/sessions/{sessionID}/diff", s.optionsHandler("GET"))
	r.Options("/sessions/{sessionID}/select", s.optionsHandler("POST"))
	r.Options("/sessions/{sessionID}/file", s.optionsHandler("GET"))

	// Compare sessions
	r.Post("/sessions", s.handleCreateSession)
	r.Get("/sessions", s.handleListSessions)
	r.Get("/sessions/{sessionID}", s.handleGetSession)
	r.Delete("/sessions/{sessionID}", s.handleDeleteSession)

	// Session data
	r.Get("/sessions/{sessionID}/tree", s.handleGetTree)
	r.Get("/sessions/{sessionID}/diff", s.handleGetDiff)
	r.Post("/sessions/{sessionID}/select", s.handleSelectFile)
	r.Get("/sessions/{sessionID}/file", s.handleGetFile)

	// WebSocket for lifecycle events
	r.Get("/ws/sessions/{sessionID}", s.handleSessionWS)

	// Swagger + UI index
	s.mountSwagger(r)
	r.Get("/", s.handleIndex)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path})

	s.router.ServeHTTP(w, r)
}

// Close shuts down the session manager.
func (s *Server) Close() {
	if s.sessions != nil {
		s.sessions.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.AppConfig.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

// @Summary Mount a comparison session
// @Accept json
// @Produce json
// @Param body body CreateSessionRequest true "comparison parameters"
// @Success 201 {object} SessionResponse
// @Router /sessions [post]
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.AddonID <= 0 || body.BaseVersionID <= 0 || body.HeadVersionID <= 0 {
		writeError(w, http.StatusBadRequest, "addon_id, base_version_id and head_version_id are required")
		return
	}
	lang := body.Lang
	if lang == "" {
		lang = "en-US"
	}

	sess, err := s.sessions.Create(r.Context(), compare.Params{
		Lang:          lang,
		AddonID:       body.AddonID,
		BaseVersionID: versions.VersionID(body.BaseVersionID),
		HeadVersionID: versions.VersionID(body.HeadVersionID),
		Path:          body.Path,
	})
	if err != nil {
		s.logger.Warn("creating session", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.sessionResponse(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	list := s.sessions.List()
	out := make([]SessionResponse, 0, len(list))
	for _, sess := range list {
		out = append(out, s.sessionResponse(sess))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.sessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.sessions.Remove(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetTree returns the head version's metadata (addon + file tree).
// 404 until the metadata has loaded; the UI shows its loading indicator on
// that signal.
func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	ctrl := sess.Controller()
	params := ctrl.Params()
	if params == nil {
		writeError(w, http.StatusNotFound, "comparison not mounted")
		return
	}
	v := ctrl.State().Version(params.HeadVersionID)
	if v == nil {
		writeError(w, http.StatusNotFound, "version metadata not loaded")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// @Summary Diff pane state for one path
// @Produce json
// @Param path query string false "file path (defaults to the selected file)"
// @Success 200 {object} DiffResponse
// @Router /sessions/{sessionID}/diff [get]
func (s *Server) handleGetDiff(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	ctrl := sess.Controller()
	params := ctrl.Params()
	if params == nil {
		writeError(w, http.StatusNotFound, "comparison not mounted")
		return
	}

	st := ctrl.State()
	path := r.URL.Query().Get("path")
	if path == "" {
		if v := st.Version(params.HeadVersionID); v != nil {
			path = v.SelectedPath
		}
	}

	byPath, status := st.DiffMap(params.Key())
	resp := DiffResponse{Status: status.String(), Path: path}
	if status == versions.DiffAvailable {
		resp.Diff = byPath[path]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSelectFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	var body SelectFileRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	ctrl := sess.Controller()
	ctrl.OnSelectFile(r.Context(), body.Path)

	params := ctrl.Params()
	if params == nil {
		writeError(w, http.StatusNotFound, "comparison not mounted")
		return
	}
	byPath, status := ctrl.State().DiffMap(params.Key())
	resp := DiffResponse{Status: status.String(), Path: body.Path}
	if status == versions.DiffAvailable {
		resp.Diff = byPath[body.Path]
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetFile returns one file's content within a version, fetching it
// through the controller on first access.
func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	versionID, err := strconv.ParseInt(q.Get("version_id"), 10, 64)
	if err != nil || versionID <= 0 {
		writeError(w, http.StatusBadRequest, "version_id is required")
		return
	}
	path := q.Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}

	ctrl := sess.Controller()
	id := versions.VersionID(versionID)
	if ctrl.State().FileContent(id, path) == nil {
		if err := ctrl.LoadFile(r.Context(), id, path); err != nil {
			status := http.StatusBadGateway
			if !api.IsErrorResponse(err) {
				status = http.StatusInternalServerError
			}
			writeError(w, status, err.Error())
			return
		}
	}

	fc := ctrl.State().FileContent(id, path)
	if fc == nil {
		// Version or entry missing after a successful fetch: the update
		// was discarded as inconsistent.
		writeError(w, http.StatusNotFound, "file not found in version")
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookupSession(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	events, cancel := sess.Subscribe()
	defer cancel()

	// Reader goroutine: detect client close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*app.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.sessions.Get(id)
	if err != nil {
		if errors.Is(err, app.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return sess, true
}

func (s *Server) sessionResponse(sess *app.Session) SessionResponse {
	ctrl := sess.Controller()
	resp := SessionResponse{
		ID:         sess.ID,
		CreatedAt:  sess.CreatedAt,
		Phase:      string(ctrl.Phase()),
		RedirectTo: sess.RedirectTo(),
		DiffStatus: versions.DiffNotRequested.String(),
	}

	params := ctrl.Params()
	if params == nil {
		return resp
	}
	key := params.Key()
	resp.Key = &key

	st := ctrl.State()
	if v := st.Version(params.HeadVersionID); v != nil {
		resp.SelectedPath = v.SelectedPath
	}
	byPath, status := st.DiffMap(key)
	resp.DiffStatus = status.String()
	if status == versions.DiffAvailable {
		paths := make([]string, 0, len(byPath))
		for p := range byPath {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		resp.DiffPaths = paths
	}
	return resp
}
