// Package server is the HTTP + WebSocket API surface for the detection
// engine. It owns no pipeline logic; everything is delegated to app.Detector.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/raysh454/utsushi/internal/app"
	"github.com/raysh454/utsushi/internal/logging"
	"github.com/raysh454/utsushi/internal/reportstore"
)

// Server exposes the detection pipeline over REST and WebSocket.
type Server struct {
	cfg      Config
	detector *app.Detector
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer wires a Server around an already-constructed Detector.
func NewServer(cfg Config, detector *app.Detector) (*Server, error) {
	if detector == nil {
		return nil, errors.New("server: nil detector")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	s := &Server{
		cfg:      cfg,
		detector: detector,
		router:   chi.NewRouter(),
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
	r.Options("/detect", s.optionsHandler("POST"))
	r.Options("/reports", s.optionsHandler("GET"))
	r.Options("/reports/{reportID}", s.optionsHandler("GET"))
	r.Options("/ws/detect", s.optionsHandler("GET"))
	r.Options("/healthz", s.optionsHandler("GET"))

	r.Post("/detect", s.handleDetect)
	r.Get("/reports", s.handleListReports)
	r.Get("/reports/{reportID}", s.handleGetReport)

	// WebSocket for detection with progress streaming
	r.Get("/ws/detect", s.handleDetectWS)

	r.Get("/healthz", s.handleHealthz)
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
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body_bytes", Value: len(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
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

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var body DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	res, err := s.detector.Detect(r.Context(), body.Text, nil)
	if errors.Is(err, app.ErrEmptyText) {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if err != nil {
		s.logger.Warn("detection failed", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("detection served",
		logging.Field{Key: "report_id", Value: res.ReportID},
		logging.Field{Key: "similarity", Value: res.Similarity})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	store := s.detector.Store()
	if store == nil {
		writeError(w, http.StatusNotFound, "report archive disabled")
		return
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	metas, err := store.List(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing reports", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if metas == nil {
		metas = []reportstore.ReportMeta{}
	}
	writeJSON(w, http.StatusOK, metas)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	store := s.detector.Store()
	if store == nil {
		writeError(w, http.StatusNotFound, "report archive disabled")
		return
	}

	reportID := chi.URLParam(r, "reportID")
	res, err := store.Get(r.Context(), reportID)
	if errors.Is(err, reportstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.logger.Warn("getting report", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// --- WebSocket ---

// wsResultFrame is the final frame of a WebSocket detection; progress frames
// are app.ProgressEvent.
type wsResultFrame struct {
	Result any `json:"result"`
}

func (s *Server) handleDetectWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	var body DetectRequest
	if err := conn.ReadJSON(&body); err != nil {
		_ = conn.WriteJSON(ErrorResponse{Error: "invalid JSON"})
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		_ = conn.WriteJSON(ErrorResponse{Error: "text is required"})
		return
	}

	// Progress callbacks arrive from worker goroutines; writes to the
	// connection must be serialized.
	var mu sync.Mutex
	writeFrame := func(v any) error {
		mu.Lock()
		defer mu.Unlock()
		return conn.WriteJSON(v)
	}

	res, err := s.detector.Detect(r.Context(), body.Text, func(ev app.ProgressEvent) {
		_ = writeFrame(ev)
	})
	if err != nil {
		_ = writeFrame(ErrorResponse{Error: err.Error()})
		s.logger.Warn("websocket detection failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}

	s.logger.Info("websocket detection served",
		logging.Field{Key: "report_id", Value: res.ReportID})
	_ = writeFrame(wsResultFrame{Result: res})
}
