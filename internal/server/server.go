// Package server
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hamedsh/rsi-bot/internal/bot"
	"github.com/hamedsh/rsi-bot/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the bot's control surface over HTTP: lifecycle, status,
// logs, health and metrics.
type Server struct {
	bot  *bot.Bot
	addr string
	srv  *http.Server
}

func New(addr string, b *bot.Bot, gatherer prometheus.Gatherer) *Server {
	s := &Server{bot: b, addr: addr}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/stop", s.handleStop)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/logs", s.handleLogs)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler returns the route handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		utils.GetLogger().Printf("Server | listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			utils.GetLogger().Printf("Server | serve error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.bot.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": s.bot.Start()})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": s.bot.Stop()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.bot.Status())
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	logs := s.bot.Logs(limit)
	writeJSON(w, http.StatusOK, map[string]any{"count": len(logs), "logs": logs})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	st := s.bot.Status()

	candleAge := ""
	if !st.LastCandleAt.IsZero() {
		candleAge = time.Since(st.LastCandleAt).Round(time.Millisecond).String()
	}

	// The process is healthy even when the bot is idle; degraded means the
	// bot thinks it is running but the feed is gone.
	status := "ok"
	code := http.StatusOK
	if st.Running && !st.FeedConnected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":         status,
		"running":        st.Running,
		"feed_connected": st.FeedConnected,
		"data_points":    st.DataPoints,
		"candle_age":     candleAge,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	json.NewEncoder(w).Encode(v)
}
