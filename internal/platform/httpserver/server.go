package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	ballotledger "greenballot/contexts/election-core/ballot-ledger"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "greenballot/internal/platform/httpserver/docs"
)

type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
	addr   string
	ballot ballotledger.Module
}

func New(ballot ballotledger.Module, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:    http.NewServeMux(),
		logger: logger,
		addr:   addr,
		ballot: ballot,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/ballot/v1/candidates", s.handleRegisterCandidate)
	s.mux.HandleFunc("GET /api/ballot/v1/candidates/{candidate_id}", s.handleCandidateInfo)
	s.mux.HandleFunc("GET /api/ballot/v1/candidates/{candidate_id}/votes", s.handleCandidateVoteCount)

	s.mux.HandleFunc("POST /api/ballot/v1/voters", s.handleRegisterVoter)
	s.mux.HandleFunc("DELETE /api/ballot/v1/voters/{principal}", s.handleUnregisterVoter)
	s.mux.HandleFunc("GET /api/ballot/v1/voters/{principal}", s.handleVoterInfo)
	s.mux.HandleFunc("GET /api/ballot/v1/voters/{principal}/voted", s.handleHasVoted)

	s.mux.HandleFunc("POST /api/ballot/v1/sessions", s.handleCreateSession)
	s.mux.HandleFunc("POST /api/ballot/v1/sessions/{session_id}/toggle", s.handleToggleSession)
	s.mux.HandleFunc("GET /api/ballot/v1/sessions/{session_id}", s.handleSessionInfo)
	s.mux.HandleFunc("GET /api/ballot/v1/sessions/{session_id}/results", s.handleSessionResults)
	s.mux.HandleFunc("GET /api/ballot/v1/sessions/{session_id}/voters", s.handleSessionVoters)

	s.mux.HandleFunc("POST /api/ballot/v1/votes", s.handleCastVote)

	s.mux.HandleFunc("POST /api/ballot/v1/system/toggle", s.handleToggleSystem)
	s.mux.HandleFunc("GET /api/ballot/v1/admin", s.handleAdmin)
	s.mux.HandleFunc("GET /api/ballot/v1/results/winner", s.handleWinningCandidate)
	s.mux.HandleFunc("GET /api/ballot/v1/stats", s.handleSystemStats)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
