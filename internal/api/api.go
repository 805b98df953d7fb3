package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/joescharf/gitval/internal/analysis"
	"github.com/joescharf/gitval/internal/archetype"
	"github.com/joescharf/gitval/internal/models"
)

// maxBodyBytes bounds request bodies; a score request carries diffs.
const maxBodyBytes = 8 << 20

// Server provides the REST API handlers.
type Server struct {
	svc *analysis.Service
}

// NewServer creates a new API server.
func NewServer(svc *analysis.Service) *Server {
	return &Server{svc: svc}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/resolve", s.resolve)
	mux.HandleFunc("GET /api/v1/pulls", s.pulls)
	mux.HandleFunc("POST /api/v1/score", s.score)
	mux.HandleFunc("POST /api/v1/analyze", s.analyze)
	mux.HandleFunc("GET /api/v1/analysis", s.analysis)
	mux.HandleFunc("GET /api/v1/demo", s.demo)
	mux.HandleFunc("GET /api/v1/archetypes", s.archetypes)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps a pipeline failure onto an HTTP status. GitHub rejecting
// our credentials is an upstream problem, not the caller's.
func statusFor(err error) int {
	switch analysis.Classify(err) {
	case analysis.KindValidation:
		return http.StatusBadRequest
	case analysis.KindNotFound:
		return http.StatusNotFound
	case analysis.KindAuth, analysis.KindUpstream:
		return http.StatusBadGateway
	case analysis.KindConfig:
		return http.StatusServiceUnavailable
	case analysis.KindEmpty:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

// --- Repository ---

type resolveResponse struct {
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	FullName string `json:"fullName"`
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	ref, err := s.svc.ResolveRepository(r.URL.Query().Get("repo"))
	if err != nil {
		writeError(w, statusFor(err), analysis.Message(err))
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Owner: ref.Owner, Repo: ref.Repo, FullName: ref.String()})
}

func (s *Server) pulls(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.FetchPullRequests(r.Context(), r.URL.Query().Get("repo"))
	if err != nil {
		writeJSON(w, statusFor(err), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// --- Analysis ---

type scoreRequest struct {
	Commits []models.CommitRecord `json:"commits"`
}

func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if !checkSort(w, sortBy) {
		return
	}
	var req scoreRequest
	if err := decode(r, w, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.FailedAnalysis("invalid JSON body"))
		return
	}
	res, err := s.svc.ScoreDevelopers(r.Context(), req.Commits)
	s.writeAnalysis(w, res, err, sortBy)
}

type analyzeRequest struct {
	Repo string `json:"repo"`
	Sort string `json:"sort"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decode(r, w, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.FailedAnalysis("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Repo) == "" {
		writeJSON(w, http.StatusBadRequest, models.FailedAnalysis("repo is required"))
		return
	}
	if !checkSort(w, req.Sort) {
		return
	}
	res, err := s.svc.Analyze(r.Context(), req.Repo)
	s.writeAnalysis(w, res, err, req.Sort)
}

// analysis serves the dashboard: without a repo it returns the demo result.
func (s *Server) analysis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sortBy := q.Get("sort")
	if !checkSort(w, sortBy) {
		return
	}
	repo := strings.TrimSpace(q.Get("repo"))
	if repo == "" {
		res, err := s.svc.Demo(r.Context())
		s.writeAnalysis(w, res, err, sortBy)
		return
	}
	res, err := s.svc.Analyze(r.Context(), repo)
	s.writeAnalysis(w, res, err, sortBy)
}

func (s *Server) demo(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if !checkSort(w, sortBy) {
		return
	}
	res, err := s.svc.Demo(r.Context())
	s.writeAnalysis(w, res, err, sortBy)
}

// checkSort rejects an unknown sort key before any upstream call is made.
func checkSort(w http.ResponseWriter, sortBy string) bool {
	switch sortBy {
	case "", models.SortByGPA, models.SortByRisk, models.SortByCommits:
		return true
	}
	writeError(w, http.StatusBadRequest, "sort must be one of gpa, risk, commits")
	return false
}

func (s *Server) writeAnalysis(w http.ResponseWriter, res *models.AnalysisResult, err error, sortBy string) {
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError && !errors.Is(err, analysis.ErrUnexpected) {
			slog.Error("analysis request failed", "error", err)
		}
		writeJSON(w, status, res)
		return
	}
	models.SortDevelopers(res.Developers, sortBy)
	writeJSON(w, http.StatusOK, res)
}

// --- Archetypes ---

func (s *Server) archetypes(w http.ResponseWriter, r *http.Request) {
	all := archetype.All()
	out := make([]models.ArchetypeInfo, len(all))
	for i, a := range all {
		out[i] = a.Info()
	}
	writeJSON(w, http.StatusOK, out)
}
