// Package server is the HTTP adapter over the captcha service.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/lalcmellkmal/kanatcha/internal/captcha"
	"github.com/lalcmellkmal/kanatcha/internal/cert"
	"github.com/lalcmellkmal/kanatcha/internal/config"
)

// Server holds the handlers' shared dependencies.
type Server struct {
	svc    *captcha.Service
	cfg    config.Config
	logger *slog.Logger
}

// New builds a server over the captcha service.
func New(svc *captcha.Service, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, cfg: cfg, logger: logger}
}

// Router wires middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	r.Post("/refresh", s.handleRefresh)
	r.Get("/image", s.handleImage)
	r.Post("/solve", s.handleSolve)
	r.Get("/scores", s.handleScores)
	r.Get("/certificate", s.handleCertificate)
	return r
}

// ---- Refresh ----

type refreshReq struct {
	Level int `json:"lev"`
}

type refreshResp struct {
	Token   string  `json:"c"`
	Image   string  `json:"image"`
	Timeout float64 `json:"timeout"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	issued, err := s.svc.Issue(r.Context(), req.Level)
	if err != nil {
		s.logger.Error("issue failed", "err", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, refreshResp{
		Token: issued.Token,
		Image: "image?c=" + url.QueryEscape(issued.Token),
		// Client-side countdown only; the stored record is the authority.
		Timeout: s.cfg.Timeout.Seconds(),
	})
}

// ---- Image ----

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.svc.Image(r.Context(), r.URL.Query().Get("c"))
	if err != nil {
		if !errors.Is(err, captcha.ErrInvalidToken) && !errors.Is(err, captcha.ErrNotFound) {
			s.logger.Error("image fetch failed", "err", err)
		}
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}

// ---- Solve ----

type solveReq struct {
	Token  string `json:"c"`
	Answer string `json:"a"`
	Handle string `json:"handle"`
}

type solveResp struct {
	Msg     string               `json:"msg"`
	Success bool                 `json:"success,omitempty"`
	Bonus   *captcha.BonusReveal `json:"bonus,omitempty"`
	Name    string               `json:"name,omitempty"`
	Score   int64                `json:"score,omitempty"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Answer == "" {
		http.NotFound(w, r)
		return
	}
	res, err := s.svc.Redeem(r.Context(), req.Token, req.Answer, req.Handle)
	if errors.Is(err, captcha.ErrInvalidToken) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		// Distinct from a wrong answer so the client knows to retry.
		s.logger.Error("redeem failed", "err", err)
		writeJSONStatus(w, http.StatusInternalServerError, solveResp{Msg: "Server error."})
		return
	}

	switch res.Outcome {
	case captcha.OutcomeExpired:
		writeJSON(w, solveResp{Msg: "Expired. Try again."})
	case captcha.OutcomeIncorrect:
		writeJSON(w, solveResp{Msg: "Incorrect."})
	default:
		resp := solveResp{Msg: "Correct!", Success: true, Bonus: res.Bonus}
		if res.Outcome == captcha.OutcomeCorrect && res.HadBonus {
			resp.Msg = "Perfect!"
		}
		if res.Scored {
			resp.Name = res.Name
			resp.Score = res.Score
		}
		writeJSON(w, resp)
	}
}

// ---- Scores ----

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	level := atoiDefault(r.URL.Query().Get("level"), 0)
	scores, err := s.svc.TopScores(r.Context(), level, 20)
	if err != nil {
		s.logger.Error("scores fetch failed", "err", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"scores": scores})
}

// ---- Certificate ----

func (s *Server) handleCertificate(w http.ResponseWriter, r *http.Request) {
	name := captcha.SanitizeHandle(r.URL.Query().Get("name"))
	if name == "" {
		http.Error(w, "name required", http.StatusBadRequest)
		return
	}
	level := atoiDefault(r.URL.Query().Get("level"), 0)
	scores, err := s.svc.TopScores(r.Context(), level, 100)
	if err != nil {
		s.logger.Error("scores fetch failed", "err", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	rank, score := 0, int64(0)
	for i, sc := range scores {
		if sc.Name == name {
			rank, score = i+1, sc.Score
			break
		}
	}
	if rank == 0 {
		http.Error(w, "no score for that name", http.StatusNotFound)
		return
	}
	serial := uuid.NewString()
	pdfBytes, err := cert.GeneratePDF(cert.Data{
		Serial: serial,
		Name:   name,
		Level:  level,
		Score:  score,
		Rank:   rank,
		Date:   time.Now(),
	})
	if err != nil {
		s.logger.Error("certificate generation failed", "err", err)
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=kanatcha-"+serial+".pdf")
	w.Write(pdfBytes)
}

// ---- Helpers ----

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Expires", "Thu, 01 Jan 1970 00:00:00 GMT")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func atoiDefault(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
