package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"FriendlyTicker/internal/model"
	"FriendlyTicker/internal/momentum"
	"FriendlyTicker/internal/ticker"
	"FriendlyTicker/internal/watchlist"
)

// defaultUserID serves anonymous clients; real deployments put an auth proxy
// in front and forward the user in X-User-ID.
const defaultUserID = "demo"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleAnalyze runs the full pipeline for one ticker. The response shape is
// the same on success and failure; failures carry ok=false and an error
// message, still with status 200.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	report := s.analyzer.Analyze(r.Context(), chi.URLParam(r, "ticker"))
	s.writeJSON(w, http.StatusOK, report)
}

type scoreRequest struct {
	History []model.PricePoint `json:"history"`
}

// handleScore scores a caller-supplied price history without touching any
// data provider. History entries may be bare closes or {close, volume}
// objects.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result := momentum.Compute(req.History)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleWatchlistGet(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{
		"watchlist": s.watchlists.List(userID(r)),
	})
}

type watchlistRequest struct {
	Ticker string `json:"ticker"`
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	symbol, err := ticker.Normalize(req.Ticker)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	list, err := s.watchlists.Add(userID(r), symbol)
	if err != nil {
		switch {
		case errors.Is(err, watchlist.ErrProRequired):
			s.writeError(w, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, watchlist.ErrLimitReached):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.log.Error().Err(err).Msg("watchlist add failed")
			s.writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"watchlist": list})
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	symbol, err := ticker.Normalize(chi.URLParam(r, "ticker"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list, err := s.watchlists.Remove(userID(r), symbol)
	if err != nil {
		s.log.Error().Err(err).Msg("watchlist remove failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"watchlist": list})
}

type alertSubscription struct {
	Email  string `json:"email"`
	Ticker string `json:"ticker"`
}

func (s *Server) handleAlertsList(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		s.writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}
	rules, err := s.alertStore.RulesForEmail(email)
	if err != nil {
		s.log.Error().Err(err).Msg("list alert rules failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	subs := make([]alertSubscription, 0, len(rules))
	for _, rule := range rules {
		if rule.Enabled {
			subs = append(subs, alertSubscription{Email: rule.Email, Ticker: rule.Ticker})
		}
	}
	s.writeJSON(w, http.StatusOK, map[string][]alertSubscription{"alerts": subs})
}

func (s *Server) handleAlertsSubscribe(w http.ResponseWriter, r *http.Request) {
	var req alertSubscription
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		s.writeError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	symbol, err := ticker.Normalize(req.Ticker)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.alertStore.UpsertRule(email, symbol, true); err != nil {
		s.log.Error().Err(err).Msg("subscribe failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "email": email, "ticker": symbol})
}

func (s *Server) handleAlertsUnsubscribe(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(strings.ToLower(r.URL.Query().Get("email")))
	if email == "" {
		s.writeError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}
	symbol, err := ticker.Normalize(chi.URLParam(r, "ticker"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.alertStore.DeleteRule(email, symbol); err != nil {
		s.log.Error().Err(err).Msg("unsubscribe failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleAlertsRun triggers one alert sweep outside the cron schedule.
func (s *Server) handleAlertsRun(w http.ResponseWriter, r *http.Request) {
	sent, errs := s.sched.RunNow(r.Context())
	if errs == nil {
		errs = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sent": sent, "errors": errs})
}

func userID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-User-ID")); id != "" {
		return id
	}
	return defaultUserID
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response failed")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
