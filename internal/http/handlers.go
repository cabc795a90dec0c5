package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"rashody/internal/core"
)

type recordRequest struct {
	Text string `json:"text"`
}

type recordResponse struct {
	ID       int64   `json:"id"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Report   string  `json:"report,omitempty"`
}

func (s *Server) handleRecordExpense(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	e, label, err := s.ledger.RecordExpense(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := recordResponse{ID: e.ID, Amount: e.Amount, Category: label}
	reply, err := s.ledger.RecordedReply(r.Context(), e, label)
	if err != nil {
		// The expense is committed; reply without the refreshed report.
		slog.ErrorContext(r.Context(), "build recorded reply failed", "id", e.ID, "error", err)
	} else {
		resp.Report = reply
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid expense id", http.StatusBadRequest)
		return
	}
	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTodayReport(w http.ResponseWriter, r *http.Request) {
	s.writeReport(w, r, core.PeriodToday)
}

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	s.writeReport(w, r, core.PeriodMonth)
}

func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, period core.Period) {
	text, err := s.ledger.Report(r.Context(), period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, text)
}

func (s *Server) handleCategoryDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid category id", http.StatusBadRequest)
		return
	}
	period := core.PeriodToday
	if raw := r.URL.Query().Get("period"); raw != "" {
		var ok bool
		if period, ok = core.ParsePeriod(raw); !ok {
			http.Error(w, "invalid period: want today|month|d|m", http.StatusBadRequest)
			return
		}
	}

	text, found, err := s.ledger.CategoryDetail(r.Context(), id, period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !found {
		http.Error(w, "category not found", http.StatusNotFound)
		return
	}
	writeText(w, http.StatusOK, text)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	text, err := s.ledger.CategoriesReport(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, text)
}

func (s *Server) handleRecentExpenses(w http.ResponseWriter, r *http.Request) {
	text, err := s.ledger.RecentReport(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, text)
}

type createCategoryRequest struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request body: want {name, aliases}", http.StatusBadRequest)
		return
	}

	cat, err := s.ledger.CreateCategory(r.Context(), req.Name, req.Aliases)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	aliases := make([]string, 0, len(cat.Aliases))
	for _, a := range cat.Aliases {
		aliases = append(aliases, a.Name)
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      cat.ID,
		"name":    cat.Name,
		"aliases": aliases,
	})
}

type setBudgetRequest struct {
	Name       string  `json:"name"`
	DailyLimit float64 `json:"daily_limit"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DailyLimit < 0 {
		http.Error(w, "invalid request body: want {name, daily_limit}", http.StatusBadRequest)
		return
	}

	b, err := s.ledger.SetBudget(r.Context(), req.Name, req.DailyLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          b.ID,
		"name":        b.Name,
		"daily_limit": b.DailyLimit,
	})
}

// writeError maps the error taxonomy onto status codes. User errors carry
// their message to the submitter verbatim; everything else is logged and
// hidden behind a generic reply.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if core.IsUserError(err) {
		writeText(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	slog.ErrorContext(r.Context(), "request failed",
		"error", err,
		"method", r.Method,
		"path", r.URL.Path)
	writeText(w, http.StatusInternalServerError, "Внутренняя ошибка, попробуйте позже")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
