// Package http is the thin HTTP adapter the conversational front end talks
// to. It maps the ledger's error taxonomy onto status codes: user errors are
// echoed back verbatim, storage failures surface as a generic 500.
package http

import (
	"net/http"
	"time"

	"rashody/internal/middleware/trace"
	"rashody/internal/services"
)

type Server struct {
	http.Server
	ledger *services.Ledger
}

func NewServer(addr string, ledger *services.Ledger) *Server {
	s := &Server{ledger: ledger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /expenses", s.handleRecordExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("GET /expenses/recent", s.handleRecentExpenses)
	mux.HandleFunc("GET /report/today", s.handleTodayReport)
	mux.HandleFunc("GET /report/month", s.handleMonthReport)
	mux.HandleFunc("GET /categories", s.handleCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /categories/{id}/report", s.handleCategoryDetail)
	mux.HandleFunc("PUT /budget", s.handleSetBudget)

	s.Server = http.Server{
		Addr:           addr,
		Handler:        trace.Middleware(mux),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}
