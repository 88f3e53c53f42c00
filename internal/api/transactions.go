package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/journal"
	"github.com/cleared-dev/finreport/internal/model"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := queryInt(r, "page")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	h := handleFrom(r.Context())

	if wantsCSV(r) {
		txs, err := s.poster.ListAll(r.Context(), h, period)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeCSVHeader(w, "journal.csv")
		if err := journal.WriteTransactions(w, txs); err != nil {
			s.logger.Warn("writing journal csv", zap.Error(err))
		}
		return
	}

	res, err := s.poster.List(r.Context(), h, journal.ListOpts{
		AccountID: q.Get("account_id"),
		Direction: model.Direction(q.Get("direction")),
		Period:    period,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res.Transactions = nonNil(res.Transactions)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePostTransaction(w http.ResponseWriter, r *http.Request) {
	var p journal.PostParams
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.poster.Post(r.Context(), handleFrom(r.Context()), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sum, err := s.poster.Summary(r.Context(), handleFrom(r.Context()), period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.poster.Get(r.Context(), handleFrom(r.Context()), chi.URLParam(r, "txID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

type descriptionUpdate struct {
	Description string `json:"description"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var u descriptionUpdate
	if err := decodeJSON(r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}
	tx, err := s.poster.UpdateDescription(r.Context(), handleFrom(r.Context()), chi.URLParam(r, "txID"), u.Description)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleReverseTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.poster.Reverse(r.Context(), handleFrom(r.Context()), chi.URLParam(r, "txID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
