package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/statements"
)

func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "as_of_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bs, err := s.engine.BalanceSheet(r.Context(), handleFrom(r.Context()), asOf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bs)
}

func (s *Server) handleIncomeStatement(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	is, err := s.engine.IncomeStatement(r.Context(), handleFrom(r.Context()), period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, is)
}

func (s *Server) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cf, err := s.engine.CashFlow(r.Context(), handleFrom(r.Context()), period)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cf)
}

func (s *Server) handleTrialBalance(w http.ResponseWriter, r *http.Request) {
	asOf, err := queryDate(r, "as_of_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	tb, err := s.engine.TrialBalance(r.Context(), handleFrom(r.Context()), asOf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tb)
}

func (s *Server) handleGeneralLedger(w http.ResponseWriter, r *http.Request) {
	period, err := queryPeriod(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	gl, err := s.engine.GeneralLedger(r.Context(), handleFrom(r.Context()), statements.GeneralLedgerOpts{
		AccountID: r.URL.Query().Get("account_id"),
		Period:    period,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsCSV(r) {
		writeCSVHeader(w, "general-ledger.csv")
		if err := statements.WriteGeneralLedger(w, gl); err != nil {
			s.logger.Warn("writing general ledger csv", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, gl)
}
