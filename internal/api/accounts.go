package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/accounts"
	"github.com/cleared-dev/finreport/internal/model"
)

func (s *Server) handleListOwnedAccounts(w http.ResponseWriter, r *http.Request) {
	list, err := s.accounts.ListForOwner(r.Context(), callerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) handleLedgerStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.accounts.Stats(r.Context(), handleFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type seedResponse struct {
	Message         string          `json:"message"`
	AccountsCreated int             `json:"accounts_created"`
	Accounts        []model.Account `json:"accounts"`
}

func (s *Server) handleSeedChart(w http.ResponseWriter, r *http.Request) {
	created, err := s.seeder.Seed(r.Context(), handleFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, seedResponse{
		Message:         "chart of accounts created",
		AccountsCreated: len(created),
		Accounts:        created,
	})
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.accounts.List(r.Context(), handleFrom(r.Context()), accounts.ListOpts{
		Type:   model.AccountType(q.Get("type")),
		Status: model.AccountStatus(q.Get("status")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if wantsCSV(r) {
		writeCSVHeader(w, "chart-of-accounts.csv")
		if err := accounts.WriteChart(w, list); err != nil {
			s.logger.Warn("writing chart csv", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var p accounts.CreateParams
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.accounts.Create(r.Context(), handleFrom(r.Context()), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	b, err := s.accounts.Balances(r.Context(), handleFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.accounts.Get(r.Context(), handleFrom(r.Context()), chi.URLParam(r, "accountID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var p accounts.UpdateParams
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	a, err := s.accounts.Update(r.Context(), handleFrom(r.Context()), chi.URLParam(r, "accountID"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")
	if err := s.accounts.Delete(r.Context(), handleFrom(r.Context()), accountID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted", "id": accountID})
}
