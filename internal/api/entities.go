package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cleared-dev/finreport/internal/scope"
)

func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	var p scope.EntityParams
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.scope.CreateEntity(r.Context(), callerFrom(r.Context()), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	list, err := s.scope.ListEntities(r.Context(), callerFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	e, err := s.scope.GetEntity(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "entityID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEntity(w http.ResponseWriter, r *http.Request) {
	var p scope.EntityParams
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := s.scope.UpdateEntity(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "entityID"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "entityID")
	if err := s.scope.DeleteEntity(r.Context(), callerFrom(r.Context()), entityID); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "entity deleted", "id": entityID})
}

func (s *Server) handleEntityStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.scope.EntityStats(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "entityID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCreateLedger(w http.ResponseWriter, r *http.Request) {
	var p scope.LedgerParams
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.scope.CreateLedger(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "entityID"), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (s *Server) handleListLedgers(w http.ResponseWriter, r *http.Request) {
	list, err := s.scope.ListLedgers(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "entityID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(list))
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	l, err := s.scope.GetLedger(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "entityID"), chi.URLParam(r, "ledger"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleUpdateLedger(w http.ResponseWriter, r *http.Request) {
	var u scope.LedgerUpdate
	if err := decodeJSON(r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.scope.UpdateLedger(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "entityID"), chi.URLParam(r, "ledger"), u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleDeleteLedger(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "ledger")
	if err := s.scope.DeleteLedger(r.Context(), callerFrom(r.Context()), chi.URLParam(r, "entityID"), name); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ledger deleted", "name": name})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
