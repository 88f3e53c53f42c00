package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cleared-dev/finreport/internal/apperr"
	"github.com/cleared-dev/finreport/internal/model"
)

type errorDetail struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes a JSON error body.
// Internal failures are logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status int
		detail errorDetail
		ae     *apperr.Error
	)
	if errors.As(err, &ae) {
		detail = errorDetail{Kind: ae.Kind.String(), Field: ae.Field, Message: ae.Message}
	}

	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		detail = errorDetail{Kind: apperr.KindInternal.String(), Message: "internal server error"}
	}
	writeJSON(w, status, errorBody{Error: detail})
}

// decodeJSON reads the request body into v.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("body", "request body is required")
		}
		return apperr.Validation("body", "invalid JSON body: %v", err)
	}
	return nil
}

func queryPeriod(r *http.Request) (model.Period, error) {
	q := r.URL.Query()
	return model.ParsePeriod(q.Get("start_date"), q.Get("end_date"))
}

func queryDate(r *http.Request, key string) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return time.Time{}, nil
	}
	t, err := model.ParseTime(v, false)
	if err != nil {
		return time.Time{}, apperr.Validation(key, "%s %q is not a date", key, v)
	}
	return t, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperr.Validation(key, "%s must be a non-negative integer", key)
	}
	return n, nil
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}

func writeCSVHeader(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}
