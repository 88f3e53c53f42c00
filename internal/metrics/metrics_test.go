package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/finreport/internal/apperr"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{apperr.Validation("amount", "bad"), OutcomeRejected},
		{apperr.NotFound("missing"), OutcomeNotFound},
		{apperr.Conflict("seeded"), OutcomeConflict},
		{errors.New("disk"), OutcomeError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestPostingsCounter(t *testing.T) {
	before := testutil.ToFloat64(Postings.WithLabelValues(OutcomeOK))
	Postings.WithLabelValues(OutcomeOK).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Postings.WithLabelValues(OutcomeOK)))
}

func TestObserveReport(t *testing.T) {
	ObserveReport("trial_balance", time.Now())
	assert.Equal(t, 1, testutil.CollectAndCount(ReportDuration))
}
