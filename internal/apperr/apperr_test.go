package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("account %s not found", "a1"), KindNotFound},
		{"validation", Validation("amount", "must be positive"), KindValidation},
		{"conflict", Conflict("chart of accounts already exists"), KindConflict},
		{"internal", Internal(errors.New("disk full"), "posting"), KindInternal},
		{"plain", errors.New("boom"), KindInternal},
		{"wrapped", fmt.Errorf("posting: %w", NotFound("gone")), KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("x")))
	assert.False(t, IsNotFound(nil))
	assert.True(t, IsValidation(Validation("f", "bad")))
	assert.True(t, IsConflict(Conflict("dup")))
	assert.False(t, IsConflict(errors.New("dup")))
}

func TestErrorMessage(t *testing.T) {
	err := Validation("direction", "must be dr or cr")
	assert.Equal(t, "must be dr or cr (direction)", err.Error())

	cause := errors.New("connection reset")
	err = Internal(cause, "committing transaction")
	assert.Equal(t, "committing transaction: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "conflict", KindConflict.String())
	assert.Equal(t, "internal", KindInternal.String())
}
