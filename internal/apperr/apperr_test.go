package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("appointment not found")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("book: %w", Conflict("slot taken"))))
	assert.Equal(t, KindStore, KindOf(errors.New("boom")))
	assert.Equal(t, KindStore, KindOf(nil))
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := Internal(cause)

	assert.Equal(t, "internal error", Message(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "patient id mismatch", Message(Forbidden("patient id mismatch")))
	assert.Equal(t, "internal error", Message(errors.New("raw driver error")))
}
