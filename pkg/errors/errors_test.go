package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	notFound := Clone(ErrNotFound, "lesson slot not found")
	wrapped := fmt.Errorf("load slot: %w", notFound)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrConflict))
	assert.Equal(t, "lesson slot not found", FromError(wrapped).Message)
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(sql.ErrConnDone, ErrPersistenceFailure.Code, ErrPersistenceFailure.Status, ErrPersistenceFailure.Message)

	assert.True(t, errors.Is(err, sql.ErrConnDone))
	assert.True(t, errors.Is(err, ErrPersistenceFailure))
	assert.Equal(t, "failed to save lesson grid: sql: connection is already closed", err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, "", CodeOf(nil))
	assert.Equal(t, ErrInternal.Code, CodeOf(errors.New("boom")))
	assert.Equal(t, ErrMisalignedBreak.Code, CodeOf(Clone(ErrMisalignedBreak, "")))
}
