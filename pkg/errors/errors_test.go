package errors

import (
	"database/sql"
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	err := Clone(ErrNotFound, "student profile not found")
	got := FromError(err)
	assert.Same(t, err, got)
	assert.Equal(t, http.StatusNotFound, got.Status)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	got := FromError(stdErrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
}

func TestIsMatchesByCode(t *testing.T) {
	cloned := Clone(ErrEmailTaken, "someone else has this email")
	assert.True(t, stdErrors.Is(cloned, ErrEmailTaken))
	assert.False(t, stdErrors.Is(cloned, ErrEmailNotFound))
}

func TestPersistenceHidesCause(t *testing.T) {
	err := Persistence(sql.ErrConnDone, "")
	assert.ErrorIs(t, err, sql.ErrConnDone)

	raw, marshalErr := json.Marshal(err)
	require.NoError(t, marshalErr)
	assert.NotContains(t, string(raw), "connection")
	assert.Contains(t, string(raw), ErrPersistence.Code)
}
