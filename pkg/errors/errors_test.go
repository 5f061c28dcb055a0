package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageIncludesInternal(t *testing.T) {
	err := ErrNotFound.WithInternal(errors.New("row missing"))
	require.Contains(t, err.Error(), "Resource not found")
	require.Contains(t, err.Error(), "row missing")
}

func TestUnwrapExposesInternal(t *testing.T) {
	inner := errors.New("boom")
	err := Wrap(inner, "failed to persist")
	require.ErrorIs(t, err, inner)
}

func TestFromErrorPassesThroughAppErrors(t *testing.T) {
	require.Equal(t, ErrForbidden, FromError(ErrForbidden))
}

func TestFromErrorDefaultsToInternalServer(t *testing.T) {
	appErr := FromError(errors.New("unexpected"))
	require.Equal(t, ErrInternalServer.Code, appErr.Code)
	require.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
}

func TestFromErrorNil(t *testing.T) {
	require.Nil(t, FromError(nil))
}

func TestNewNotFoundKeepsCode(t *testing.T) {
	appErr := NewNotFound("Reminder not found")
	require.Equal(t, ErrNotFound.Code, appErr.Code)
	require.Equal(t, "Reminder not found", appErr.Message)
}
