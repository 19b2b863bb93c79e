package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"without cause", NewAppError(ErrTypeValidation, "year out of range", nil), "[VALIDATION] year out of range"},
		{"with cause", NewParsingError("parse dataset", errors.New("bad header")), "[PARSING] parse dataset: bad header"},
		{"not found", NewNotFoundError("dataset file", nil), "[NOT_FOUND] dataset file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := NewNotFoundError("dataset file", fs.ErrNotExist)

	assert.True(t, errors.Is(err, fs.ErrNotExist))

	var appErr *AppError
	assert.True(t, errors.As(error(err), &appErr))
	assert.Equal(t, ErrTypeNotFound, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeExternal, Message: "gemini"}
	err.WithContext("model", "gemini-1.5-flash").WithContext("attempt", 1)

	assert.Equal(t, "gemini-1.5-flash", err.Context["model"])
	assert.Equal(t, 1, err.Context["attempt"])
}

func TestErrorTypeHelpers(t *testing.T) {
	assert.Equal(t, ErrTypeStorage, NewStorageError("write", nil).Type)
	assert.Equal(t, ErrTypeExternal, NewExternalError("upstream", nil).Type)
	assert.Equal(t, ErrTypeUnavailable, NewUnavailableError("off", nil).Type)
}
