package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"alumni-talent-platform/pkg/apperror"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, http.StatusOK, apperror.CodeOf(nil))
	assert.Equal(t, http.StatusConflict, apperror.CodeOf(apperror.Conflict("dup")))
	assert.Equal(t, http.StatusInternalServerError, apperror.CodeOf(errors.New("boom")))

	wrapped := fmt.Errorf("approve: %w", apperror.NotFound("Registration not found"))
	assert.Equal(t, http.StatusNotFound, apperror.CodeOf(wrapped))
}

func TestValidationCarriesField(t *testing.T) {
	err := apperror.Validation("phone", "phone: is required")
	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Equal(t, "phone", err.Field)
	assert.Equal(t, "phone: is required", err.Error())
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := apperror.Internal(cause)
	assert.Equal(t, "Internal Server Error", err.Error())
	assert.ErrorIs(t, err, cause)
}
