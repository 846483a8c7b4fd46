package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"no location selected", ErrCodeNoLocationSelected, http.StatusUnprocessableEntity},
		{"session closed", ErrCodeSessionClosed, http.StatusGone},
		{"line item not found", ErrCodeLineItemNotFound, http.StatusNotFound},
		{"invalid quantity", ErrCodeInvalidQuantity, http.StatusUnprocessableEntity},
		{"unauthorized", ErrCodeUnauthorized, http.StatusUnauthorized},
		{"bad request", ErrCodeBadRequest, http.StatusBadRequest},
		{"unknown code falls back to 500", "ERR_SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNoLocationSelected, NormalizeErrorCode("NO_LOCATION_SELECTED"))
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeInventoryNotResolved, NormalizeErrorCode("INVENTORY_NOT_RESOLVED"))
	// Already-normalized and unknown codes pass through
	assert.Equal(t, ErrCodeInternal, NormalizeErrorCode(ErrCodeInternal))
	assert.Equal(t, "CUSTOM_CODE", NormalizeErrorCode("CUSTOM_CODE"))
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse(ErrCodeNotFound, "session not found")
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "session not found", resp.Error.Message)
	assert.Empty(t, resp.Error.RequestID)
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"id": "abc"})
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Data)
}
