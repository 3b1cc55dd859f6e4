package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"winefeed/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{service.CodeNotFound, http.StatusNotFound},
		{service.CodeTenantIsolation, http.StatusForbidden},
		{service.CodeNoAssignment, http.StatusForbidden},
		{service.CodeAssignmentExpired, http.StatusForbidden},
		{service.CodeAlreadyDispatched, http.StatusConflict},
		{service.CodeAlreadyResponded, http.StatusConflict},
		{service.CodeAlreadyAccepted, http.StatusConflict},
		{service.CodeValidation, http.StatusBadRequest},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForCode(tt.code), tt.code)
	}
}

func TestOreFromSek(t *testing.T) {
	assert.Equal(t, int64(39000), oreFromSek(390.00))
	assert.Equal(t, int64(38999), oreFromSek(389.99))
	assert.Equal(t, int64(45000), oreFromSek(450))
	// Round, not truncate.
	assert.Equal(t, int64(25001), oreFromSek(250.006))
	assert.Equal(t, int64(25000), oreFromSek(250.004))
}

func TestRespondErrorBusinessError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, service.Errorf(service.CodeAlreadyAccepted, "an offer has already been accepted"))

	assert.Equal(t, http.StatusConflict, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, service.CodeAlreadyAccepted, body["code"])
	assert.Equal(t, "an offer has already been accepted", body["error"])
}

func TestRespondErrorInternalStaysOpaque(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body["error"])
	assert.NotContains(t, body, "code")
}

func TestPathID(t *testing.T) {
	tests := []struct {
		param  string
		wantID int64
		wantOK bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: tt.param}}

		id, ok := pathID(c, "id")
		assert.Equal(t, tt.wantOK, ok, tt.param)
		assert.Equal(t, tt.wantID, id, tt.param)
		if !tt.wantOK {
			assert.Equal(t, http.StatusBadRequest, w.Code)
		}
	}
}
