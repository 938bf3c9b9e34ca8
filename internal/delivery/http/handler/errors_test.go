package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"appointment-scheduler/pkg/apperror"
	"appointment-scheduler/pkg/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"invalid input", apperror.New(apperror.KindInvalidInput, "bad date"), http.StatusBadRequest, "bad date"},
		{"not found", apperror.New(apperror.KindNotFound, "no doctor"), http.StatusNotFound, "no doctor"},
		{"forbidden", apperror.New(apperror.KindForbidden, "not yours"), http.StatusForbidden, "not yours"},
		{"conflict", apperror.New(apperror.KindConflict, "taken"), http.StatusConflict, "taken"},
		{"wrapped conflict", fmt.Errorf("%w: PENDING to PENDING", apperror.New(apperror.KindConflict, "not allowed")), http.StatusConflict, "not allowed"},
		{"unavailable", apperror.Unavailable(errors.New("dial tcp 10.0.0.1:5432")), http.StatusServiceUnavailable, apperror.UnavailableMessage},
		{"unclassified", errors.New("pq: secret detail"), http.StatusServiceUnavailable, apperror.UnavailableMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body response.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantMessage, body.Message)
		})
	}
}
