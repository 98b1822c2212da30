package response

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"status": "ok"}, testLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestJSON_UnencodableValue(t *testing.T) {
	w := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		JSON(w, http.StatusOK, make(chan int), nil)
	})
	assert.Equal(t, http.StatusOK, w.Code, "status is already sent when encoding fails")
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter, string, *slog.Logger)
		wantStatus int
	}{
		{name: "not found", write: NotFound, wantStatus: http.StatusNotFound},
		{name: "method not allowed", write: MethodNotAllowed, wantStatus: http.StatusMethodNotAllowed},
		{name: "internal", write: InternalError, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			tt.write(w, "something went wrong", testLogger())

			assert.Equal(t, tt.wantStatus, w.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "something went wrong", body.Error)
		})
	}
}
