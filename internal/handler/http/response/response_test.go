package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSuccessWithMeta(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	SuccessWithMeta(rec, []string{"a", "b"}, PageMeta(2, 20, 5, 93))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeBody(t, rec)
	assert.True(t, body.Success)
	require.NotNil(t, body.Meta)
	assert.Equal(t, 2, body.Meta.Page)
	assert.Equal(t, 20, body.Meta.Limit)
	assert.Equal(t, int64(93), body.Meta.TotalItems)
	assert.Equal(t, 5, body.Meta.TotalPages)
}

func TestBadRequestEnvelope(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()

	BadRequest(rec, "timestamp is not RFC3339", map[string]string{"timestamp": "invalid"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "BAD_REQUEST", body.Error.Code)
	assert.Equal(t, "timestamp is not RFC3339", body.Error.Message)
	assert.Equal(t, "invalid", body.Error.Details["timestamp"])
}
