package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	TopK  int    `json:"topK" validate:"omitempty,min=1,max=50"`
	Extra string `json:"extra"`
}

func TestDecodeValid(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","topK":5}`))
	var s sample
	require.NoError(t, Decode(r, &s))
	assert.Equal(t, "x", s.Name)
	assert.Equal(t, 5, s.TopK)
}

func TestDecodeValidationFailure(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"topK":99}`))
	var s sample
	err := Decode(r, &s)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "Name")
	assert.Contains(t, err.Error(), "TopK")
}

func TestDecodeMalformed(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	var s sample
	assert.ErrorIs(t, Decode(r, &s), ErrValidation)
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusTeapot, "nope")
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "nope", body["error"])
}
