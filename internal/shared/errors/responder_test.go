package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("manifest not found")

func TestResponderMapsWrappedSentinel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewResponder("https://fiscal.example", Match(ErrNotFound, errMissing))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/manifests/9", nil)
	r.RespondError(c, fmt.Errorf("load: %w", errMissing))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ContentTypeProblemJSON, rec.Header().Get("Content-Type"))
	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "https://fiscal.example"+TypeNotFound, problem.Type)
	assert.Equal(t, "/v1/manifests/9", problem.Instance)
	assert.Equal(t, "load: manifest not found", problem.Detail)
}

func TestResponderFallsBackToInternal(t *testing.T) {
	r := NewResponder("", Match(ErrNotFound, errMissing))

	_, ok := r.Map(errors.New("boom"))
	assert.False(t, ok)

	embedded, ok := r.Map(fmt.Errorf("wrapped: %w", ErrConflict.WithDetail("taken")))
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, embedded.Status)
}

func TestWithExtensionDoesNotShareTemplates(t *testing.T) {
	first := ErrPrecondition.WithExtension("result", 1)
	second := first.WithExtension("attempt", 2)

	assert.Nil(t, ErrPrecondition.Extensions)
	assert.Len(t, first.Extensions, 1)
	assert.Len(t, second.Extensions, 2)
}
