package apierrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	apierrors "model-gateway/internal/errors"
)

func TestStatusCodeByKind(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, apierrors.Validation("bad", nil).StatusCode())
	require.Equal(t, http.StatusInternalServerError, apierrors.Configuration("cfg", nil).StatusCode())
	require.Equal(t, http.StatusInternalServerError, apierrors.Upstream("OpenAI", "up", nil).StatusCode())
	require.Equal(t, http.StatusInternalServerError, apierrors.Internal(errors.New("boom")).StatusCode())
}

func TestInternalHidesCause(t *testing.T) {
	cause := errors.New("nil pointer dereference")
	err := apierrors.Internal(cause)
	require.Equal(t, "Internal server error", err.Message)
	require.ErrorIs(t, err, cause)
}

func TestFromKeepsClassifiedErrors(t *testing.T) {
	orig := apierrors.Upstream("Gemini", "Gemini returned no text", nil)
	wrapped := fmt.Errorf("dispatch: %w", orig)
	require.Same(t, orig, apierrors.From(wrapped))

	require.Equal(t, apierrors.KindInternal, apierrors.From(errors.New("x")).Kind)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	apierrors.WriteError(rec, apierrors.Validation("Unknown model: foo", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{"error":"Unknown model: foo"}`, rec.Body.String())
}

func TestMarshalEmptyMessage(t *testing.T) {
	require.JSONEq(t, `{"error":"request failed"}`, string(apierrors.Marshal("  ")))
}
