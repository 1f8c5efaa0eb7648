package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Tyrowin/scoreline/internal/errors"
)

func TestRenderFailureRespondsWithInternalError(t *testing.T) {
	broken := templ.ComponentFunc(func(context.Context, io.Writer) error {
		return errors.New("template exploded")
	})

	rec := httptest.NewRecorder()
	render(rec, httptest.NewRequest(http.MethodGet, "/overlay", nil), broken)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body apperrors.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, apperrors.TypeInternal, body.Type)
	assert.Equal(t, "failed to render page", body.Error)
}
