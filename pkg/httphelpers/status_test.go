package httphelpers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/identinet/did-web-server/pkg/helpers"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tts := []struct {
		name string
		have error
		want int
	}{
		{name: "did not found", have: helpers.ErrDIDNotFound, want: http.StatusNotFound},
		{name: "did exists", have: helpers.ErrDIDExists, want: http.StatusConflict},
		{name: "presentation invalid", have: helpers.ErrPresentationInvalid, want: http.StatusUnauthorized},
		{name: "did mismatch", have: helpers.ErrDIDMismatch, want: http.StatusBadRequest},
		{name: "did doc missing", have: helpers.ErrDIDDocMissing, want: http.StatusBadRequest},
		{name: "illegal character", have: helpers.ErrIllegalCharacter, want: http.StatusBadRequest},
		{name: "port not allowed", have: helpers.ErrDIDPortNotAllowed, want: http.StatusBadRequest},
		{name: "no file name", have: helpers.ErrNoFileName, want: http.StatusBadRequest},
		{name: "no file read", have: helpers.ErrNoFileRead, want: http.StatusInternalServerError},
		{name: "no file write", have: helpers.ErrNoFileWrite, want: http.StatusInternalServerError},
		{name: "content conversion", have: helpers.ErrContentConversion, want: http.StatusInternalServerError},
		{name: "unknown backend", have: helpers.ErrUnknownBackend, want: http.StatusInternalServerError},
		{name: "wrapped with details", have: helpers.NewErrorDetails(helpers.ErrDIDNotFound.Title, "DID not found"), want: http.StatusNotFound},
		{name: "json syntax error", have: helpers.NewErrorDetails("json_syntax_error", "unexpected end"), want: http.StatusBadRequest},
		{name: "plain error", have: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tts {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(context.Background(), tt.have))
		})
	}
}
