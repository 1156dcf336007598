package httphelpers

import (
	"context"
	"errors"
	"net/http"

	"github.com/identinet/did-web-server/pkg/helpers"
)

// StatusCode maps an error to the HTTP status code of the response
func StatusCode(ctx context.Context, err error) int {
	var wireErr *helpers.Error
	if !errors.As(err, &wireErr) {
		return http.StatusInternalServerError
	}

	switch wireErr.Title {
	case helpers.ErrDIDNotFound.Title:
		return http.StatusNotFound
	case helpers.ErrDIDExists.Title:
		return http.StatusConflict
	case helpers.ErrPresentationInvalid.Title:
		return http.StatusUnauthorized
	case helpers.ErrDIDMismatch.Title,
		helpers.ErrDIDDocMissing.Title,
		helpers.ErrIllegalCharacter.Title,
		helpers.ErrDIDPortNotAllowed.Title,
		helpers.ErrNoFileName.Title:
		return http.StatusBadRequest
	case helpers.ErrContentConversion.Title,
		helpers.ErrNoFileRead.Title,
		helpers.ErrNoFileWrite.Title,
		helpers.ErrUnknownBackend.Title:
		return http.StatusInternalServerError
	case "json_type_error", "json_syntax_error", "validation_error":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
