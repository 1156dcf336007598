package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/moogar0880/problems"
)

var (
	// ErrDIDNotFound is returned when no document is stored for a DID
	ErrDIDNotFound = NewError("DID_NOT_FOUND")

	// ErrDIDExists is returned when a document already exists at the
	// requested location
	ErrDIDExists = NewError("DID_EXISTS")

	// ErrDIDMismatch is returned when a document's id doesn't match
	// the DID computed from its location
	ErrDIDMismatch = NewError("DID_MISMATCH")

	// ErrDIDDocMissing is returned when a presentation carries no
	// credential issued for the target DID
	ErrDIDDocMissing = NewError("DID_DOC_MISSING")

	// ErrIllegalCharacter is returned when a DID segment contains a
	// character outside the did:web syntax
	ErrIllegalCharacter = NewError("ILLEGAL_CHARACTER")

	// ErrDIDPortNotAllowed is returned for ports outside 1-65535
	ErrDIDPortNotAllowed = NewError("DID_PORT_NOT_ALLOWED")

	// ErrNoFileName is returned when a request path can't be
	// translated into a storage location
	ErrNoFileName = NewError("NO_FILE_NAME")

	// ErrNoFileRead is returned when a stored document can't be read
	ErrNoFileRead = NewError("NO_FILE_READ")

	// ErrNoFileWrite is returned when a document can't be persisted
	ErrNoFileWrite = NewError("NO_FILE_WRITE")

	// ErrContentConversion is returned when stored or submitted
	// content can't be converted into a document
	ErrContentConversion = NewError("CONTENT_CONVERSION")

	// ErrPresentationInvalid is returned when presentation
	// verification or authorization fails
	ErrPresentationInvalid = NewError("PRESENTATION_INVALID")

	// ErrUnknownBackend is returned for an unrecognized store backend
	ErrUnknownBackend = NewError("UNKNOWN_BACKEND")

	// ErrOwnerMissing is returned at startup when no owner DID is
	// configured
	ErrOwnerMissing = NewError("OWNER_MISSING")
)

// Error is the wire shape of every non-success response body
type Error struct {
	Title string `json:"title"`
	Err   any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("Error: [%s] %+v", e.Title, e.Err)
	}
	return fmt.Sprintf("Error: [%s]", e.Title)
}

// Is matches errors by title so that wrapped details compare equal to
// their sentinel
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Title == t.Title
}

// ErrorResponse is the envelope of an error in a JSON response
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// NewError creates a new Error with a title only
func NewError(title string) *Error {
	return &Error{Title: title}
}

// NewErrorDetails creates a new Error with details
func NewErrorDetails(title string, err any) *Error {
	return &Error{Title: title, Err: err}
}

// NewErrorFromError creates a new Error from an error
func NewErrorFromError(err error) *Error {
	if err == nil {
		return nil
	}

	if wireErr, ok := err.(*Error); ok {
		return wireErr
	}

	if typeErr, ok := err.(*json.UnmarshalTypeError); ok {
		return &Error{Title: "json_type_error", Err: formatJSONUnmarshalTypeError(typeErr)}
	}
	if syntaxErr, ok := err.(*json.SyntaxError); ok {
		return &Error{Title: "json_syntax_error", Err: map[string]any{"position": syntaxErr.Offset, "error": syntaxErr.Error()}}
	}
	if validatorErr, ok := err.(validator.ValidationErrors); ok {
		return &Error{Title: "validation_error", Err: formatValidationErrors(validatorErr)}
	}

	return NewErrorDetails("internal_server_error", err.Error())
}

func formatValidationErrors(err validator.ValidationErrors) []map[string]any {
	v := make([]map[string]any, 0)
	for _, e := range err {
		splits := strings.SplitN(e.Namespace(), ".", 2)
		namespace := e.Namespace()
		if len(splits) == 2 {
			namespace = splits[1]
		}
		v = append(v, map[string]any{
			"field":           e.Field(),
			"namespace":       namespace,
			"type":            e.Kind().String(),
			"validation":      e.Tag(),
			"validationParam": e.Param(),
			"value":           e.Value(),
		})
	}
	return v
}

func formatJSONUnmarshalTypeError(err *json.UnmarshalTypeError) map[string]any {
	return map[string]any{
		"field":    err.Field,
		"expected": err.Type.Kind().String(),
		"actual":   err.Value,
	}
}

// Problem404 returns a static RFC 7807 problem for unknown routes
func Problem404() *problems.Problem {
	return problems.NewDetailedProblem(http.StatusNotFound, "no such route")
}
