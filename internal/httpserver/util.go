package httpserver

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/cryptoedu/presale-server/internal/content"
	apperrors "github.com/cryptoedu/presale-server/internal/errors"
	"github.com/cryptoedu/presale-server/internal/intake"
	"github.com/cryptoedu/presale-server/internal/presale"
)

// decodeJSON decodes a JSON request body into the destination struct.
// The reader will be closed after decoding.
func decodeJSON(r io.ReadCloser, dest any) error {
	defer r.Close()
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

// errorCodeOf maps a service error onto the response envelope's code,
// message, and details.
func errorCodeOf(err error) (apperrors.ErrorCode, string, map[string]any) {
	var flow *presale.Error
	if errors.As(err, &flow) {
		return flow.Code, flow.Message, nil
	}

	var form *intake.Error
	if errors.As(err, &form) {
		details := map[string]any{}
		if form.Field != "" {
			details["field"] = form.Field
		}
		return form.Code, formMessage(form), details
	}

	if code, field, isField := content.FieldErrorCode(err); isField {
		return code, "required field is missing", map[string]any{"field": field}
	}

	return apperrors.ErrCodeInternalError, "internal error", nil
}

func formMessage(err *intake.Error) string {
	switch err.Code {
	case apperrors.ErrCodeMissingField:
		return "required field is missing: " + err.Field
	case apperrors.ErrCodeInvalidField:
		return "field is invalid: " + err.Field
	case apperrors.ErrCodeAlreadySubmitted:
		return "this form was already submitted"
	default:
		return err.Error()
	}
}
