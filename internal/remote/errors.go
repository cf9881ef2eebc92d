package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"energy-admin/internal/gateway"
)

// APIError is an error response that does not map to a gateway error.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

type errorBody struct {
	Error  string                `json:"error"`
	Errors []gateway.FieldError `json:"errors"`
}

// decodeError maps an HTTP error response back to the gateway error set.
func decodeError(status int, raw []byte, table string) error {
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	apiErr := &APIError{Status: status, Message: body.Error}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}

	switch status {
	case http.StatusUnauthorized:
		if table == "" {
			return apiErr
		}
		return fmt.Errorf("%w: %s", gateway.ErrNotAuthenticated, apiErr.Message)
	case http.StatusNotFound:
		if strings.Contains(body.Error, gateway.ErrUnknownTable.Error()) {
			return fmt.Errorf("%w: %s", gateway.ErrUnknownTable, table)
		}
		return fmt.Errorf("%w: %s", gateway.ErrNotFound, apiErr.Message)
	case http.StatusBadRequest:
		if strings.Contains(body.Error, gateway.ErrUnknownColumn.Error()) {
			return fmt.Errorf("%w: %s", gateway.ErrUnknownColumn, body.Error)
		}
	case http.StatusConflict:
		conflict := &gateway.ConflictError{Table: table, Err: apiErr}
		if len(body.Errors) > 0 {
			conflict.Field = body.Errors[0].Field
			apiErr.Message = body.Errors[0].Message
		}
		return conflict
	case http.StatusUnprocessableEntity:
		if len(body.Errors) > 0 {
			return &gateway.ValidationError{Fields: body.Errors}
		}
	}
	return apiErr
}
