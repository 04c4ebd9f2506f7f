package command

import (
	"encoding/json"

	"github.com/liuxd6825/iedriver/common"
)

// Response is the JSON wire protocol response of a command.
type Response struct {
	SessionID string        `json:"sessionId"`
	Status    common.Status `json:"status"`
	Value     any           `json:"value"`
}

// ErrorValue is the value of a failed response.
type ErrorValue struct {
	Message string `json:"message"`
}

// SetSuccessResponse marks the command successful with value.
func (r *Response) SetSuccessResponse(value any) {
	r.Status = common.Success
	r.Value = value
}

// SetErrorResponse marks the command failed with status and message.
func (r *Response) SetErrorResponse(status common.Status, message string) {
	r.Status = status
	r.Value = ErrorValue{Message: message}
}

// SetErrorFromError maps err to its wire status.
func (r *Response) SetErrorFromError(err error) {
	r.SetErrorResponse(common.StatusFromError(err), err.Error())
}

// Message returns the error message of a failed response.
func (r *Response) Message() string {
	if v, ok := r.Value.(ErrorValue); ok {
		return v.Message
	}
	return ""
}

// Serialize renders the response as JSON.
func (r *Response) Serialize() ([]byte, error) {
	return json.Marshal(r)
}
