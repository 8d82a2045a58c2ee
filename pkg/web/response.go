// Package web defines common components for a web application.
package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	Message *string `json:"message,omitempty"`
	Data    any     `json:"data,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// Error wraps a given err into json friendly struct.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// Message wraps a ledger result message. An empty message is still rendered.
func Message(msg string) Response {
	return Response{Message: &msg}
}

// GetErrorMsg turns a validation error into a human readable suffix for the field name.
func GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return " field is required"
	case "min":
		return fmt.Sprintf(" must be greater than or equal to %s", fe.Param())
	case "max":
		return fmt.Sprintf(" must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf(" must be greater than %s", fe.Param())
	case "currency":
		return " is not supported"
	case "alphanum":
		return " must contain only letters and digits"
	}

	return " is invalid"
}
