// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"errors"
	"fmt"
)

// ServiceError is a structured error response from the image service.
// Extract it with errors.As:
//
//	var serviceErr *remote.ServiceError
//	if errors.As(err, &serviceErr) && serviceErr.Code == remote.ErrCodeLimitExceeded {
//	    ...
//	}
type ServiceError struct {
	// Code is the machine-readable error code, e.g. "NOT_FOUND".
	Code string `json:"errcode"`
	// Message is the human-readable description.
	Message string `json:"error"`
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("image service: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Error codes returned by the image service.
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeUnknownToken  = "UNKNOWN_TOKEN"
	ErrCodeUnknownUser   = "UNKNOWN_USER"
	ErrCodeInvalidParam  = "INVALID_PARAM"
	ErrCodeLimitExceeded = "LIMIT_EXCEEDED"
	ErrCodeUnknown       = "UNKNOWN"
)

// IsServiceError reports whether err is a *ServiceError with the given
// code.
func IsServiceError(err error, code string) bool {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Code == code
	}
	return false
}
