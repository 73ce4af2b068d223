package gatesdk

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response decoded into the uniform error body.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("gatesdk: %s (%d): %s", e.Code, e.Status, e.Description)
	}
	return fmt.Sprintf("gatesdk: %s (%d)", e.Code, e.Status)
}

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsConflict reports whether err is a 409 from the service.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// IsForbidden reports whether err is a 401 or 403 from the service.
func IsForbidden(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}
