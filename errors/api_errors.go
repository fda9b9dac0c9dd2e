package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"go.pilab.hu/mcportal/domain"
)

// APIError is the JSON error body returned by every endpoint.
type APIError struct {
	Status int    `json:"-"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Detail)
}

// Common error constructors
func NewBadRequest(detail string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Detail: detail}
}

func NewUnauthorized(detail string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Detail: detail}
}

func NewForbidden(detail string) *APIError {
	return &APIError{Status: http.StatusForbidden, Detail: detail}
}

func NewNotFound(detail string) *APIError {
	return &APIError{Status: http.StatusNotFound, Detail: detail}
}

func NewServerError() *APIError {
	return &APIError{Status: http.StatusInternalServerError, Detail: "Internal server error"}
}

// FromDomain maps an error returned by the service layer to the response
// sent to the client. Unknown errors become a generic 500 so internal
// details are not leaked.
func FromDomain(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case stderrors.Is(err, domain.ErrInvalidUsername):
		return NewBadRequest("Invalid Minecraft username")
	case stderrors.Is(err, domain.ErrCannotDeleteSelf):
		return NewBadRequest("Cannot delete yourself")
	case stderrors.Is(err, domain.ErrItemOutOfStock):
		return NewBadRequest("Item is out of stock")
	case stderrors.Is(err, domain.ErrInvalidInput):
		return NewBadRequest(err.Error())
	case stderrors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorized("Could not validate credentials")
	case stderrors.Is(err, domain.ErrForbidden):
		return NewForbidden("Access denied")
	case stderrors.Is(err, domain.ErrUserNotFound):
		return NewNotFound("User not found")
	case stderrors.Is(err, domain.ErrItemNotFound):
		return NewNotFound("Item not found")
	default:
		return NewServerError()
	}
}
