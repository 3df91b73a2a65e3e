package gateway

import (
	"net/http"

	"go-course-client/internal/pkg/apperror"
)

var (
	ErrUnauthenticated = apperror.New(
		apperror.CodeUnauthenticated,
		"Request requires a valid session credential",
		http.StatusUnauthorized,
	)

	ErrConflict = apperror.New(
		apperror.CodeConflict,
		"Server rejected the operation due to a state mismatch",
		http.StatusConflict,
	)

	ErrNotFound = apperror.New(
		apperror.CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrNetworkFailure = apperror.New(
		apperror.CodeNetworkFailure,
		"Request failed at the transport level",
		http.StatusBadGateway,
	)

	ErrRequestFailed = apperror.New(
		apperror.CodeNetworkFailure,
		"Server returned a non-success status",
		http.StatusBadGateway,
	)
)
