package intent

import (
	"net/http"

	"go-course-client/internal/pkg/apperror"
)

var (
	ErrInvalidCourseID = apperror.New(
		apperror.CodeValidation,
		"Course ID must not be empty",
		http.StatusBadRequest,
	)

	ErrUnauthenticated = apperror.New(
		apperror.CodeUnauthenticated,
		"Intent mutations require a session credential",
		http.StatusUnauthorized,
	)

	ErrToggleFailed = apperror.New(
		apperror.CodeNetworkFailure,
		"Toggle was rolled back: reconciliation with the server failed",
		http.StatusBadGateway,
	)

	ErrFetchFailed = apperror.New(
		apperror.CodeNetworkFailure,
		"Failed to fetch the server's intent set",
		http.StatusBadGateway,
	)

	ErrClearFailed = apperror.New(
		apperror.CodeNetworkFailure,
		"Clear was rolled back: bulk remove failed",
		http.StatusBadGateway,
	)
)
