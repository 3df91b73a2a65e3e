package wishlist

import (
	"net/http"

	"go-course-client/internal/pkg/apperror"
)

var ErrInvalidCourseID = apperror.New(
	apperror.CodeValidation,
	"Invalid course ID",
	http.StatusBadRequest,
)
