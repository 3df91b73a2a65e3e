package catalog

import (
	"net/http"

	"go-course-client/internal/pkg/apperror"
)

var (
	ErrInvalidPriceRange = apperror.New(
		apperror.CodeValidation,
		"Invalid price range: min must be >= 0 and <= max",
		http.StatusBadRequest,
	)

	ErrInvalidRating = apperror.New(
		apperror.CodeValidation,
		"Rating threshold must be between 0 and 5",
		http.StatusBadRequest,
	)

	ErrUnknownSortKey = apperror.New(
		apperror.CodeValidation,
		"Unknown sort key",
		http.StatusBadRequest,
	)

	ErrUnknownLevel = apperror.New(
		apperror.CodeValidation,
		"Unknown course level",
		http.StatusBadRequest,
	)

	ErrSubcategoryWithoutCategory = apperror.New(
		apperror.CodeValidation,
		"Subcategory selection requires a category selection",
		http.StatusBadRequest,
	)

	ErrSubcategoryOutsideCategory = apperror.New(
		apperror.CodeValidation,
		"Subcategory does not belong to the selected category",
		http.StatusBadRequest,
	)

	ErrCategoryNotFound = apperror.New(
		apperror.CodeNotFound,
		"Category not found",
		http.StatusNotFound,
	)

	ErrCatalogFetchFailed = apperror.New(
		apperror.CodeNetworkFailure,
		"Failed to fetch catalog data",
		http.StatusBadGateway,
	)
)
