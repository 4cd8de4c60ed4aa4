package approvalerrors

import (
	"net/http"

	"go-hrflow/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrDatesRequired = apperror.New(
		apperror.CodeInvalidInput,
		"start_date and end_date are required for this kind",
		http.StatusBadRequest,
	)
	ErrSubjectNotInCompany = apperror.New(
		apperror.CodeInvalidInput,
		"employee does not belong to this company",
		http.StatusBadRequest,
	)
	ErrInvalidSortKey = apperror.New(
		apperror.CodeInvalidInput,
		"sort must be one of date, name, magnitude",
		http.StatusBadRequest,
	)
	ErrInvalidSortOrder = apperror.New(
		apperror.CodeInvalidInput,
		"order must be asc or desc",
		http.StatusBadRequest,
	)
	ErrInvalidMagnitude = apperror.New(
		apperror.CodeInvalidInput,
		"magnitude must be a non-negative integer",
		http.StatusBadRequest,
	)
	ErrApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval request not found",
		http.StatusNotFound,
	)
)
