package probationerrors

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
	ErrInvalidStartDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid start_date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrNegativeTotalDays = apperror.New(
		apperror.CodeInvalidInput,
		"total_days must not be negative",
		http.StatusBadRequest,
	)
)
