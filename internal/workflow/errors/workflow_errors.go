package workflowerrors

import (
	"fmt"
	"net/http"

	"go-hrflow/internal/shared/apperror"
)

// Taxonomy roots. Specific errors are derived from these, so callers can
// always test with errors.Is against the root.
var (
	ErrInvalidState = apperror.New(
		apperror.CodeInvalidState,
		"transition is not allowed in the current state",
		http.StatusBadRequest,
	)
	ErrUnauthorizedTransition = apperror.New(
		apperror.CodeForbidden,
		"actor is not permitted to perform this transition",
		http.StatusForbidden,
	)
	ErrEditLimitExceeded = apperror.New(
		apperror.CodeEditLimitExceeded,
		"edit limit exceeded",
		http.StatusBadRequest,
	)
	ErrConcurrentModification = apperror.New(
		apperror.CodeConcurrentModification,
		"request was modified concurrently, reload and retry",
		http.StatusConflict,
	)
	ErrValidation = apperror.New(
		apperror.CodeInvalidInput,
		"invalid workflow input",
		http.StatusBadRequest,
	)
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"request not found",
		http.StatusNotFound,
	)
	ErrActorNotFound = apperror.New(
		apperror.CodeForbidden,
		"actor is not known in this organization",
		http.StatusForbidden,
	)
	ErrCorruptTrail = apperror.New(
		apperror.CodeInternalError,
		"approval trail failed verification",
		http.StatusInternalServerError,
	)
)

// Validation errors.
var (
	ErrReasonRequired     = apperror.Derive(ErrValidation, "reason is required when rejecting", nil)
	ErrCommentRequired    = apperror.Derive(ErrValidation, "comment is required when requesting clarification", nil)
	ErrUnknownKind        = apperror.Derive(ErrValidation, "unknown request kind", nil)
	ErrNegativeMagnitude  = apperror.Derive(ErrValidation, "magnitude must not be negative", nil)
	ErrEmptyResolution    = apperror.Derive(ErrValidation, "stage resolution must contain at least one stage", nil)
	ErrNoRequiredStage    = apperror.Derive(ErrValidation, "stage resolution must contain a required stage", nil)
	ErrInvalidDateRange   = apperror.Derive(ErrValidation, "end date must not be before start date", nil)
	ErrSubjectImmutable   = apperror.Derive(ErrValidation, "request subject cannot be changed", nil)
	ErrUnknownAction      = apperror.Derive(ErrValidation, "unknown workflow action", nil)
	ErrStageIndexMismatch = apperror.Derive(ErrValidation, "event stage does not match the request stage", nil)
)

// ErrChainChanged refuses an edit to a submitted request that would route it
// through a different approval chain.
var ErrChainChanged = apperror.Derive(ErrInvalidState, "edit would change the approval chain of a submitted request", nil)

// Unauthorized names the missing permission without describing the request.
func Unauthorized(permission string) error {
	return apperror.Derive(
		ErrUnauthorizedTransition,
		fmt.Sprintf("missing permission %s", permission),
		map[string]string{"permission": permission},
	)
}

func InvalidState(status, action string) error {
	return apperror.Derive(
		ErrInvalidState,
		fmt.Sprintf("cannot %s a request in status %s", action, status),
		map[string]string{"status": status, "action": action},
	)
}

func EditLimitExceeded(editCount, maxEdits int) error {
	return apperror.Derive(
		ErrEditLimitExceeded,
		fmt.Sprintf("schedule already edited %d of %d allowed times", editCount, maxEdits),
		map[string]int{"edit_count": editCount, "max_allowed_edits": maxEdits},
	)
}

func ConcurrentModification(expected, actual int64) error {
	return apperror.Derive(
		ErrConcurrentModification,
		ErrConcurrentModification.Message,
		map[string]int64{"expected_version": expected, "actual_version": actual},
	)
}

func CorruptTrail(format string, args ...any) error {
	return apperror.Derive(ErrCorruptTrail, ErrCorruptTrail.Message, fmt.Sprintf(format, args...))
}
