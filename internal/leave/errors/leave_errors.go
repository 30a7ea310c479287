package leaveerrors

import (
	"net/http"

	"leavedesk/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"from must be before or equal to",
		http.StatusBadRequest,
	)
	ErrReqMessageTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"request message is too long",
		http.StatusBadRequest,
	)
	ErrDuplicateName = apperror.New(
		apperror.CodeConflict,
		"Leave with this name already exists",
		http.StatusBadRequest,
	)
	ErrOverlappingDates = apperror.New(
		apperror.CodeConflict,
		"Leave dates overlap with an existing leave",
		http.StatusBadRequest,
	)
	ErrRecordNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave record not found",
		http.StatusNotFound,
	)
	ErrNotAuthorized = apperror.New(
		apperror.CodeForbidden,
		"You are not authorized to accept or reject leaves",
		http.StatusForbidden,
	)
	ErrInvalidDecision = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid status. Use 'accepted' or 'rejected'",
		http.StatusBadRequest,
	)
	ErrRejectionReasonRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Rejection reason is required",
		http.StatusBadRequest,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"leave is not awaiting a decision at this stage",
		http.StatusConflict,
	)
	ErrCancellationWindowClosed = apperror.New(
		apperror.CodeInvalidInput,
		"leave can only be cancelled more than 3 days before it starts",
		http.StatusBadRequest,
	)
)
