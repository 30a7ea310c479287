package usererrors

import (
	"net/http"

	"leavedesk/internal/shared/apperror"
)

var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrUsernameAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Username already exists. Please choose a different one.",
		http.StatusConflict,
	)
	ErrFullNameClash = apperror.New(
		apperror.CodeConflict,
		"A user with the same full name already exists",
		http.StatusConflict,
	)
	ErrInvalidRole = apperror.New(
		apperror.CodeInvalidInput,
		"role must be one of FACULTY, HOD, DIRECTOR",
		http.StatusBadRequest,
	)
)
