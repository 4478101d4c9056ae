package user

import (
	"net/http"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("USER")

var (
	CodeUserNotFound     = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "User not found")
	CodeUsernameTaken    = ErrRegistry.Register("USERNAME_TAKEN", errx.TypeConflict, http.StatusConflict, "Username already taken")
	CodeInvalidRole      = ErrRegistry.Register("INVALID_ROLE", errx.TypeValidation, http.StatusBadRequest, "Invalid role")
	CodeUsernameRequired = ErrRegistry.Register("USERNAME_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Username is required")
)

func ErrUserNotFound() *errx.Error {
	return ErrRegistry.New(CodeUserNotFound)
}

func ErrUsernameTaken() *errx.Error {
	return ErrRegistry.New(CodeUsernameTaken)
}

func ErrInvalidRole() *errx.Error {
	return ErrRegistry.New(CodeInvalidRole)
}

func ErrUsernameRequired() *errx.Error {
	return ErrRegistry.New(CodeUsernameRequired)
}
