package candidate

import (
	"net/http"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("CANDIDATE")

// Error codes
var (
	CodeCandidateNotFound        = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Candidate not found")
	CodeEmailAlreadyExists       = ErrRegistry.Register("EMAIL_ALREADY_EXISTS", errx.TypeConflict, http.StatusConflict, "Email already registered")
	CodeCandidateHasApplications = ErrRegistry.Register("HAS_APPLICATIONS", errx.TypeBusiness, http.StatusConflict, "Cannot delete candidate with applications")
	CodeInsufficientPermissions  = ErrRegistry.Register("INSUFFICIENT_PERMISSIONS", errx.TypeAuthorization, http.StatusForbidden, "Insufficient permissions")
	CodeInvalidEmail             = ErrRegistry.Register("INVALID_EMAIL", errx.TypeValidation, http.StatusBadRequest, "Invalid email format")
	CodeInvalidRequest           = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid request data")
	CodeValidationFailed         = ErrRegistry.Register("VALIDATION_FAILED", errx.TypeValidation, http.StatusBadRequest, "Request validation failed")
	CodeInvalidStatus            = ErrRegistry.Register("INVALID_STATUS", errx.TypeValidation, http.StatusBadRequest, "Invalid candidate status")
	CodeInvalidFlag              = ErrRegistry.Register("INVALID_FLAG", errx.TypeValidation, http.StatusBadRequest, "Invalid flag type")
	CodeNegativeExperience       = ErrRegistry.Register("NEGATIVE_EXPERIENCE", errx.TypeValidation, http.StatusBadRequest, "Experience cannot be negative")
	CodeBulkTooLarge             = ErrRegistry.Register("BULK_TOO_LARGE", errx.TypeValidation, http.StatusBadRequest, "Too many candidates in one bulk operation")
)

// Helper functions
func ErrCandidateNotFound() *errx.Error {
	return ErrRegistry.New(CodeCandidateNotFound)
}

func ErrEmailAlreadyExists() *errx.Error {
	return ErrRegistry.New(CodeEmailAlreadyExists)
}

func ErrCandidateHasApplications() *errx.Error {
	return ErrRegistry.New(CodeCandidateHasApplications)
}

func ErrInsufficientPermissions() *errx.Error {
	return ErrRegistry.New(CodeInsufficientPermissions)
}

func ErrInvalidEmail() *errx.Error {
	return ErrRegistry.New(CodeInvalidEmail)
}

func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}

func ErrValidationFailed() *errx.Error {
	return ErrRegistry.New(CodeValidationFailed)
}

func ErrInvalidStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidStatus)
}

func ErrInvalidFlag() *errx.Error {
	return ErrRegistry.New(CodeInvalidFlag)
}

func ErrNegativeExperience() *errx.Error {
	return ErrRegistry.New(CodeNegativeExperience)
}

func ErrBulkTooLarge() *errx.Error {
	return ErrRegistry.New(CodeBulkTooLarge)
}
