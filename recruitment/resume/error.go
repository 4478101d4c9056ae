package resume

import (
	"net/http"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RESUME")

// Error codes - Ingestion
var (
	CodeInvalidFileFormat       = ErrRegistry.Register("INVALID_FILE_FORMAT", errx.TypeValidation, http.StatusBadRequest, "Invalid file format")
	CodeFileTooLarge            = ErrRegistry.Register("FILE_TOO_LARGE", errx.TypeValidation, http.StatusRequestEntityTooLarge, "File too large")
	CodeInvalidEnvelope         = ErrRegistry.Register("INVALID_ENVELOPE", errx.TypeValidation, http.StatusBadRequest, "Invalid message envelope")
	CodeInvalidAttachment       = ErrRegistry.Register("INVALID_ATTACHMENT", errx.TypeValidation, http.StatusBadRequest, "Attachment could not be decoded")
	CodeClientRequired          = ErrRegistry.Register("CLIENT_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Client id is required")
	CodeFileStoreFailed         = ErrRegistry.Register("FILE_STORE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to store file")
	CodeFileReadFailed          = ErrRegistry.Register("FILE_READ_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to read file")
	CodeResumeParseFailed       = ErrRegistry.Register("PARSE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to parse resume")
	CodeInsufficientPermissions = ErrRegistry.Register("INSUFFICIENT_PERMISSIONS", errx.TypeAuthorization, http.StatusForbidden, "Insufficient permissions")
)

// Error codes - Job/Queue Operations
var (
	CodeJobNotFound          = ErrRegistry.Register("JOB_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Processing job not found")
	CodeJobAlreadyProcessing = ErrRegistry.Register("JOB_ALREADY_PROCESSING", errx.TypeConflict, http.StatusConflict, "Job is already being processed")
	CodeJobFailed            = ErrRegistry.Register("JOB_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Job processing failed")
	CodeJobMaxRetriesReached = ErrRegistry.Register("JOB_MAX_RETRIES", errx.TypeInternal, http.StatusInternalServerError, "Job exceeded maximum retry attempts")
	CodeQueueEnqueueFailed   = ErrRegistry.Register("QUEUE_ENQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to enqueue job")
	CodeJobCreationFailed    = ErrRegistry.Register("JOB_CREATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to create job record")
	CodeJobUpdateFailed      = ErrRegistry.Register("JOB_UPDATE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to update job status")
	CodeInvalidJobStatus     = ErrRegistry.Register("INVALID_JOB_STATUS", errx.TypeValidation, http.StatusBadRequest, "Invalid job status")
)

// Helper functions - Ingestion
func ErrInvalidFileFormat() *errx.Error {
	return ErrRegistry.New(CodeInvalidFileFormat)
}

func ErrFileTooLarge() *errx.Error {
	return ErrRegistry.New(CodeFileTooLarge)
}

func ErrInvalidEnvelope() *errx.Error {
	return ErrRegistry.New(CodeInvalidEnvelope)
}

func ErrInvalidAttachment() *errx.Error {
	return ErrRegistry.New(CodeInvalidAttachment)
}

func ErrClientRequired() *errx.Error {
	return ErrRegistry.New(CodeClientRequired)
}

func ErrFileStoreFailed() *errx.Error {
	return ErrRegistry.New(CodeFileStoreFailed)
}

func ErrFileReadFailed() *errx.Error {
	return ErrRegistry.New(CodeFileReadFailed)
}

func ErrResumeParseFailed() *errx.Error {
	return ErrRegistry.New(CodeResumeParseFailed)
}

func ErrInsufficientPermissions() *errx.Error {
	return ErrRegistry.New(CodeInsufficientPermissions)
}

// Helper functions - Job/Queue Operations
func ErrJobNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobNotFound)
}

func ErrJobAlreadyProcessing() *errx.Error {
	return ErrRegistry.New(CodeJobAlreadyProcessing)
}

func ErrJobFailed() *errx.Error {
	return ErrRegistry.New(CodeJobFailed)
}

func ErrJobMaxRetriesReached() *errx.Error {
	return ErrRegistry.New(CodeJobMaxRetriesReached)
}

func ErrQueueEnqueueFailed() *errx.Error {
	return ErrRegistry.New(CodeQueueEnqueueFailed)
}

func ErrJobCreationFailed() *errx.Error {
	return ErrRegistry.New(CodeJobCreationFailed)
}

func ErrJobUpdateFailed() *errx.Error {
	return ErrRegistry.New(CodeJobUpdateFailed)
}

func ErrInvalidJobStatus() *errx.Error {
	return ErrRegistry.New(CodeInvalidJobStatus)
}
