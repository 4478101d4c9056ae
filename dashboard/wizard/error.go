package wizard

import (
	"net/http"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("WIZARD")

var (
	CodeInvalidState  = ErrRegistry.Register("INVALID_STATE", errx.TypeBusiness, http.StatusConflict, "Action not available at this step")
	CodeNoFile        = ErrRegistry.Register("NO_FILE", errx.TypeValidation, http.StatusBadRequest, "Select a resume file first")
	CodeNoClient      = ErrRegistry.Register("NO_CLIENT", errx.TypeValidation, http.StatusBadRequest, "Your account is not linked to a client, resumes cannot be uploaded")
	CodeIngestFailed  = ErrRegistry.Register("INGEST_FAILED", errx.TypeExternal, http.StatusBadGateway, "Resume upload failed")
	CodeNameRequired  = ErrRegistry.Register("NAME_REQUIRED", errx.TypeValidation, http.StatusBadRequest, "Name is required")
	CodeDiscarded     = ErrRegistry.Register("DISCARDED", errx.TypeBusiness, http.StatusConflict, "The wizard was closed before the step finished")
	CodeProfileFailed = ErrRegistry.Register("PROFILE_FAILED", errx.TypeExternal, http.StatusBadGateway, "Could not load your profile")
)

func ErrInvalidState(action string, state State) *errx.Error {
	return ErrRegistry.New(CodeInvalidState).
		WithDetail("action", action).
		WithDetail("state", state)
}

func ErrNoFile() *errx.Error {
	return ErrRegistry.New(CodeNoFile)
}

func ErrNoClient() *errx.Error {
	return ErrRegistry.New(CodeNoClient)
}

func ErrNameRequired() *errx.Error {
	return ErrRegistry.New(CodeNameRequired).WithDetail("field", "name")
}

func ErrDiscarded() *errx.Error {
	return ErrRegistry.New(CodeDiscarded)
}
