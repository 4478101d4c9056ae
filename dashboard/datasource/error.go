package datasource

import (
	"net/http"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("DATASOURCE")

var (
	CodeMissingToken  = ErrRegistry.Register("MISSING_TOKEN", errx.TypeExternal, http.StatusBadGateway, "Login response did not include a token")
	CodeUnknownSource = ErrRegistry.Register("UNKNOWN_SOURCE", errx.TypeValidation, http.StatusBadRequest, "Unknown data source")
)

func ErrMissingToken() *errx.Error {
	return ErrRegistry.New(CodeMissingToken)
}

func ErrUnknownSource(name string) *errx.Error {
	return ErrRegistry.New(CodeUnknownSource).WithDetail("source", name)
}
