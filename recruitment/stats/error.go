package stats

import (
	"net/http"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("STATS")

var CodeStatsUnavailable = ErrRegistry.Register("UNAVAILABLE", errx.TypeInternal, http.StatusInternalServerError, "Dashboard statistics are unavailable")

func ErrStatsUnavailable() *errx.Error {
	return ErrRegistry.New(CodeStatsUnavailable)
}
