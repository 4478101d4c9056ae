package application

import (
	"testing"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanUpdateStatus(t *testing.T) {
	tests := []struct {
		from ApplicationStatus
		to   ApplicationStatus
		want bool
	}{
		{ApplicationStatusApplied, ApplicationStatusScreening, true},
		{ApplicationStatusApplied, ApplicationStatusOffer, true},
		{ApplicationStatusInterview, ApplicationStatusHired, true},
		{ApplicationStatusInterview, ApplicationStatusScreening, false},
		{ApplicationStatusApplied, ApplicationStatusApplied, false},
		{ApplicationStatusOffer, ApplicationStatusRejected, true},
		{ApplicationStatusScreening, ApplicationStatusWithdrawn, true},
		{ApplicationStatusHired, ApplicationStatusRejected, false},
		{ApplicationStatusRejected, ApplicationStatusApplied, false},
		{ApplicationStatusWithdrawn, ApplicationStatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			app := &Application{Status: tt.from}
			assert.Equal(t, tt.want, app.CanUpdateStatus(tt.to))
		})
	}
}

func TestAuditLogTracksStatus(t *testing.T) {
	created := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	app := New("a1", CreateApplicationRequest{CandidateID: "c1", ClientID: "cl1", JobTitle: " Backend Engineer "}, "u1", created)

	require.Len(t, app.AuditLog, 1)
	assert.Equal(t, ApplicationStatus(""), app.AuditLog[0].From)
	assert.Equal(t, ApplicationStatusApplied, app.AuditLog[0].To)
	assert.Equal(t, "Backend Engineer", app.JobTitle)

	require.NoError(t, app.UpdateStatus("interview", "u2", "phone screen skipped", created.Add(time.Hour)))
	require.NoError(t, app.UpdateStatus(ApplicationStatusRejected, "u2", "", created.Add(-time.Hour)))

	require.Len(t, app.AuditLog, 3)
	last := app.AuditLog[len(app.AuditLog)-1]
	assert.Equal(t, app.Status, last.To)
	assert.Equal(t, ApplicationStatusInterview, last.From)
	assert.False(t, app.UpdatedAt.Before(app.CreatedAt))

	err := app.UpdateStatus(ApplicationStatusHired, "u2", "", created.Add(2*time.Hour))
	assert.True(t, errx.IsCode(err, CodeInvalidStatusTransition))
	assert.Len(t, app.AuditLog, 3)

	err = app.UpdateStatus("PROMOTED", "u2", "", created)
	assert.True(t, errx.IsCode(err, CodeInvalidStatus))
}
