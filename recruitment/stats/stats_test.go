package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type candidateCounts map[candidate.CandidateStatus]int

func (c candidateCounts) CountByStatus(ctx context.Context) (map[candidate.CandidateStatus]int, error) {
	return c, nil
}

type applicationCounts map[application.ApplicationStatus]int

func (c applicationCounts) CountByStatus(ctx context.Context) (map[application.ApplicationStatus]int, error) {
	return c, nil
}

type clientCounts map[client.InvitationStatus]int

func (c clientCounts) CountByInvitationStatus(ctx context.Context) (map[client.InvitationStatus]int, error) {
	return c, nil
}

type jobCounts struct {
	counts map[resume.JobStatus]int
	err    error
}

func (c jobCounts) CountByStatus(ctx context.Context) (map[resume.JobStatus]int, error) {
	return c.counts, c.err
}

func TestDashboard(t *testing.T) {
	svc := NewService(
		candidateCounts{candidate.CandidateStatusNew: 3, candidate.CandidateStatusHired: 1},
		applicationCounts{application.ApplicationStatusApplied: 2},
		clientCounts{client.InvitationInvited: 1, client.InvitationRegistered: 2},
		jobCounts{counts: map[resume.JobStatus]int{resume.JobStatusCompleted: 5, resume.JobStatusFailed: 1}},
	)

	got, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Totals{Candidates: 4, Applications: 2, Clients: 3, ResumeJobs: 6}, got.Totals)
	assert.Equal(t, 3, got.Candidates[candidate.CandidateStatusNew])
	assert.Contains(t, got.Candidates, candidate.CandidateStatusOnHold)
	assert.Equal(t, 0, got.Applications[application.ApplicationStatusWithdrawn])
	assert.Equal(t, 0, got.Clients[client.InvitationNotInvited])
	assert.Len(t, got.ResumeJobs, len(resume.JobStatuses))
	assert.False(t, got.GeneratedAt.IsZero())
}

func TestDashboardFailsWhenACounterFails(t *testing.T) {
	svc := NewService(candidateCounts{}, applicationCounts{}, clientCounts{}, jobCounts{err: errors.New("redis down")})

	_, err := svc.Dashboard(context.Background())
	assert.True(t, errx.IsCode(err, CodeStatsUnavailable))
}
