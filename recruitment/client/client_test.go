package client

import (
	"testing"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitationLifecycle(t *testing.T) {
	created := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	c := &Client{ID: "acme", Name: "Acme", ContactEmail: "hr@acme.io", InvitationStatus: InvitationNotInvited, CreatedAt: created, UpdatedAt: created}

	err := c.Register("anything", created)
	assert.True(t, errx.IsCode(err, CodeNotInvited))

	require.NoError(t, c.Invite("tok-1", created.Add(time.Minute)))
	assert.Equal(t, InvitationInvited, c.InvitationStatus)
	firstSent := *c.InvitationSentAt

	require.NoError(t, c.Invite("tok-2", created.Add(time.Hour)))
	assert.Equal(t, "tok-2", c.InvitationToken)
	assert.True(t, c.InvitationSentAt.After(firstSent))

	err = c.Register("tok-1", created.Add(2*time.Hour))
	assert.True(t, errx.IsCode(err, CodeInvalidInvitationToken))
	assert.Equal(t, InvitationInvited, c.InvitationStatus)

	require.NoError(t, c.Register("tok-2", created.Add(2*time.Hour)))
	assert.Equal(t, InvitationRegistered, c.InvitationStatus)
	assert.Empty(t, c.InvitationToken)
	require.NotNil(t, c.RegisteredAt)

	assert.True(t, errx.IsCode(c.Invite("tok-3", created), CodeAlreadyRegistered))
	assert.True(t, errx.IsCode(c.Register("tok-2", created), CodeAlreadyRegistered))
}

func TestInviteNeedsContactEmail(t *testing.T) {
	c := &Client{ID: "acme", InvitationStatus: InvitationNotInvited}
	err := c.Invite("tok", time.Now())
	assert.True(t, errx.IsCode(err, CodeMissingContactEmail))
	assert.Equal(t, InvitationNotInvited, c.InvitationStatus)
}

func TestClientMatches(t *testing.T) {
	c := &Client{Name: "Acme Corp", Industry: "Fintech", ContactName: "Rosa", ContactEmail: "rosa@acme.io", InvitationStatus: InvitationInvited}

	tests := []struct {
		name   string
		filter ListClientsRequest
		want   bool
	}{
		{"empty", ListClientsRequest{}, true},
		{"search contact", ListClientsRequest{Search: "ROSA"}, true},
		{"industry case", ListClientsRequest{Industry: "fintech"}, true},
		{"status mismatch", ListClientsRequest{InvitationStatus: InvitationRegistered}, false},
		{"search miss", ListClientsRequest{Search: "globex"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Matches(tt.filter))
		})
	}
}
