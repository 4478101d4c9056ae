package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/Abraxas-365/talentdesk/pkg/iam/auth"
	"github.com/Abraxas-365/talentdesk/pkg/iam/user"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/Abraxas-365/talentdesk/recruitment/application/applicationsrv"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate/candidatesrv"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
)

// Seeded logins. User ids are fixed so stored tokens resolve across runs.
const (
	AdminUsername     = "admin"
	AdminPassword     = "admin1234"
	RecruiterUsername = "recruiter"
	RecruiterPassword = "recruiter1234"

	AdminID     kernel.UserID = "usr-fixture-admin"
	RecruiterID kernel.UserID = "usr-fixture-recruiter"

	AcmeID   kernel.ClientID = "cl-acme"
	GlobexID kernel.ClientID = "cl-globex"
)

type seeder struct {
	users        user.Repository
	clients      client.Repository
	candidates   *candidatesrv.CandidateService
	applications *applicationsrv.ApplicationService
}

func (s seeder) seed(ctx context.Context) error {
	if err := s.seedUsers(ctx); err != nil {
		return err
	}
	if err := s.seedClients(ctx); err != nil {
		return err
	}
	return s.seedPipeline(ctx)
}

func (s seeder) seedUsers(ctx context.Context) error {
	now := time.Now().UTC()
	accounts := []struct {
		u        user.User
		password string
	}{
		{user.User{
			ID:       AdminID,
			Username: AdminUsername,
			Email:    "admin@talentdesk.local",
			FullName: "Fixture Admin",
			Role:     user.RoleAdmin,
			TenantID: kernel.TenantID(AcmeID),
		}, AdminPassword},
		{user.User{
			ID:       RecruiterID,
			Username: RecruiterUsername,
			Email:    "recruiter@talentdesk.local",
			FullName: "Riley Recruiter",
			Role:     user.RoleRecruiter,
			ClientID: AcmeID,
		}, RecruiterPassword},
	}

	for _, a := range accounts {
		hash, err := auth.HashPassword(a.password)
		if err != nil {
			return err
		}
		u := a.u
		u.PasswordHash = hash
		u.CreatedAt = now
		if err := s.users.Create(ctx, &u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	return nil
}

func (s seeder) seedClients(ctx context.Context) error {
	now := time.Now().UTC()
	sent := now.Add(-48 * time.Hour)
	seeds := []client.Client{
		{
			ID:               AcmeID,
			Name:             "Acme Corp",
			Industry:         "Manufacturing",
			Website:          "https://acme.example",
			ContactName:      "Wile Coyote",
			ContactEmail:     "hiring@acme.example",
			InvitationStatus: client.InvitationNotInvited,
		},
		{
			ID:               GlobexID,
			Name:             "Globex",
			Industry:         "Technology",
			ContactName:      "Hank Scorpio",
			ContactEmail:     "talent@globex.example",
			InvitationStatus: client.InvitationInvited,
			InvitationToken:  "fixture-globex-invite",
			InvitationSentAt: &sent,
		},
	}

	for i := range seeds {
		seeds[i].CreatedAt = now
		seeds[i].UpdatedAt = now
		if err := s.clients.Create(ctx, &seeds[i]); err != nil {
			return fmt.Errorf("seed client %s: %w", seeds[i].Name, err)
		}
	}
	return nil
}

func (s seeder) seedPipeline(ctx context.Context) error {
	seeds := []candidate.CreateCandidateRequest{
		{Name: "Ana Torres", Email: "ana.torres@example.com", Location: "Lima", Skills: []string{"Go", "PostgreSQL"}, ExperienceYears: 6, Status: candidate.CandidateStatusInterviewing, Source: "referral"},
		{Name: "Ben Okafor", Email: "ben.okafor@example.com", Location: "Remote", Skills: []string{"React", "TypeScript"}, ExperienceYears: 3, Status: candidate.CandidateStatusScreening},
		{Name: "Chen Wei", Email: "chen.wei@example.com", Location: "Toronto", Skills: []string{"Python", "AWS"}, ExperienceYears: 9, Status: candidate.CandidateStatusOffered},
		{Name: "Dana Novak", Email: "dana.novak@example.com", Skills: []string{"Excel", "Salesforce"}, ExperienceYears: 2},
	}

	created := make([]*candidate.Candidate, 0, len(seeds))
	for _, req := range seeds {
		c, err := s.candidates.CreateCandidate(ctx, req, AdminID)
		if err != nil {
			return fmt.Errorf("seed candidate %s: %w", req.Name, err)
		}
		created = append(created, c)
	}

	apps := []application.CreateApplicationRequest{
		{CandidateID: created[0].ID, ClientID: AcmeID, JobTitle: "Backend Engineer"},
		{CandidateID: created[2].ID, ClientID: GlobexID, JobTitle: "Cloud Architect"},
		{CandidateID: created[1].ID, ClientID: AcmeID, JobTitle: "Frontend Engineer"},
	}
	for _, req := range apps {
		if _, err := s.applications.CreateApplication(ctx, req, AdminID); err != nil {
			return fmt.Errorf("seed application %s: %w", req.JobTitle, err)
		}
	}
	return nil
}
