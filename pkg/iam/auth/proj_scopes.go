package auth

// ============================================================================
// DOMAIN-SPECIFIC SCOPES - ATS (Applicant Tracking System)
// ============================================================================

const (
	// Candidate scopes
	ScopeCandidatesAll    = "candidates:*"
	ScopeCandidatesRead   = "candidates:read"
	ScopeCandidatesWrite  = "candidates:write"
	ScopeCandidatesDelete = "candidates:delete"

	// Application scopes
	ScopeApplicationsAll    = "applications:*"
	ScopeApplicationsRead   = "applications:read"
	ScopeApplicationsWrite  = "applications:write"
	ScopeApplicationsDelete = "applications:delete"

	// Client scopes
	ScopeClientsAll    = "clients:*"
	ScopeClientsRead   = "clients:read"
	ScopeClientsWrite  = "clients:write"
	ScopeClientsDelete = "clients:delete"
	ScopeClientsInvite = "clients:invite" // Send registration invitations

	// Resume ingestion scopes
	ScopeResumesAll    = "resumes:*"
	ScopeResumesRead   = "resumes:read"
	ScopeResumesIngest = "resumes:ingest" // Upload resumes and trigger parsing

	// Reporting scopes
	ScopeStatsView    = "stats:view"
	ScopeEventsStream = "events:stream" // Subscribe to live updates
)

// DomainScopeCategories organizes domain-specific scopes
var DomainScopeCategories = map[string][]string{
	"Candidates": {
		ScopeCandidatesAll,
		ScopeCandidatesRead,
		ScopeCandidatesWrite,
		ScopeCandidatesDelete,
	},
	"Applications": {
		ScopeApplicationsAll,
		ScopeApplicationsRead,
		ScopeApplicationsWrite,
		ScopeApplicationsDelete,
	},
	"Clients": {
		ScopeClientsAll,
		ScopeClientsRead,
		ScopeClientsWrite,
		ScopeClientsDelete,
		ScopeClientsInvite,
	},
	"Resumes": {
		ScopeResumesAll,
		ScopeResumesRead,
		ScopeResumesIngest,
	},
	"Reporting": {
		ScopeStatsView,
		ScopeEventsStream,
	},
}

// DomainScopeGroups defines the scopes granted to each user role
var DomainScopeGroups = map[string][]string{
	"admin": {
		ScopeAll,
	},
	"recruiter": {
		ScopeCandidatesAll,
		ScopeApplicationsAll,
		ScopeClientsRead,
		ScopeClientsWrite,
		ScopeClientsInvite,
		ScopeResumesAll,
		ScopeStatsView,
		ScopeEventsStream,
	},
	"viewer": {
		ScopeCandidatesRead,
		ScopeApplicationsRead,
		ScopeClientsRead,
		ScopeResumesRead,
		ScopeStatsView,
		ScopeEventsStream,
	},
}
