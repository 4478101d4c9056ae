package main

import (
	"fmt"

	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/spf13/cobra"
)

func newStatsCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Pipeline counts for the dashboard home",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			v, err := a.queries.Stats.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			s := v.Data

			t := newTable(a.out)
			t.row("Candidates", s.Totals.Candidates)
			for _, st := range candidate.Statuses {
				t.row("", st, s.Candidates[st])
			}
			t.row("Applications", s.Totals.Applications)
			for _, st := range application.Statuses {
				t.row("", st, s.Applications[st])
			}
			t.row("Clients", s.Totals.Clients)
			for _, st := range client.InvitationStatuses {
				t.row("", st, s.Clients[st])
			}
			t.row("Resume jobs", s.Totals.ResumeJobs)
			for _, st := range resume.JobStatuses {
				t.row("", st, s.ResumeJobs[st])
			}
			if err := t.flush(); err != nil {
				return err
			}

			fmt.Fprintf(a.out, "\nGenerated %s\n", s.GeneratedAt.Local().Format("2006-01-02 15:04:05"))
			staleNotice(a.out, v.Stale, v.Err)
			return nil
		},
	}
}
