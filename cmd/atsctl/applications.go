package main

import (
	"fmt"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/application"
	"github.com/spf13/cobra"
)

func newApplicationsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"application", "apps"},
		Short:   "Track applications through the hiring pipeline",
	}
	cmd.AddCommand(
		newApplicationsListCmd(get),
		newApplicationsGetCmd(get),
		newApplicationsCreateCmd(get),
		newApplicationsStatusCmd(get),
	)
	return cmd
}

func newApplicationsListCmd(get func() *app) *cobra.Command {
	var (
		filter      application.ListApplicationsRequest
		status      string
		candidateID string
		clientID    string
		page        kernel.PaginationOptions
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if status != "" {
				st, ok := application.ParseStatus(status)
				if !ok {
					return application.ErrInvalidStatus().WithDetail("status", status)
				}
				filter.Status = st
			}
			filter.CandidateID = kernel.CandidateID(candidateID)
			filter.ClientID = kernel.ClientID(clientID)

			v, err := a.queries.Applications.List(cmd.Context(), filter, page)
			if err != nil {
				return err
			}

			t := newTable(a.out)
			t.row("ID", "JOB", "STATUS", "CANDIDATE", "CLIENT", "UPDATED")
			for _, item := range v.Data.Items {
				t.row(item.ID, item.JobTitle, item.Status, item.CandidateID, item.ClientID, item.UpdatedAt)
			}
			if err := t.flush(); err != nil {
				return err
			}
			footer(a.out, v.Data.Page, v.FetchedAt, v.Stale, v.Err)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "job title contains")
	cmd.Flags().StringVar(&status, "status", "", "application status")
	cmd.Flags().StringVar(&candidateID, "candidate", "", "candidate id")
	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	pageFlags(cmd, &page)
	return cmd
}

func newApplicationsGetCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one application with its audit trail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			v, err := a.queries.Applications.Get(cmd.Context(), kernel.ApplicationID(args[0]))
			if err != nil {
				return err
			}

			item := v.Data
			t := newTable(a.out)
			t.row("ID", item.ID)
			t.row("Job", item.JobTitle)
			t.row("Status", item.Status)
			t.row("Candidate", item.CandidateID)
			t.row("Client", item.ClientID)
			t.row("Notes", item.Notes)
			for _, e := range item.AuditLog {
				t.row(e.At, fmt.Sprintf("%s -> %s %s", e.From, e.To, e.Note))
			}
			if err := t.flush(); err != nil {
				return err
			}
			staleNotice(a.out, v.Stale, v.Err)
			return nil
		},
	}
}

func newApplicationsCreateCmd(get func() *app) *cobra.Command {
	var req application.CreateApplicationRequest
	var candidateID, clientID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a candidate to a client's opening",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			req.CandidateID = kernel.CandidateID(candidateID)
			req.ClientID = kernel.ClientID(clientID)
			item, err := a.queries.Applications.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created application %s (%s)\n", item.ID, item.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&candidateID, "candidate", "", "candidate id")
	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	cmd.Flags().StringVar(&req.JobTitle, "job", "", "job title")
	cmd.Flags().StringVar(&req.Notes, "notes", "", "notes")
	_ = cmd.MarkFlagRequired("candidate")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("job")
	return cmd
}

func newApplicationsStatusCmd(get func() *app) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move an application to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			st, ok := application.ParseStatus(args[1])
			if !ok {
				return application.ErrInvalidStatus().WithDetail("status", args[1])
			}
			item, err := a.queries.Applications.UpdateStatus(cmd.Context(), kernel.ApplicationID(args[0]), st, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Application %s is now %s\n", item.ID, item.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "reason for the change")
	return cmd
}
