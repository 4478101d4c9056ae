package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/spf13/cobra"
)

func newCandidatesCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "candidates",
		Aliases: []string{"candidate", "c"},
		Short:   "Browse and update candidates",
	}
	cmd.AddCommand(
		newCandidatesListCmd(get),
		newCandidatesGetCmd(get),
		newCandidatesStatusCmd(get),
		newCandidatesFlagCmd(get),
		newCandidatesBulkStatusCmd(get),
		newCandidatesDeleteCmd(get),
	)
	return cmd
}

func newCandidatesListCmd(get func() *app) *cobra.Command {
	var (
		filter candidate.ListCandidatesRequest
		status string
		page   kernel.PaginationOptions
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if status != "" {
				st, ok := candidate.ParseStatus(status)
				if !ok {
					return candidate.ErrInvalidStatus().WithDetail("status", status)
				}
				filter.Status = st
			}

			v, err := a.queries.Candidates.List(cmd.Context(), filter, page)
			if err != nil {
				return err
			}

			t := newTable(a.out)
			t.row("ID", "NAME", "STATUS", "EMAIL", "LOCATION", "EXP", "SKILLS")
			for _, c := range v.Data.Items {
				t.row(c.ID, c.Name, c.Status, c.Email, c.Location, c.ExperienceYears, c.Skills)
			}
			if err := t.flush(); err != nil {
				return err
			}
			footer(a.out, v.Data.Page, v.FetchedAt, v.Stale, v.Err)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "name or email contains")
	cmd.Flags().StringVar(&status, "status", "", "pipeline status")
	cmd.Flags().StringVar(&filter.Skill, "skill", "", "has skill")
	cmd.Flags().StringVar(&filter.Location, "location", "", "location contains")
	pageFlags(cmd, &page)
	return cmd
}

func newCandidatesGetCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			v, err := a.queries.Candidates.Get(cmd.Context(), kernel.CandidateID(args[0]))
			if err != nil {
				return err
			}
			printCandidate(a, v.Data)
			staleNotice(a.out, v.Stale, v.Err)
			return nil
		},
	}
}

func printCandidate(a *app, c *candidate.Candidate) {
	t := newTable(a.out)
	t.row("ID", c.ID)
	t.row("Name", c.Name)
	t.row("Status", c.Status)
	t.row("Email", c.Email)
	t.row("Phone", c.Phone)
	t.row("Location", c.Location)
	t.row("Experience", fmt.Sprintf("%g years", c.ExperienceYears))
	t.row("Skills", c.Skills)
	t.row("Current CTC", c.CurrentCTC)
	t.row("Expected CTC", c.ExpectedCTC)
	t.row("Notice (days)", c.NoticePeriodDays)
	t.row("Source", c.Source)
	t.row("Remarks", c.Remarks)
	for _, f := range c.Flags {
		t.row("Flag", fmt.Sprintf("%s %s", f.Type, f.Note))
	}
	t.row("Updated", c.UpdatedAt)
	_ = t.flush()
}

func newCandidatesStatusCmd(get func() *app) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a candidate to another pipeline status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			st, ok := candidate.ParseStatus(args[1])
			if !ok {
				return candidate.ErrInvalidStatus().WithDetail("status", args[1])
			}
			c, err := a.queries.Candidates.UpdateStatus(cmd.Context(), kernel.CandidateID(args[0]), st, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s is now %s\n", c.Name, c.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "reason for the change")
	return cmd
}

func newCandidatesFlagCmd(get func() *app) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "flag <id> <flag>",
		Short: "Annotate a candidate (DUPLICATE, RED_FLAG, HOT, NEEDS_REVIEW, DO_NOT_CONTACT)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			c, err := a.queries.Candidates.AddFlag(cmd.Context(), kernel.CandidateID(args[0]), candidate.FlagType(strings.ToUpper(args[1])), note)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s now has %d flag(s)\n", c.Name, len(c.Flags))
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "note attached to the flag")
	return cmd
}

func newCandidatesBulkStatusCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-status <status> <id>...",
		Short: "Move several candidates at once",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			st, ok := candidate.ParseStatus(args[0])
			if !ok {
				return candidate.ErrInvalidStatus().WithDetail("status", args[0])
			}
			ids := make([]kernel.CandidateID, 0, len(args)-1)
			for _, id := range args[1:] {
				ids = append(ids, kernel.CandidateID(id))
			}

			res, err := a.queries.Candidates.BulkUpdateStatus(cmd.Context(), ids, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Updated %d of %d candidates\n", len(res.Successful), res.Total)

			failed := make([]string, 0, len(res.Failed))
			for id := range res.Failed {
				failed = append(failed, string(id))
			}
			sort.Strings(failed)
			for _, id := range failed {
				fmt.Fprintf(a.out, "  %s: %s\n", id, res.Failed[kernel.CandidateID(id)])
			}
			return nil
		},
	}
}

func newCandidatesDeleteCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.queries.Candidates.Delete(cmd.Context(), kernel.CandidateID(args[0])); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Deleted", args[0])
			return nil
		},
	}
}

func pageFlags(cmd *cobra.Command, page *kernel.PaginationOptions) {
	cmd.Flags().IntVar(&page.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&page.PageSize, "page-size", kernel.DefaultPageSize, "items per page")
}
