package main

import (
	"bufio"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Abraxas-365/talentdesk/dashboard/wizard"
	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/candidate"
	"github.com/Abraxas-365/talentdesk/recruitment/resume"
	"github.com/spf13/cobra"
)

func newIngestCmd(get func() *app) *cobra.Command {
	var (
		overrides wizard.Form
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <resume file>",
		Short: "Upload a resume, review the parsed fields and create the candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			ctx := cmd.Context()

			file, err := readResume(args[0])
			if err != nil {
				return err
			}

			w := wizard.New(a.source, a.queries.Candidates, a.session,
				wizard.WithOnComplete(func(c *candidate.Candidate) {
					fmt.Fprintf(a.out, "Created candidate %s (%s)\n", c.Name, c.ID)
				}),
			)
			defer w.Close()

			// 1. Upload
			if err := w.SelectFile(file); err != nil {
				return err
			}
			fmt.Fprintf(a.err, "Uploading %s...\n", file.Name)
			if err := w.Ingest(ctx); err != nil {
				return err
			}

			// 2. Review
			if err := w.UpdateForm(func(f *wizard.Form) { applyOverrides(cmd, f, overrides) }); err != nil {
				return err
			}
			view := w.View()
			printForm(a, view)

			if !yes && !confirm(cmd, a, "Create this candidate? [Y/n] ") {
				fmt.Fprintln(a.out, "Discarded")
				return nil
			}

			// 3. Save
			_, err = w.Save(ctx)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&overrides.Name, "name", "", "candidate name")
	f.StringVar(&overrides.Email, "email", "", "email")
	f.StringVar(&overrides.Phone, "phone", "", "phone")
	f.StringVar(&overrides.Location, "location", "", "location")
	f.StringVar(&overrides.Skills, "skills", "", "comma separated skills")
	f.StringVar(&overrides.ExperienceYears, "experience", "", "years of experience")
	f.StringVar(&overrides.CurrentCTC, "current-ctc", "", "current compensation")
	f.StringVar(&overrides.ExpectedCTC, "expected-ctc", "", "expected compensation")
	f.StringVar(&overrides.NoticePeriodDays, "notice", "", "notice period in days")
	f.StringVar(&overrides.Source, "source-tag", "", "where the candidate came from")
	f.StringVar(&overrides.Remarks, "remarks", "", "remarks")
	f.BoolVarP(&yes, "yes", "y", false, "save without asking")
	return cmd
}

func readResume(path string) (wizard.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return wizard.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return wizard.File{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}

// applyOverrides copies the flags the operator actually passed
func applyOverrides(cmd *cobra.Command, f *wizard.Form, o wizard.Form) {
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	set("name", &f.Name, o.Name)
	set("email", &f.Email, o.Email)
	set("phone", &f.Phone, o.Phone)
	set("location", &f.Location, o.Location)
	set("skills", &f.Skills, o.Skills)
	set("experience", &f.ExperienceYears, o.ExperienceYears)
	set("current-ctc", &f.CurrentCTC, o.CurrentCTC)
	set("expected-ctc", &f.ExpectedCTC, o.ExpectedCTC)
	set("notice", &f.NoticePeriodDays, o.NoticePeriodDays)
	set("source-tag", &f.Source, o.Source)
	set("remarks", &f.Remarks, o.Remarks)
}

func printForm(a *app, v wizard.View) {
	f := v.Form
	t := newTable(a.out)
	t.row("Resume job", v.JobID)
	t.row("Name", f.Name)
	t.row("Email", f.Email)
	t.row("Phone", f.Phone)
	t.row("Location", f.Location)
	t.row("Skills", f.Skills)
	t.row("Experience", f.ExperienceYears)
	t.row("Current CTC", f.CurrentCTC)
	t.row("Expected CTC", f.ExpectedCTC)
	t.row("Notice (days)", f.NoticePeriodDays)
	t.row("Source", f.Source)
	t.row("Remarks", f.Remarks)
	_ = t.flush()
}

func confirm(cmd *cobra.Command, a *app, prompt string) bool {
	fmt.Fprint(a.err, prompt)
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	}
	return false
}

func newJobsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect resume parsing jobs",
	}

	var (
		status string
		page   kernel.PaginationOptions
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List resume jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			var filter resume.ListJobsRequest
			if status != "" {
				st, ok := resume.ParseJobStatus(status)
				if !ok {
					return resume.ErrInvalidJobStatus().WithDetail("status", status)
				}
				filter.Status = st
			}

			v, err := a.queries.ResumeJobs.List(cmd.Context(), filter, page)
			if err != nil {
				return err
			}
			t := newTable(a.out)
			t.row("ID", "FILE", "STATUS", "ATTEMPTS", "CLIENT", "CREATED")
			for _, j := range v.Data.Items {
				t.row(j.ID, j.FileName, j.Status, fmt.Sprintf("%d/%d", j.AttemptCount, j.MaxAttempts), j.ClientID, j.CreatedAt)
			}
			if err := t.flush(); err != nil {
				return err
			}
			footer(a.out, v.Data.Page, v.FetchedAt, v.Stale, v.Err)
			return nil
		},
	}
	list.Flags().StringVar(&status, "status", "", "pending, processing, completed or failed")
	pageFlags(list, &page)

	show := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one resume job and its parse result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			v, err := a.queries.ResumeJobs.Get(cmd.Context(), kernel.ResumeJobID(args[0]))
			if err != nil {
				return err
			}
			j := v.Data
			t := newTable(a.out)
			t.row("ID", j.ID)
			t.row("File", fmt.Sprintf("%s (%s, %d bytes)", j.FileName, j.ContentType, j.FileSize))
			t.row("Status", j.Status)
			t.row("Attempts", fmt.Sprintf("%d/%d", j.AttemptCount, j.MaxAttempts))
			t.row("Error", j.ErrorMessage)
			if p := j.Parsed; p != nil {
				t.row("Name", p.Name)
				t.row("Email", p.Email)
				t.row("Skills", p.Skills.Join())
			}
			if err := t.flush(); err != nil {
				return err
			}
			staleNotice(a.out, v.Stale, v.Err)
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
