package main

import (
	"fmt"

	"github.com/Abraxas-365/talentdesk/pkg/kernel"
	"github.com/Abraxas-365/talentdesk/recruitment/client"
	"github.com/spf13/cobra"
)

func newClientsCmd(get func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clients",
		Aliases: []string{"client"},
		Short:   "Manage hiring companies",
	}
	cmd.AddCommand(
		newClientsListCmd(get),
		newClientsGetCmd(get),
		newClientsCreateCmd(get),
		newClientsInviteCmd(get),
	)
	return cmd
}

func newClientsListCmd(get func() *app) *cobra.Command {
	var (
		filter     client.ListClientsRequest
		invitation string
		page       kernel.PaginationOptions
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if invitation != "" {
				st, ok := client.ParseInvitationStatus(invitation)
				if !ok {
					return client.ErrInvalidInvitationStatus().WithDetail("invitationStatus", invitation)
				}
				filter.InvitationStatus = st
			}

			v, err := a.queries.Clients.List(cmd.Context(), filter, page)
			if err != nil {
				return err
			}

			t := newTable(a.out)
			t.row("ID", "NAME", "INDUSTRY", "CONTACT", "INVITATION")
			for _, c := range v.Data.Items {
				t.row(c.ID, c.Name, c.Industry, c.ContactEmail, c.InvitationStatus)
			}
			if err := t.flush(); err != nil {
				return err
			}
			footer(a.out, v.Data.Page, v.FetchedAt, v.Stale, v.Err)
			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Search, "search", "", "name contains")
	cmd.Flags().StringVar(&filter.Industry, "industry", "", "industry")
	cmd.Flags().StringVar(&invitation, "invitation", "", "not_invited, invited or registered")
	pageFlags(cmd, &page)
	return cmd
}

func newClientsGetCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			v, err := a.queries.Clients.Get(cmd.Context(), kernel.ClientID(args[0]))
			if err != nil {
				return err
			}

			c := v.Data
			t := newTable(a.out)
			t.row("ID", c.ID)
			t.row("Name", c.Name)
			t.row("Industry", c.Industry)
			t.row("Website", c.Website)
			t.row("Contact", c.ContactName)
			t.row("Email", c.ContactEmail)
			t.row("Phone", c.ContactPhone)
			t.row("Invitation", c.InvitationStatus)
			if c.InvitationSentAt != nil {
				t.row("Invited at", *c.InvitationSentAt)
			}
			if c.RegisteredAt != nil {
				t.row("Registered at", *c.RegisteredAt)
			}
			if err := t.flush(); err != nil {
				return err
			}
			staleNotice(a.out, v.Stale, v.Err)
			return nil
		},
	}
}

func newClientsCreateCmd(get func() *app) *cobra.Command {
	var req client.CreateClientRequest
	var email string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new client",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			req.ContactEmail = kernel.Email(email)
			c, err := a.queries.Clients.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created client %s (%s)\n", c.Name, c.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "company name")
	cmd.Flags().StringVar(&req.Industry, "industry", "", "industry")
	cmd.Flags().StringVar(&req.Website, "website", "", "website")
	cmd.Flags().StringVar(&req.ContactName, "contact", "", "contact person")
	cmd.Flags().StringVar(&email, "email", "", "contact email, needed for invitations")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newClientsInviteCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "invite <id>",
		Short: "Send a portal invitation to a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			resp, err := a.queries.Clients.Invite(cmd.Context(), kernel.ClientID(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Invited %s\n", resp.Client.Name)
			if resp.RegistrationURL != "" {
				fmt.Fprintf(a.out, "Registration link: %s\n", resp.RegistrationURL)
			}
			return nil
		},
	}
}
