package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(get func() *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if password == "" {
				fmt.Fprint(a.err, "Password: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			u, err := a.session.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s (%s)\n", u.Username, u.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password, read from stdin when omitted")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func newMeCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			u, err := a.session.Me(cmd.Context())
			if err != nil {
				return err
			}

			w := newTable(a.out)
			w.row("Username", u.Username)
			w.row("Email", u.Email)
			w.row("Role", u.Role)
			if id, ok := u.IngestClientID(); ok {
				w.row("Client", id)
			}
			return w.flush()
		},
	}
}
