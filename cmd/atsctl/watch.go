package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/talentdesk/dashboard/live"
	"github.com/Abraxas-365/talentdesk/recruitment/events"
	"github.com/spf13/cobra"
)

func newWatchCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow live updates until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if !a.session.LoggedIn(cmd.Context()) {
				_, err := a.session.Me(cmd.Context())
				return err
			}

			ctx, stop := context.WithCancel(cmd.Context())
			defer stop()

			ch := live.New(a.source, a.queries,
				live.WithRetryInterval(a.cfg.Reconnect.Interval),
				live.WithMaxAttempts(a.cfg.Reconnect.MaxAttempts),
				live.WithOnEvent(func(ev events.Event) {
					printEvent(a, ev)
				}),
				live.WithOnStatus(func(s live.Status) {
					fmt.Fprintf(a.err, "[%s] live updates %s\n", time.Now().Format("15:04:05"), s)
					if s == live.StatusOffline {
						stop()
					}
				}),
			)

			err := ch.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func printEvent(a *app, ev events.Event) {
	at := ev.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	line := fmt.Sprintf("%s  %-20s", at.Local().Format("15:04:05"), ev.Type)
	if len(ev.Payload) > 0 {
		line += "  " + string(ev.Payload)
	}
	if resources := live.Resources(ev.Type); len(resources) > 0 {
		line += "  (refresh " + strings.Join(resources, ", ") + ")"
	}
	fmt.Fprintln(a.out, line)
}
