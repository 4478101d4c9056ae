package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Abraxas-365/talentdesk/internal/config"
	"github.com/Abraxas-365/talentdesk/pkg/apiclient"
	"github.com/Abraxas-365/talentdesk/pkg/errx"
	"github.com/Abraxas-365/talentdesk/pkg/logx"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	source     string
	logLevel   string
}

// cli holds the app built by the root command for the subcommands
type cli struct {
	app *app
}

func (c *cli) get() *app { return c.app }

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	c := &cli{}
	err := newRootCmd(c).ExecuteContext(ctx)
	c.close()
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describe(err))
		os.Exit(1)
	}
}

func newRootCmd(c *cli) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "atsctl",
		Short:         "TalentDesk recruitment dashboard from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logx.SetLevel(logx.ParseLevel(flags.logLevel))

			cfg, err := config.LoadCLI(flags.configPath)
			if err != nil {
				return err
			}
			if flags.source != "" {
				cfg.DataSource = strings.ToLower(strings.TrimSpace(flags.source))
			}

			c.app, err = newApp(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultCLIPath(), "path to atsctl.yaml")
	root.PersistentFlags().StringVar(&flags.source, "source", "", "data source: remote or fixture (overrides config)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "debug, info, warn or error")

	root.AddCommand(
		newLoginCmd(c.get),
		newLogoutCmd(c.get),
		newMeCmd(c.get),
		newCandidatesCmd(c.get),
		newApplicationsCmd(c.get),
		newClientsCmd(c.get),
		newStatsCmd(c.get),
		newIngestCmd(c.get),
		newJobsCmd(c.get),
		newWatchCmd(c.get),
		newThemeCmd(c.get),
	)
	return root
}

// describe renders errors the way the dashboard shows them
func describe(err error) string {
	if apiclient.Body(err) != "" {
		return apiclient.Message(err)
	}
	if e, ok := errx.As(err); ok && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
