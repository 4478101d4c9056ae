package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Abraxas-365/talentdesk/pkg/prefstore"
	"github.com/spf13/cobra"
)

var themes = []string{"light", "dark", "system"}

func newThemeCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|system]",
		Short:     "Show or set the dashboard theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: themes,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if len(args) == 0 {
				theme, ok := a.prefs.Get(prefstore.KeyTheme)
				if !ok {
					theme = "system"
				}
				fmt.Fprintln(a.out, theme)
				return nil
			}

			theme := strings.ToLower(args[0])
			if !slices.Contains(themes, theme) {
				return fmt.Errorf("unknown theme %q, use one of %s", args[0], strings.Join(themes, ", "))
			}
			if err := a.prefs.Set(prefstore.KeyTheme, theme); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Theme set to", theme)
			return nil
		},
	}
}
