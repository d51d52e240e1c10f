package main

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

var manCmd = &cobra.Command{
	Use:                   "man",
	Short:                 "Generates manpages",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Hidden:                true,
	Args:                  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return err
		}

		manPage = manPage.WithSection("Configuration", "readaloud reads readaloud.yml from the user configuration directory, "+
			"$XDG_CONFIG_HOME/readaloud or $READALOUD_CONFIG_HOME. Every key can also be set "+
			"through a READALOUD_ prefixed environment variable.")
		manPage = manPage.WithSection("Copyright", "(C) 2025 readaloud contributors.\n"+
			"Released under MIT license.")
		fmt.Println(manPage.Build(roff.NewDocument()))
		return nil
	},
}
