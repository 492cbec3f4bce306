package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iota-uz/bizdesk/pkg/commands"
)

func main() {
	root := &cobra.Command{
		Use:           "command",
		Short:         "Database utilities for bizdesk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(commands.NewUtilityCommands()...)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
