package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iota-uz/bizdesk/pkg/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tablectl",
		Short:         "Drive a listing table against a running server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newReplayCmd())
	return cmd
}

func newReplayCmd() *cobra.Command {
	var (
		baseURL  string
		subject  string
		logLevel string
	)
	cmd := &cobra.Command{
		Use:   "replay <scenario.yaml|scenario.toml>",
		Short: "Replay a scenario of table intents and print each resulting URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := LoadScenario(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(baseURL) != "" {
				sc.BaseURL = baseURL
			}
			if strings.TrimSpace(subject) != "" {
				sc.Subject = subject
			}
			if sc.BaseURL == "" {
				return fmt.Errorf("base url is required (scenario base_url or --base-url)")
			}
			logger := logging.ConsoleLogger(logging.ParseLevel(logLevel))
			logger.SetOutput(cmd.ErrOrStderr())
			runner := &Runner{
				Scenario: sc,
				Out:      cmd.OutOrStdout(),
				Logger:   logrus.NewEntry(logger),
			}
			_, err = runner.Run(cmd.Context())
			return err
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "server base URL, overrides the scenario")
	cmd.Flags().StringVar(&subject, "subject", "", "user id sent in the subject header, overrides the scenario")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
