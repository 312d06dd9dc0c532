package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"finai/internal/config"
	"finai/internal/log"
)

// Execute runs finai-cli against the process streams.
func Execute() {
	LoadEnvFile()
	cmd := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the finai-cli command tree. Scorecards go to out as
// JSON, logs go to errOut.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "finai-cli",
		Short:        "Run the finai scoring engines and assistant from the command line",
		SilenceUsage: true,
	}
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	newLogger := func() *log.Logger {
		level := slog.LevelWarn
		if debug {
			level = slog.LevelDebug
		}
		return log.New(log.Config{
			Component: log.ComponentCLI,
			Handler:   slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}),
		})
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output to stderr")

	cmd.AddCommand(
		budgetCmd(),
		loanCmd(),
		expensesCmd(),
		savingsCmd(),
		riskCmd(),
		chatCmd(config.Load, newLogger),
	)
	return cmd
}

// addFileFlag registers the required --file flag shared by the engine
// commands.
func addFileFlag(c *cobra.Command, file *string) {
	c.Flags().StringVarP(file, "file", "f", "", "YAML or JSON input file, - for stdin (required)")
	_ = c.MarkFlagRequired("file")
}
