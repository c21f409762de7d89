// dispatchrag serves next-utterance predictions for emergency call
// transcripts, grounded on a corpus of historical calls.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matiasleandrokruk/dispatchrag/internal/infra/config"
	"github.com/matiasleandrokruk/dispatchrag/internal/infra/logging"
	"github.com/matiasleandrokruk/dispatchrag/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// usageError marks failures caused by bad command-line input (exit 2).
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// run executes the CLI and returns the process exit code.
func run(args []string, out io.Writer) int {
	root := newRootCmd(out)
	root.SetArgs(args)

	err := root.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintln(root.ErrOrStderr(), "Error:", err) //nolint:errcheck
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "dispatchrag",
		Short: "Emergency call transcript prediction service",
		Long: `dispatchrag predicts what an emergency caller is most likely saying next.

It indexes a CSV corpus of historical call transcripts, retrieves the
nearest calls for a partial transcript, asks an ordered chain of language
model providers for a continuation, scores it and classifies severity.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Println(version.String())
			return nil
		},
	}
	root.SetOut(out)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.AddCommand(
		newServeCmd(),
		newPredictCmd(),
		newMigrateCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.String())
		},
	}
}

// loadRuntime reads .env, the optional YAML file and the environment, and
// builds the logger they describe.
func loadRuntime() (config.Config, *zap.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return config.Config{}, nil, usageError{err}
	}
	return cfg, logger, nil
}
