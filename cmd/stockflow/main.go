// Command stockflow checks, prepares and stores stock-and-flow projects
// outside the browser editor.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-stockflow/pkg/config"
	"github.com/dd0wney/cluso-stockflow/pkg/logging"
	"github.com/dd0wney/cluso-stockflow/pkg/metrics"
	"github.com/dd0wney/cluso-stockflow/pkg/projectstore"
)

// Exit codes
const (
	exitOK        = 0
	exitFailure   = 1
	exitIssues    = 2 // blocking issues, or an advisory without override
	exitCorrupted = 3 // the diagram cannot be translated
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// app holds what the commands share once the configuration is loaded.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	metricsOut string
	fromStore  bool

	cfg     *config.Config
	logger  logging.Logger
	metrics *metrics.Registry
	started time.Time
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, started: time.Now()}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if werr := a.writeMetrics(); werr != nil && err == nil {
		err = werr
	}
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil && ee.code != exitIssues {
			fmt.Fprintln(stderr, errorStyle.Render("error: "+ee.err.Error()))
		}
		return ee.code
	}
	fmt.Fprintln(stderr, errorStyle.Render("error: "+err.Error()))
	return exitFailure
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "stockflow",
		Short: "Validate and translate stock-and-flow diagrams",
		Long: `stockflow reads projects saved by the diagram editor, checks them,
translates them into the integrator's model and keeps them in a project store.

Projects are read from files unless --from-store is given, in which case the
argument names a project in the configured store.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "configuration file (YAML)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	flags.StringVar(&a.metricsOut, "metrics-out", "", "write Prometheus metrics to this file on exit")
	flags.BoolVar(&a.fromStore, "from-store", false, "read projects from the configured store")

	root.AddCommand(
		a.checkCommand(),
		a.prepareCommand(),
		a.tableCommand(),
		a.editCommand(),
		a.storeCommand(),
	)
	return root
}

// setup loads configuration and builds the logger and metrics registry.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.logger = logging.NewJSONLogger(a.stderr, cfg.Level()).With(logging.String("command", cmd.Name()))
	a.metrics = metrics.NewRegistry()
	a.metrics.UpdateSystemMetrics(a.started)
	return nil
}

func (a *app) openStore(ctx context.Context) (projectstore.Store, error) {
	return projectstore.Open(ctx, a.cfg.Store, projectstore.Options{
		Logger:  a.logger,
		Metrics: a.metrics,
	})
}

// writeMetrics dumps the registry in the text exposition format.
func (a *app) writeMetrics() error {
	if a.metricsOut == "" || a.metrics == nil {
		return nil
	}
	families, err := a.metrics.GetPrometheusRegistry().Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	f, err := os.Create(a.metricsOut)
	if err != nil {
		return fmt.Errorf("failed to create metrics file: %w", err)
	}
	defer f.Close()

	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
