package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-stockflow/pkg/constraints"
	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
	"github.com/dd0wney/cluso-stockflow/pkg/pipeline"
	"github.com/dd0wney/cluso-stockflow/pkg/project"
	"github.com/dd0wney/cluso-stockflow/pkg/session"
	"github.com/dd0wney/cluso-stockflow/pkg/translate"
)

// loadDocument reads a project from a file, "-" for stdin, or the store.
func (a *app) loadDocument(ctx context.Context, arg string) (*project.Document, error) {
	if a.fromStore {
		store, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Get(ctx, arg)
	}

	var data []byte
	var err error
	if arg == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}
	return project.Decode(data)
}

// saveDocument writes a project back where loadDocument found it. Files keep
// their encoding.
func (a *app) saveDocument(ctx context.Context, arg string, doc *project.Document) error {
	if a.fromStore {
		store, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Put(ctx, arg, doc)
	}
	if arg == "-" {
		data, err := project.Encode(doc, project.Plain)
		if err != nil {
			return err
		}
		_, err = a.stdout.Write(data)
		return err
	}

	enc := project.Plain
	if old, err := os.ReadFile(arg); err == nil {
		enc = project.DetectEncoding(old)
	}
	data, err := project.Encode(doc, enc)
	if err != nil {
		return err
	}
	return os.WriteFile(arg, data, 0644)
}

// openSession loads a project into a session and reconciles ghosts left
// orphaned in the saved file.
func (a *app) openSession(ctx context.Context, arg string) (*session.Session, *project.Document, error) {
	doc, err := a.loadDocument(ctx, arg)
	if err != nil {
		return nil, nil, err
	}
	g, err := doc.Graph()
	if err != nil {
		return nil, nil, err
	}

	p := pipeline.New(pipeline.Options{
		Scanner: a.cfg.Scanner(),
		Params:  a.cfg.ParamsValidator(),
		Logger:  a.logger,
		Metrics: a.metrics,
	})
	s := session.New(session.Options{Graph: g, Pipeline: p, Logger: a.logger, Metrics: a.metrics})
	report, err := s.Apply("open", func(*diagram.Tx) error { return nil })
	if err != nil {
		return nil, nil, err
	}
	if !report.Empty() {
		fmt.Fprintln(a.stderr, warnStyle.Render(fmt.Sprintf(
			"reconcile removed %d node(s) and %d link(s) left by orphaned ghosts", len(report.RemovedNodes), len(report.RemovedLinks))))
	}
	return s, doc, nil
}

func (a *app) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <project>",
		Short: "Report structural problems in a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			g, err := doc.Graph()
			if err != nil {
				return err
			}

			result, err := constraints.NewDiagramValidator(a.cfg.Scanner()).Validate(g)
			if err != nil {
				return err
			}
			renderViolations(a.stdout, result)
			if result.HasErrors() {
				return withCode(exitIssues, errors.New("project has errors"))
			}
			return nil
		},
	}
}

func (a *app) prepareCommand() *cobra.Command {
	var (
		allowHigh bool
		out       string
		start     string
		end       string
		dt        string
		method    string
	)
	cmd := &cobra.Command{
		Use:   "prepare <project>",
		Short: "Validate a project and write the engine model",
		Long: `prepare runs the pre-run checks (influences and simulation parameters)
and, when they pass, translates the diagram into the integrator's model.

Parameters come from the project, then the configured defaults when the
project has none, then the flags below.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, doc, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			raw := a.cfg.Run.Defaults
			if doc.SimulationParameters != nil {
				raw = doc.SimulationParameters.Raw()
			}
			flags := cmd.Flags()
			if flags.Changed("start") {
				raw.Start = start
			}
			if flags.Changed("end") {
				raw.End = end
			}
			if flags.Changed("dt") {
				raw.DT = dt
			}
			if flags.Changed("method") {
				raw.Method = method
			}

			run, found, err := s.Prepare(pipeline.Request{Params: raw, AllowHighStepCount: allowHigh})
			if err != nil {
				if errors.Is(err, translate.ErrModelCorruption) {
					return withCode(exitCorrupted, err)
				}
				return err
			}
			if len(found) > 0 {
				renderIssues(a.stdout, found)
				return withCode(exitIssues, errors.New("run not prepared"))
			}

			data, err := json.MarshalIndent(run, "", "  ")
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = fmt.Fprintln(a.stdout, string(data))
				return err
			}
			if err := os.WriteFile(out, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write model: %w", err)
			}
			fmt.Fprintln(a.stderr, successStyle.Render(fmt.Sprintf("run %s written to %s (%.0f steps)", run.ID, out, run.Params.Steps())))
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&allowHigh, "allow-high-step-count", false, "confirm runs at or above the step threshold")
	f.StringVarP(&out, "output", "o", "", "write the run to this file instead of stdout")
	f.StringVar(&start, "start", "", "start time")
	f.StringVar(&end, "end", "", "end time")
	f.StringVar(&dt, "dt", "", "time step")
	f.StringVar(&method, "method", "", "integration method: euler|rk4")
	return cmd
}

func (a *app) tableCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "table <project>",
		Short: "Show the equation table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(s.Table())
			}
			renderTable(a.stdout, s.Table())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	return cmd
}

func (a *app) editCommand() *cobra.Command {
	var (
		sets     []string
		uniflows []string
		biflows  []string
	)
	cmd := &cobra.Command{
		Use:   "edit <project>",
		Short: "Write equations and flow directions through the equation table",
		Example: `  stockflow edit model.luna --set 'births=rate * population' --uniflow births
  stockflow --from-store edit population --biflow migration`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sets)+len(uniflows)+len(biflows) == 0 {
				return errors.New("nothing to edit: use --set, --uniflow or --biflow")
			}
			s, doc, err := a.openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			for _, kv := range sets {
				name, eq, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set %q: want name=equation", kv)
				}
				if err := s.SetEquation(strings.TrimSpace(name), strings.TrimSpace(eq)); err != nil {
					return err
				}
			}
			for _, name := range uniflows {
				if err := s.SetFlowDirection(name, false); err != nil {
					return err
				}
			}
			for _, name := range biflows {
				if err := s.SetFlowDirection(name, true); err != nil {
					return err
				}
			}

			updated := project.FromGraph(s.Graph(), doc.SimulationParameters)
			if err := a.saveDocument(cmd.Context(), args[0], updated); err != nil {
				return err
			}
			renderTable(a.stdout, s.Table())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringArrayVar(&sets, "set", nil, "set an equation: name=equation (repeatable)")
	f.StringArrayVar(&uniflows, "uniflow", nil, "restrict a flow to one direction (repeatable)")
	f.StringArrayVar(&biflows, "biflow", nil, "allow a flow in both directions (repeatable)")
	return cmd
}
