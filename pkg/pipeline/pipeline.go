// Package pipeline prepares a diagram for a run: it checks influences and
// parameters, gates on the issues found, and translates the diagram.
package pipeline

import (
	"github.com/dd0wney/cluso-stockflow/pkg/constraints"
	"github.com/dd0wney/cluso-stockflow/pkg/diagram"
	"github.com/dd0wney/cluso-stockflow/pkg/equation"
	"github.com/dd0wney/cluso-stockflow/pkg/issues"
	"github.com/dd0wney/cluso-stockflow/pkg/logging"
	"github.com/dd0wney/cluso-stockflow/pkg/metrics"
	"github.com/dd0wney/cluso-stockflow/pkg/params"
	"github.com/dd0wney/cluso-stockflow/pkg/translate"
	"github.com/google/uuid"
)

// Request asks for a run.
type Request struct {
	Params params.Raw
	// AllowHighStepCount overrides the HighStepCount advisory.
	AllowHighStepCount bool
}

// Run is a model ready for the integrator.
type Run struct {
	ID     uuid.UUID              `json:"id"`
	Model  *translate.EngineModel `json:"model"`
	Params params.Parameters      `json:"parameters"`
}

// Options wires a Pipeline. Zero fields select defaults.
type Options struct {
	Scanner    *equation.Scanner
	Params     *params.Validator
	Translator *translate.Translator
	Logger     logging.Logger
	Metrics    *metrics.Registry
}

// Pipeline runs the pre-run checks. It holds no per-run state.
type Pipeline struct {
	scanner    *equation.Scanner
	params     *params.Validator
	translator *translate.Translator
	logger     logging.Logger
	metrics    *metrics.Registry
	newID      func() uuid.UUID
}

// New builds a pipeline from opts.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		scanner:    opts.Scanner,
		params:     opts.Params,
		translator: opts.Translator,
		logger:     logging.OrNop(opts.Logger).With(logging.Component("pipeline")),
		metrics:    opts.Metrics,
		newID:      uuid.New,
	}
	if p.scanner == nil {
		p.scanner = equation.NewScanner(nil)
	}
	if p.params == nil {
		p.params = params.NewValidator(nil)
	}
	if p.translator == nil {
		p.translator = translate.NewTranslator(opts.Logger)
	}
	return p
}

// Prepare gates a run in phases:
//
//  1. influence check over g;
//  2. parameter validation of req.Params;
//  3. any structural issue or blocking parameter issue returns every issue
//     found, without translating;
//  4. a HighStepCount advisory without req.AllowHighStepCount returns the
//     advisory alone;
//  5. otherwise g is translated and the run returned with the parsed
//     parameters filled into the model.
//
// Exactly one of the Run and the issue list is non-empty when err is nil.
// A corrupted diagram is returned as an error wrapping
// translate.ErrModelCorruption.
func (p *Pipeline) Prepare(g diagram.Reader, req Request) (*Run, issues.List, error) {
	timer := logging.StartTimer(p.logger, "prepare run")
	outcome := metrics.OutcomeReady
	defer func() {
		elapsed := timer.End(logging.String("outcome", outcome))
		if p.metrics != nil {
			p.metrics.RecordPreparation(outcome, elapsed)
		}
	}()

	var found issues.List
	for _, m := range constraints.CheckInfluences(g, p.scanner) {
		found = append(found, m.Issue())
	}
	parsed, paramIssues := p.params.Validate(req.Params)
	found = append(found, paramIssues...)
	p.record(found)

	if found.HasBlocking() {
		outcome = metrics.OutcomeBlocked
		p.logger.Info("run blocked", logging.Count(len(found)))
		return nil, found, nil
	}
	if advisories := found.OfClass(issues.Advisory); len(advisories) > 0 && !req.AllowHighStepCount {
		outcome = metrics.OutcomeAdvisory
		p.logger.Info("run needs confirmation",
			logging.Float64("steps", parsed.Steps()),
			logging.Float64("threshold", p.params.Threshold()))
		return nil, advisories, nil
	}

	model, err := p.translator.Translate(g)
	if err != nil {
		outcome = metrics.OutcomeCorrupt
		p.logger.Error("translation failed", logging.Error(err))
		return nil, nil, err
	}
	model.StartTime = parsed.Start
	model.EndTime = parsed.End
	model.DT = parsed.DT
	model.IntegrationMethod = parsed.Method

	run := &Run{ID: p.newID(), Model: model, Params: parsed}
	if p.metrics != nil {
		p.metrics.RecordSteps(parsed.Steps())
	}
	p.logger.Info("run prepared",
		logging.RunID(run.ID.String()),
		logging.Int("stocks", len(model.Stocks)),
		logging.Int("flows", len(model.Flows)),
		logging.Float64("steps", parsed.Steps()),
		logging.String("method", parsed.Method))
	return run, nil, nil
}

func (p *Pipeline) record(found issues.List) {
	if p.metrics == nil {
		return
	}
	for _, i := range found {
		p.metrics.RecordIssue(i.Kind.String())
	}
}
