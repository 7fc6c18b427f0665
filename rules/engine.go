package rules

import (
	"go.uber.org/zap"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/logger"
	"github.com/teranos/gaffer/report"
)

// Results is the outcome of one engine run.
type Results struct {
	All map[ID]RuleResult
	// Ordered lists the results in execution order.
	Ordered []RuleResult
	// Annotation is the record after every repair.
	Annotation *annotation.Association
}

// Errored reports whether any rule returned ERROR; such records are dropped
// from the accepted output.
func (r Results) Errored() bool {
	for _, res := range r.Ordered {
		if res.Verdict == Error {
			return true
		}
	}
	return false
}

// Failures returns the non-PASS results in execution order.
func (r Results) Failures() []RuleResult {
	var out []RuleResult
	for _, res := range r.Ordered {
		if res.Verdict != Pass {
			out = append(out, res)
		}
	}
	return out
}

// Record writes every non-PASS result to rep.
func (r Results) Record(rep *report.Report, line string) {
	if r.Annotation == nil {
		return
	}
	taxon := r.Annotation.Subject.Taxon.String()
	obj := r.Annotation.Object.ID.String()
	for _, res := range r.Failures() {
		level := report.Warning
		if res.Verdict == Error {
			level = report.Error
		}
		rep.RuleMessage(level, string(res.Rule), line, obj, taxon, res.Message)
	}
}

// Engine runs the catalog over records. It owns the closure cache, so one
// engine should serve one configuration (usually one file).
type Engine struct {
	rules  []Rule
	ctx    *Context
	logger *zap.SugaredLogger
}

// NewEngine builds an engine over the full catalog.
func NewEngine(cfg Config, log *zap.SugaredLogger) *Engine {
	return NewEngineWithRules(cfg, Catalog(), log)
}

// NewEngineWithRules builds an engine over a custom rule list. The taxon
// rule, when present, is moved to the end.
func NewEngineWithRules(cfg Config, catalog []Rule, log *zap.SugaredLogger) *Engine {
	ordered := make([]Rule, 0, len(catalog))
	var last []Rule
	for _, r := range catalog {
		if r.ID == taxonRule {
			last = append(last, r)
			continue
		}
		ordered = append(ordered, r)
	}
	ordered = append(ordered, last...)

	e := &Engine{
		rules:  ordered,
		ctx:    newContext(cfg),
		logger: logger.OrNop(log).Named("rules"),
	}
	e.logger.Debugw("Rule engine ready",
		logger.FieldCount, len(ordered),
		"contexts", cfg.Contexts,
		"paint", cfg.Paint,
	)
	return e
}

// Rules returns the rules in execution order.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Context returns the engine's rule context.
func (e *Engine) Context() *Context { return e.ctx }

// Test runs every rule over a. Each rule sees the previous rule's output;
// disabled rules and rules outside the active contexts pass without being
// called. a itself is never modified.
func (e *Engine) Test(a *annotation.Association) Results {
	res := Results{
		All:     make(map[ID]RuleResult, len(e.rules)),
		Ordered: make([]RuleResult, 0, len(e.rules)),
	}
	cur := a
	for _, r := range e.rules {
		var rr RuleResult
		if !e.ctx.enabled(r.ID) || !e.ctx.active(r) {
			rr = RuleResult{Rule: r.ID, Verdict: Pass, Annotation: cur}
		} else {
			rr = r.Run(e.ctx, cur)
		}
		if rr.Verdict != Pass {
			e.logger.Debugw("Rule failed",
				logger.FieldRule, r.ID,
				logger.FieldVerdict, rr.Verdict.String(),
				logger.FieldSubject, cur.Subject.ID.String(),
				logger.FieldTerm, cur.Object.ID.String(),
			)
		}
		res.All[r.ID] = rr
		res.Ordered = append(res.Ordered, rr)
		cur = rr.Annotation
	}
	res.Annotation = cur
	return res
}
