// Package rules implements the GO annotation rules (GORULEs) as an ordered
// catalog of checks and repairs, and the engine that runs them over a record.
//
// A rule is either a Check, which only judges a record, or a Repair, which
// returns a possibly modified copy together with a RepairState. Repairs never
// modify their input.
package rules

import (
	"fmt"
	"strings"

	"github.com/teranos/gaffer/annotation"
)

// ID is a rule identifier such as GORULE:0000013.
type ID string

// NormalizeID accepts "GORULE:0000013", "0000013" or "13".
func NormalizeID(s string) (ID, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToUpper(s), "GORULE:")
	if s == "" || len(s) > 7 {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return ID("GORULE:" + strings.Repeat("0", 7-len(s)) + s), true
}

// Short returns the numeric part without leading zeros.
func (id ID) Short() string {
	n := strings.TrimLeft(strings.TrimPrefix(string(id), "GORULE:"), "0")
	if n == "" {
		return "0"
	}
	return n
}

// Verdict is the outcome class of one rule on one record.
type Verdict int

const (
	Pass Verdict = iota
	Warning
	Error
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "PASS"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// FailMode decides the verdict of a failed rule.
type FailMode int

const (
	// inherit is only valid in an Outcome and means the rule's own mode.
	inherit FailMode = iota
	Soft
	Hard
)

func (m FailMode) String() string {
	switch m {
	case Soft:
		return "soft"
	case Hard:
		return "hard"
	}
	return "inherit"
}

// RepairState is what a Repair reports about the record it returns.
type RepairState int

const (
	Okay RepairState = iota
	Repaired
	Failed
)

// Outcome is what a Check returns.
type Outcome struct {
	Passed  bool
	Message string
	// Mode overrides the rule's fail mode for this record when set.
	Mode FailMode
}

func pass() Outcome { return Outcome{Passed: true} }

func fail(format string, args ...interface{}) Outcome {
	return Outcome{Message: fmt.Sprintf(format, args...)}
}

func (o Outcome) withMode(m FailMode) Outcome {
	o.Mode = m
	return o
}

// CheckFunc judges a record.
type CheckFunc func(c *Context, a *annotation.Association) Outcome

// RepairFunc returns the record to continue with, its state and a message
// for Repaired or Failed.
type RepairFunc func(c *Context, a *annotation.Association) (*annotation.Association, RepairState, string)

// Kind tells Check and Repair rules apart.
type Kind int

const (
	KindCheck Kind = iota
	KindRepair
)

func (k Kind) String() string {
	if k == KindRepair {
		return "repair"
	}
	return "check"
}

// Rule is one catalog entry. Exactly one of check and repair is set,
// according to Kind.
type Rule struct {
	ID       ID
	Title    string
	FailMode FailMode
	Kind     Kind
	// Contexts restricts the rule to runs where one of these contexts is
	// active. Empty means always.
	Contexts []string

	check  CheckFunc
	repair RepairFunc
}

// Check builds a verdict-only rule.
func Check(id ID, title string, mode FailMode, fn CheckFunc, contexts ...string) Rule {
	return Rule{ID: id, Title: title, FailMode: mode, Kind: KindCheck, Contexts: contexts, check: fn}
}

// Repair builds a repairing rule.
func Repair(id ID, title string, mode FailMode, fn RepairFunc, contexts ...string) Rule {
	return Rule{ID: id, Title: title, FailMode: mode, Kind: KindRepair, Contexts: contexts, repair: fn}
}

// RuleResult is one rule's verdict on one record. Annotation is the record
// handed to the next rule.
type RuleResult struct {
	Rule       ID
	Verdict    Verdict
	Message    string
	Annotation *annotation.Association
}

// Run applies the rule to a. It never panics on rule bugs: a panicking rule
// is reported as an ERROR and the record passes through unchanged.
func (r Rule) Run(c *Context, a *annotation.Association) (res RuleResult) {
	res = RuleResult{Rule: r.ID, Annotation: a}
	defer func() {
		if p := recover(); p != nil {
			res = RuleResult{Rule: r.ID, Verdict: Error, Message: fmt.Sprintf("rule panicked: %v", p), Annotation: a}
		}
	}()

	switch r.Kind {
	case KindRepair:
		out, state, msg := r.repair(c, a)
		if out == nil {
			out = a
		}
		res.Annotation = out
		switch state {
		case Repaired:
			res.Verdict = Warning
			res.Message = msg
		case Failed:
			res.Verdict = r.verdictFor(inherit)
			res.Message = msg
		}
	default:
		o := r.check(c, a)
		if !o.Passed {
			res.Verdict = r.verdictFor(o.Mode)
			res.Message = o.Message
		}
	}
	return res
}

func (r Rule) verdictFor(override FailMode) Verdict {
	mode := r.FailMode
	if override != inherit {
		mode = override
	}
	if mode == Hard {
		return Error
	}
	return Warning
}
