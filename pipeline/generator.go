// Package pipeline runs annotation files end to end: parse, upgrade legacy
// qualifiers, validate and repair with the rule engine, then hand accepted
// records to the configured sinks (writer, store, metrics).
package pipeline

import (
	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/ontology"
	"github.com/teranos/gaffer/parser"
	"github.com/teranos/gaffer/rules"
)

// Outcome is one record after the rule engine.
type Outcome struct {
	LineNo int
	Line   string
	// Parsed is the record as the parser produced it.
	Parsed *annotation.Association
	// Upgraded reports that an empty GAF 2.1 qualifier was made specific.
	Upgraded bool
	Results  rules.Results
}

// Accepted reports whether the record survives validation.
func (o Outcome) Accepted() bool { return !o.Results.Errored() }

// Annotation is the record after every repair.
func (o Outcome) Annotation() *annotation.Association { return o.Results.Annotation }

// Generator yields one Outcome per parsed record. Every message lands in the
// parser's report.
//
//	gen := pipeline.NewGenerator(sc, engine, onto)
//	for gen.Next() {
//		out := gen.Outcome()
//		...
//	}
//	if err := gen.Err(); err != nil { ... }
type Generator struct {
	scanner *parser.Scanner
	engine  *rules.Engine
	onto    ontology.Lookup

	pending []*annotation.Association
	res     parser.ParseResult
	cur     Outcome

	// OnLine, when set, sees every ParseResult including headers and
	// skipped lines.
	OnLine func(parser.ParseResult)
}

// NewGenerator wraps a scanner. onto may be nil, which disables the
// qualifier upgrade.
func NewGenerator(sc *parser.Scanner, engine *rules.Engine, onto ontology.Lookup) *Generator {
	return &Generator{scanner: sc, engine: engine, onto: onto}
}

// Next advances to the next record, reading lines as needed.
func (g *Generator) Next() bool {
	for len(g.pending) == 0 {
		if !g.scanner.Scan() {
			return false
		}
		g.res = g.scanner.Result()
		if g.OnLine != nil {
			g.OnLine(g.res)
		}
		g.pending = g.res.Associations
	}
	a := g.pending[0]
	g.pending = g.pending[1:]

	upgraded := false
	if g.legacyGAF() {
		a, upgraded = parser.UpgradeEmptyQualifier(a, g.onto)
	}
	results := g.engine.Test(a)
	results.Record(g.scanner.Parser().Report(), g.res.Line)

	g.cur = Outcome{
		LineNo:   g.res.LineNo,
		Line:     g.res.Line,
		Parsed:   a,
		Upgraded: upgraded,
		Results:  results,
	}
	return true
}

// legacyGAF reports whether the current file is GAF without mandatory
// relations, the only case with empty qualifiers to upgrade.
func (g *Generator) legacyGAF() bool {
	p := g.scanner.Parser()
	v := p.Version()
	return p.Format() == parser.FormatGAF && v != nil && !parser.RequiresRelation(v)
}

// Outcome returns the current record.
func (g *Generator) Outcome() Outcome { return g.cur }

// Err returns the scanner's read error or fatal condition.
func (g *Generator) Err() error { return g.scanner.Err() }

// Parser returns the underlying parser.
func (g *Generator) Parser() parser.Parser { return g.scanner.Parser() }
