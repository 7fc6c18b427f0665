// Package parser turns GAF and GPAD lines into annotation records.
//
// Parsing is line oriented. Each call to ParseLine returns a ParseResult and
// records every problem in the run's report.Report; malformed data never
// produces a Go error. The one exception is a file without a version header
// when the format is being auto-detected, which yields a fatal ParseResult
// carrying errors.ErrNoVersion.
package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/eco"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
	"github.com/teranos/gaffer/report"
)

// ParseResult is the outcome of one line.
type ParseResult struct {
	Line   string
	LineNo int
	// Associations holds one record per extension disjunct (one when the
	// line has no extensions). Empty when the line was skipped.
	Associations []*annotation.Association
	Skipped      bool
	Header       bool
	// Problems are the errors and warnings found on this line, in the order
	// they were recorded in the report.
	Problems []*ParseError
	// Fatal is set only for whole-file conditions; the stream must stop.
	Fatal error
}

// Parser parses one file's lines in order.
type Parser interface {
	ParseLine(line string) ParseResult
	Format() Format
	// Version is the locked version, or nil while awaiting a header.
	Version() *semver.Version
	Report() *report.Report
}

// New returns a parser for a known format.
func New(f Format, cfg Config, rep *report.Report, log *zap.SugaredLogger) (Parser, error) {
	switch f {
	case FormatGAF:
		return NewGAF(cfg, rep, log)
	case FormatGPAD:
		return NewGPAD(cfg, rep, log)
	}
	return nil, errors.Wrapf(errors.ErrUnknownFormat, "%q", f)
}

type parseState int

const (
	awaitingHeader parseState = iota
	versionLocked
)

// base carries what GAF and GPAD parsing share: the version state machine,
// the report and per-line problem collection.
type base struct {
	format  Format
	cfg     Config
	norm    normalized
	eco     *eco.Map
	report  *report.Report
	logger  *zap.SugaredLogger
	state   parseState
	version *semver.Version
	lineNo  int
}

func newBase(f Format, cfg Config, rep *report.Report, log *zap.SugaredLogger) (base, error) {
	if rep == nil {
		rep = report.New()
	}
	b := base{
		format: f,
		cfg:    cfg,
		norm:   normalize(cfg),
		eco:    cfg.ECO,
		report: rep,
		logger: logger.OrNop(log).Named(string(f) + "-parser"),
		state:  awaitingHeader,
	}
	if b.eco == nil {
		b.eco = eco.Default()
	}
	if cfg.Version != "" {
		v, err := semver.NewVersion(cfg.Version)
		if err != nil {
			return b, errors.Wrapf(errors.ErrInvalidConfig, "version %q: %v", cfg.Version, err)
		}
		if !Supported(f, v) {
			return b, errors.Wrapf(errors.ErrInvalidConfig, "%s version %s is not supported", f, cfg.Version)
		}
		b.lock(v)
	}
	return b, nil
}

func (b *base) Format() Format { return b.format }

func (b *base) Version() *semver.Version { return b.version }

func (b *base) Report() *report.Report { return b.report }

func (b *base) lock(v *semver.Version) {
	b.version = v
	b.state = versionLocked
	b.logger.Debugw("Version locked",
		logger.FieldFormat, b.format,
		logger.FieldVersion, v.Original(),
	)
}

// header handles a "!" line. The first version declaration of this
// family locks the version; later ones are ignored.
func (b *base) header(line string) ParseResult {
	b.report.AddHeader(line)
	res := ParseResult{Line: line, LineNo: b.lineNo, Header: true}
	if b.state != awaitingHeader {
		return res
	}
	f, v, ok := ParseVersionHeader(line)
	if !ok || f != b.format {
		return res
	}
	if !Supported(f, v) {
		pe := newWarning(ErrorKindContext, report.TypeNoVersion,
			fmt.Sprintf("%s version %s is not supported, assuming %s", f, v.Original(), DefaultVersion(f).Original())).
			WithValue(v.Original())
		b.record(&res, pe, "")
		b.lock(DefaultVersion(f))
		return res
	}
	b.lock(v)
	return res
}

// beginData is called for each data line. Without a declared version the
// family default is assumed, with a single warning.
func (b *base) beginData(res *ParseResult) {
	b.report.AddLine()
	if b.state == versionLocked {
		return
	}
	v := DefaultVersion(b.format)
	pe := newWarning(ErrorKindContext, report.TypeNoVersion,
		fmt.Sprintf("no %s version header before data, assuming %s", b.format, v.Original())).
		WithSuggestion(VersionHeader(b.format, v))
	b.record(res, pe, "")
	b.logger.Warnw("No version header, using default",
		logger.FieldFormat, b.format,
		logger.FieldVersion, v.Original(),
		logger.FieldLineNo, b.lineNo,
	)
	b.lock(v)
}

// record adds a problem to the line result and the report.
func (b *base) record(res *ParseResult, pe *ParseError, obj string) {
	if pe == nil {
		return
	}
	if obj == "" {
		obj = pe.Value
	}
	res.Problems = append(res.Problems, pe)
	b.report.Message(pe.Level(), pe.Type, res.Line, obj, pe.Error())
}

func (b *base) recordAll(res *ParseResult, problems []*ParseError, obj string) {
	for _, pe := range problems {
		b.record(res, pe, obj)
	}
}

// hasError reports whether any collected problem is an error.
func hasError(problems []*ParseError) bool {
	for _, pe := range problems {
		if pe.Severity == SeverityError {
			return true
		}
	}
	return false
}

// skip marks the result skipped and counts it.
func (b *base) skip(res ParseResult) ParseResult {
	res.Skipped = true
	res.Associations = nil
	b.report.AddSkipped()
	b.logger.Debugw("Line skipped", logger.FieldLineNo, res.LineNo, "problems", len(res.Problems))
	return res
}

// prepare strips the line terminator and classifies the line. done is true
// when the returned result is final (blank or header line).
func (b *base) prepare(raw string) (res ParseResult, done bool) {
	b.lineNo++
	line := strings.TrimRight(raw, "\r\n")
	res = ParseResult{Line: line, LineNo: b.lineNo}
	if strings.TrimSpace(line) == "" {
		res.Skipped = true
		return res, true
	}
	if strings.HasPrefix(line, "!") {
		return b.header(line), true
	}
	b.beginData(&res)
	return res, false
}

// normalizeColumns pads short lines and drops empty surplus columns, then
// checks the count against [lo, hi]. It returns nil when the count is
// still wrong. Columns other than the verbatim ones are trimmed.
func normalizeColumns(line string, lo, hi int, verbatim ...int) []string {
	cols := strings.Split(line, "\t")
	for len(cols) > hi && strings.TrimSpace(cols[len(cols)-1]) == "" {
		cols = cols[:len(cols)-1]
	}
	if len(cols) < lo || len(cols) > hi {
		return nil
	}
	for len(cols) < hi {
		cols = append(cols, "")
	}
	for i := range cols {
		if !slices.Contains(verbatim, i) {
			cols[i] = strings.TrimSpace(cols[i])
		}
	}
	return cols
}

func wrongColumns(line string, lo, hi int) *ParseError {
	got := len(strings.Split(line, "\t"))
	want := fmt.Sprintf("%d", hi)
	if lo != hi {
		want = fmt.Sprintf("%d-%d", lo, hi)
	}
	return NewParseError(ErrorKindSyntax, report.TypeWrongColumnCount,
		fmt.Sprintf("expected %s columns, got %d", want, got))
}

type requiredColumn struct {
	col  int
	name string
}

// checkIDSpaces applies the configured subject and term prefix allow-lists.
func (b *base) checkIDSpaces(subject, term annotation.Curie) *ParseError {
	if b.norm.entityIDSpaces != nil && !b.norm.entityIDSpaces[subject.Namespace] {
		return NewParseError(ErrorKindSemantic, report.TypeInvalidIDSpace,
			fmt.Sprintf("subject prefix %s is not allowed", subject.Namespace)).WithValue(subject.String())
	}
	if b.norm.classIDSpaces != nil && !b.norm.classIDSpaces[term.Namespace] {
		return NewParseError(ErrorKindSemantic, report.TypeInvalidIDSpace,
			fmt.Sprintf("term prefix %s is not allowed", term.Namespace)).WithValue(term.String())
	}
	return nil
}

// taxonAllowed applies the configured taxon allow-list.
func (b *base) taxonAllowed(taxon annotation.Curie) bool {
	return b.norm.taxa == nil || b.norm.taxa[taxon]
}

// excludedEvidence reports whether a GAF code or ECO class is filtered out.
func (b *base) excludedEvidence(code string, class annotation.Curie) bool {
	if b.norm.excluded == nil {
		return false
	}
	return (code != "" && b.norm.excluded[code]) || b.norm.excluded[class.String()]
}

// repairObsolete substitutes an obsolete term that has exactly one
// replacement. Zero or several replacements leave the term unchanged.
func (b *base) repairObsolete(term annotation.Curie, col int) (annotation.Curie, *ParseError) {
	o := b.cfg.Ontology
	if o == nil || !b.cfg.RepairObsolete || !o.IsObsolete(term) {
		return term, nil
	}
	replacements := o.ReplacedBy(term)
	if len(replacements) == 1 {
		return replacements[0], newWarning(ErrorKindSemantic, report.TypeObsoleteClass,
			fmt.Sprintf("obsolete term %s replaced by %s", term, replacements[0])).
			WithColumn(col).WithValue(term.String())
	}
	return term, newWarning(ErrorKindSemantic, report.TypeObsoleteNoReplacement,
		fmt.Sprintf("obsolete term %s has %d replacements, left unchanged", term, len(replacements))).
		WithColumn(col).WithValue(term.String())
}

// fanOut emits one record per extension disjunct.
func fanOut(a *annotation.Association, extensions []annotation.ExtensionConjunction) []*annotation.Association {
	if len(extensions) <= 1 {
		a.ObjectExtensions = extensions
		return []*annotation.Association{a}
	}
	out := make([]*annotation.Association, 0, len(extensions))
	for _, conj := range extensions {
		c := a.Clone()
		c.ObjectExtensions = []annotation.ExtensionConjunction{append(annotation.ExtensionConjunction(nil), conj...)}
		out = append(out, c)
	}
	return out
}
