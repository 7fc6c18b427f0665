// Package report accumulates the diagnostics of one parse run and renders
// them as markdown or JSON.
package report

import (
	"sort"
)

// Level is the severity of a message.
type Level string

const (
	Fatal   Level = "FATAL"
	Error   Level = "ERROR"
	Warning Level = "WARNING"
	Info    Level = "INFO"
)

// levelOrder is the rendering order of levels.
var levelOrder = []Level{Fatal, Error, Warning, Info}

// Levels returns every level, most severe first.
func Levels() []Level { return append([]Level(nil), levelOrder...) }

// Message types raised by the parsers. Rule messages use TypeRule and carry
// the rule identifier in Message.Rule.
const (
	TypeWrongColumnCount       = "WRONG_NUMBER_OF_COLUMNS"
	TypeInvalidID              = "INVALID_ID"
	TypeInvalidIDSpace         = "INVALID_IDSPACE"
	TypeInvalidTaxon           = "INVALID_TAXON"
	TypeTaxonNotAllowed        = "TAXON_NOT_ALLOWED"
	TypeInvalidDate            = "INVALID_DATE"
	TypeInvalidQualifier       = "INVALID_QUALIFIER"
	TypeInvalidAspect          = "INVALID_ASPECT"
	TypeInvalidSymbol          = "INVALID_SYMBOL"
	TypeUnknownEvidence        = "UNKNOWN_EVIDENCE_CLASS"
	TypeEvidenceFiltered       = "EVIDENCE_FILTERED"
	TypeExtensionSyntax        = "EXTENSION_SYNTAX_ERROR"
	TypeObsoleteClass          = "OBSOLETE_CLASS"
	TypeObsoleteNoReplacement  = "OBSOLETE_CLASS_NO_REPLACEMENT"
	TypeMissingField           = "MISSING_REQUIRED_FIELD"
	TypeNoVersion              = "NO_VERSION"
	TypeInvalidProperty        = "INVALID_PROPERTY"
	TypeUnknownGeneProductType = "UNKNOWN_GENE_PRODUCT_TYPE"
	TypeRule                   = "VIOLATES_GO_RULE"

	// Raised after validation.
	TypeUnwritable   = "UNWRITABLE_RECORD"
	TypeUnmappedSlim = "NO_SLIM_MAPPING"
)

// DefaultMaxMessages bounds the stored message list.
const DefaultMaxMessages = 10000

// DefaultMaxDistinct bounds the identifiers tracked per kind for distinct
// counts. Past it the count is a lower bound.
const DefaultMaxDistinct = 100000

// sampleSize is the number of example identifiers kept per kind.
const sampleSize = 5

// Message is one diagnostic.
type Message struct {
	Level   Level  `json:"level"`
	Type    string `json:"type"`
	Rule    string `json:"rule,omitempty"`
	LineNo  int    `json:"line_no,omitempty"`
	Line    string `json:"line"`
	Obj     string `json:"obj"`
	Taxon   string `json:"taxon,omitempty"`
	Message string `json:"message"`
}

// Report is the diagnostics accumulator of a single file. It is not safe for
// concurrent use.
type Report struct {
	Group   string
	Dataset string

	maxMessages int
	maxDistinct int
	messages    []Message
	dropped     int

	levelCounts map[Level]int
	typeCounts  map[string]int
	ruleCounts  map[string]map[Level]int

	lines        int
	headerLines  int
	skipped      int
	associations int
	currentLine  int
	header       []string

	subjects idSample
	objects  idSample
	taxa     idSample
}

// Option configures a Report.
type Option func(*Report)

// WithMaxMessages overrides the stored message cap. Zero or negative keeps no
// messages (counts are still kept).
func WithMaxMessages(n int) Option {
	return func(r *Report) { r.maxMessages = n }
}

// WithMaxDistinct overrides how many identifiers per kind are tracked for
// distinct counts.
func WithMaxDistinct(n int) Option {
	return func(r *Report) { r.maxDistinct = n }
}

// WithGroup names the submitting group and dataset shown in the rendered report.
func WithGroup(group, dataset string) Option {
	return func(r *Report) {
		r.Group = group
		r.Dataset = dataset
	}
}

// New creates an empty report.
func New(opts ...Option) *Report {
	r := &Report{
		maxMessages: DefaultMaxMessages,
		maxDistinct: DefaultMaxDistinct,
		levelCounts: make(map[Level]int),
		typeCounts:  make(map[string]int),
		ruleCounts:  make(map[string]map[Level]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.subjects = newIDSample(r.maxDistinct)
	r.objects = newIDSample(r.maxDistinct)
	r.taxa = newIDSample(r.maxDistinct)
	return r
}

// Message records a diagnostic. It never fails: past the cap only the counts
// move.
func (r *Report) Message(level Level, typ, line, obj, msg string) {
	r.add(Message{Level: level, Type: typ, Line: line, Obj: obj, Message: msg})
}

// RuleMessage records a rule verdict other than PASS.
func (r *Report) RuleMessage(level Level, rule, line, obj, taxon, msg string) {
	r.add(Message{Level: level, Type: TypeRule, Rule: rule, Line: line, Obj: obj, Taxon: taxon, Message: msg})
}

// Error is Message at ERROR level.
func (r *Report) Error(typ, line, obj, msg string) { r.Message(Error, typ, line, obj, msg) }

// Warning is Message at WARNING level.
func (r *Report) Warning(typ, line, obj, msg string) { r.Message(Warning, typ, line, obj, msg) }

// Info is Message at INFO level.
func (r *Report) Info(typ, line, obj, msg string) { r.Message(Info, typ, line, obj, msg) }

func (r *Report) add(m Message) {
	if m.LineNo == 0 {
		m.LineNo = r.currentLine
	}
	r.levelCounts[m.Level]++
	r.typeCounts[m.Type]++
	if m.Rule != "" {
		rc, ok := r.ruleCounts[m.Rule]
		if !ok {
			rc = make(map[Level]int)
			r.ruleCounts[m.Rule] = rc
		}
		rc[m.Level]++
	}
	if len(r.messages) >= r.maxMessages {
		r.dropped++
		return
	}
	r.messages = append(r.messages, m)
}

// AddLine counts one data line read from the file and sets the line number
// attached to subsequent messages.
func (r *Report) AddLine() {
	r.lines++
	r.currentLine = r.lines
}

// AddHeader counts one header line and keeps its text.
func (r *Report) AddHeader(line string) {
	r.lines++
	r.headerLines++
	r.currentLine = r.lines
	r.header = append(r.header, line)
}

// AddSkipped counts a line that produced no associations.
func (r *Report) AddSkipped() { r.skipped++ }

// AddAssociation counts an accepted association and samples its identifiers.
func (r *Report) AddAssociation(subject, object, taxon string) {
	r.associations++
	r.subjects.add(subject)
	r.objects.add(object)
	r.taxa.add(taxon)
}

// Messages returns the stored messages in insertion order.
func (r *Report) Messages() []Message {
	return append([]Message(nil), r.messages...)
}

// Count returns the number of messages recorded at level, including those
// past the cap.
func (r *Report) Count(level Level) int { return r.levelCounts[level] }

// TypeCount returns the number of messages recorded with type.
func (r *Report) TypeCount(typ string) int { return r.typeCounts[typ] }

// RuleCount returns the number of messages a rule produced at level.
func (r *Report) RuleCount(rule string, level Level) int {
	return r.ruleCounts[rule][level]
}

// Dropped is the number of messages not stored because of the cap.
func (r *Report) Dropped() int { return r.dropped }

// HasFatal reports whether the file was abandoned.
func (r *Report) HasFatal() bool { return r.levelCounts[Fatal] > 0 }

// Lines returns the number of lines seen, headers included.
func (r *Report) Lines() int { return r.lines }

// Skipped returns the number of skipped lines.
func (r *Report) Skipped() int { return r.skipped }

// Associations returns the number of accepted associations.
func (r *Report) Associations() int { return r.associations }

// Header returns the header lines in file order.
func (r *Report) Header() []string { return append([]string(nil), r.header...) }

// rules returns rule identifiers with messages, sorted.
func (r *Report) rules() []string {
	out := make([]string, 0, len(r.ruleCounts))
	for id := range r.ruleCounts {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Types returns the non-rule message types seen so far, sorted.
func (r *Report) Types() []string {
	out := make([]string, 0, len(r.typeCounts))
	for t := range r.typeCounts {
		if t != TypeRule {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// idSample counts distinct identifiers up to limit and keeps the first few.
// Once full, unseen identifiers are not tracked and the count is marked
// capped.
type idSample struct {
	limit   int
	seen    map[string]struct{}
	samples []string
	capped  bool
}

func newIDSample(limit int) idSample {
	return idSample{limit: limit, seen: make(map[string]struct{})}
}

func (s *idSample) add(id string) {
	if id == "" {
		return
	}
	if _, ok := s.seen[id]; ok {
		return
	}
	if len(s.seen) >= s.limit {
		s.capped = true
		return
	}
	s.seen[id] = struct{}{}
	if len(s.samples) < sampleSize {
		s.samples = append(s.samples, id)
	}
}

func (s *idSample) distinct() int { return len(s.seen) }

func (s *idSample) summary() IDSummary {
	return IDSummary{Distinct: s.distinct(), Capped: s.capped, Samples: append([]string{}, s.samples...)}
}
