// Package writer renders annotation records as GAF 2.1/2.2 or GPAD 1.2/2.0
// lines. Output produced here parses back to the same records.
package writer

import (
	"bufio"
	"io"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/eco"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
	"github.com/teranos/gaffer/parser"
)

// ErrUnwritable is returned (wrapped) when a record lacks something the
// output format needs, such as a GAF code for its ECO class.
var ErrUnwritable = errors.New("annotation cannot be written in this format")

var (
	writableGAF  = mustConstraint(">= 2.1, < 3.0")
	writableGPAD = mustConstraint(">= 1.2, < 3.0")
)

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// Writer streams one file. The version header is written before the first
// record, or by an explicit WriteHeader.
type Writer struct {
	out     *bufio.Writer
	format  parser.Format
	version *semver.Version
	eco     *eco.Map
	logger  *zap.SugaredLogger

	generatedBy string
	generated   time.Time
	extraHeader []string

	headerDone bool
	count      int
}

// Option configures a Writer.
type Option func(*Writer)

// WithECO sets the evidence map used to render GAF codes.
func WithECO(m *eco.Map) Option {
	return func(w *Writer) { w.eco = m }
}

// WithGeneratedBy adds a !generated-by header line.
func WithGeneratedBy(name string) Option {
	return func(w *Writer) { w.generatedBy = name }
}

// WithDateGenerated adds a !date-generated header line.
func WithDateGenerated(t time.Time) Option {
	return func(w *Writer) { w.generated = t }
}

// WithHeader appends header lines. A leading "!" is added when missing.
func WithHeader(lines ...string) Option {
	return func(w *Writer) { w.extraHeader = append(w.extraHeader, lines...) }
}

// WithLogger sets the writer's logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(w *Writer) { w.logger = log }
}

// New creates a writer for format f at version v.
func New(out io.Writer, f parser.Format, v *semver.Version, opts ...Option) (*Writer, error) {
	if v == nil {
		v = parser.DefaultVersion(f)
	}
	switch f {
	case parser.FormatGAF:
		if !writableGAF.Check(v) {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "cannot write GAF %s", v.Original())
		}
	case parser.FormatGPAD:
		if !writableGPAD.Check(v) {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "cannot write GPAD %s", v.Original())
		}
	default:
		return nil, errors.Wrapf(errors.ErrUnknownFormat, "%q", f)
	}

	w := &Writer{
		out:     bufio.NewWriter(out),
		format:  f,
		version: v,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.eco == nil {
		w.eco = eco.Default()
	}
	w.logger = logger.OrNop(w.logger).Named("writer")
	return w, nil
}

// Format returns the output format.
func (w *Writer) Format() parser.Format { return w.format }

// Version returns the output version.
func (w *Writer) Version() *semver.Version { return w.version }

// Count returns the number of records written.
func (w *Writer) Count() int { return w.count }

// HeaderLines returns the header this writer emits.
func (w *Writer) HeaderLines() []string {
	lines := []string{parser.VersionHeader(w.format, w.version)}
	if w.generatedBy != "" {
		lines = append(lines, "!generated-by: "+w.generatedBy)
	}
	if !w.generated.IsZero() {
		lines = append(lines, "!date-generated: "+w.generated.Format("2006-01-02"))
	}
	for _, l := range w.extraHeader {
		if !strings.HasPrefix(l, "!") {
			l = "!" + l
		}
		lines = append(lines, l)
	}
	return lines
}

// WriteHeader writes the header once.
func (w *Writer) WriteHeader() error {
	if w.headerDone {
		return nil
	}
	w.headerDone = true
	for _, l := range w.HeaderLines() {
		if _, err := w.out.WriteString(l + "\n"); err != nil {
			return errors.Wrap(err, "failed to write header")
		}
	}
	return nil
}

// Write renders a and writes it as one line.
func (w *Writer) Write(a *annotation.Association) error {
	if err := w.WriteHeader(); err != nil {
		return err
	}
	line, err := w.Line(a)
	if err != nil {
		return err
	}
	if _, err := w.out.WriteString(line + "\n"); err != nil {
		return errors.Wrap(err, "failed to write annotation")
	}
	w.count++
	return nil
}

// Flush writes buffered output.
func (w *Writer) Flush() error {
	if err := w.out.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush output")
	}
	w.logger.Debugw("Output flushed",
		logger.FieldFormat, w.format,
		logger.FieldVersion, w.version.Original(),
		logger.FieldCount, w.count,
	)
	return nil
}

// Line renders a without writing it.
func (w *Writer) Line(a *annotation.Association) (string, error) {
	var cols []string
	var err error
	if w.format == parser.FormatGAF {
		cols, err = gafColumns(a, w.version, w.eco)
	} else {
		cols, err = gpadColumns(a, w.version)
	}
	if err != nil {
		return "", err
	}
	return strings.Join(cols, "\t"), nil
}

func relationLabel(rel annotation.Curie) string {
	if label, ok := annotation.RelationLabel(rel); ok {
		return label
	}
	return rel.String()
}

// extensionString renders "rel(X:1),rel(Y:2)|rel(Z:3)" with relation labels
// or, for GPAD 2.0, relation Curies.
func extensionString(exts []annotation.ExtensionConjunction, curies bool) string {
	groups := make([]string, len(exts))
	for i, conj := range exts {
		units := make([]string, len(conj))
		for j, u := range conj {
			rel := u.Relation.String()
			if !curies {
				rel = relationLabel(u.Relation)
			}
			units[j] = rel + "(" + u.Term.String() + ")"
		}
		groups[i] = strings.Join(units, ",")
	}
	return strings.Join(groups, "|")
}

func joinCuries(cs []annotation.Curie, sep string) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, sep)
}

func gafTaxon(c annotation.Curie) string {
	if c.IsZero() {
		return ""
	}
	return "taxon:" + c.Identity
}
