package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
	"github.com/teranos/gaffer/metrics"
	"github.com/teranos/gaffer/parser"
	"github.com/teranos/gaffer/report"
	"github.com/teranos/gaffer/rules"
	"github.com/teranos/gaffer/store"
	"github.com/teranos/gaffer/writer"
)

const (
	// ProgressInterval defines how often to log progress, in data lines
	ProgressInterval = 10000

	// DefaultBatchSize is how many accepted records are stored per transaction
	DefaultBatchSize = 500
)

// Stats counts what happened to a file's lines and records.
type Stats struct {
	Lines        int `json:"lines"`
	Headers      int `json:"headers"`
	Skipped      int `json:"skipped"`
	Associations int `json:"associations"`
	Upgraded     int `json:"upgraded"`
	Repaired     int `json:"repaired"`
	Accepted     int `json:"accepted"`
	Dropped      int `json:"dropped"`
	Filtered     int `json:"filtered"`
	Unwritable   int `json:"unwritable"`
	Written      int `json:"written"`
}

// Result is the outcome of one Run.
type Result struct {
	RunID     string         `json:"run_id"`
	Source    string         `json:"source"`
	Format    parser.Format  `json:"format"`
	Version   string         `json:"version"`
	Stats     Stats          `json:"stats"`
	Report    *report.Report `json:"-"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration { return r.EndTime.Sub(r.StartTime) }

type output struct {
	w       io.Writer
	format  parser.Format
	version *semver.Version
	opts    []writer.Option
}

// Processor validates files with one parser and rule configuration. Each
// Run gets a fresh parser, report and rule engine.
type Processor struct {
	parserCfg parser.Config
	rulesCfg  rules.Config
	format    parser.Format
	group     string

	filters   []Filter
	slim      *Slimmer
	out       *output
	store     *store.SQLStore
	metrics   *metrics.Metrics
	batchSize int
	maxMsgs   int

	logger *zap.SugaredLogger
	now    func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithFormat forces the input format instead of detecting it from the header.
func WithFormat(f parser.Format) Option {
	return func(p *Processor) { p.format = f }
}

// WithGroup names the submitting group in the report, store and metrics.
func WithGroup(group string) Option {
	return func(p *Processor) { p.group = group }
}

// WithFilters adds filters applied to accepted records.
func WithFilters(filters ...Filter) Option {
	return func(p *Processor) { p.filters = append(p.filters, filters...) }
}

// WithSlim maps accepted records to slim terms before output.
func WithSlim(s *Slimmer) Option {
	return func(p *Processor) { p.slim = s }
}

// WithOutput writes accepted records to w. An empty format keeps the input
// format; a nil version keeps the input version when it can be written and
// otherwise uses the format default.
func WithOutput(w io.Writer, f parser.Format, v *semver.Version, opts ...writer.Option) Option {
	return func(p *Processor) { p.out = &output{w: w, format: f, version: v, opts: opts} }
}

// WithStore persists the run, its accepted records and its messages.
func WithStore(s *store.SQLStore) Option {
	return func(p *Processor) { p.store = s }
}

// WithMetrics counts lines, records and verdicts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithBatchSize sets the store batch size.
func WithBatchSize(n int) Option {
	return func(p *Processor) { p.batchSize = n }
}

// WithMaxMessages caps the report's stored messages.
func WithMaxMessages(n int) Option {
	return func(p *Processor) { p.maxMsgs = n }
}

// WithLogger sets the logger. Nil is silent.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Processor) { p.logger = log }
}

// New returns a processor.
func New(parserCfg parser.Config, rulesCfg rules.Config, opts ...Option) *Processor {
	p := &Processor{
		parserCfg: parserCfg,
		rulesCfg:  rulesCfg,
		batchSize: DefaultBatchSize,
		maxMsgs:   report.DefaultMaxMessages,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.batchSize <= 0 {
		p.batchSize = DefaultBatchSize
	}
	p.logger = logger.OrNop(p.logger).Named("pipeline")
	return p
}

// run is the state of one Run call.
type run struct {
	p      *Processor
	ctx    context.Context
	src    io.Reader
	res    *Result
	rep    *report.Report
	prs    parser.Parser
	log    *zap.SugaredLogger
	writer *writer.Writer
	row    *store.Run
	batch  []store.Record
}

// Run processes one file. A file that cannot be parsed at all (no version
// header while detecting the format) returns errors.ErrNoVersion together
// with the partial result.
func (p *Processor) Run(ctx context.Context, r io.Reader, source string) (*Result, error) {
	rep := report.New(report.WithGroup(p.group, source), report.WithMaxMessages(p.maxMsgs))
	res := &Result{
		RunID:     uuid.NewString(),
		Source:    source,
		Report:    rep,
		StartTime: p.now(),
	}
	log := p.logger.With(logger.FieldRunID, res.RunID, logger.FieldFile, source)

	var prs parser.Parser
	if p.format == "" {
		prs = parser.Detect(p.parserCfg, rep, log)
	} else {
		var err error
		if prs, err = parser.New(p.format, p.parserCfg, rep, log); err != nil {
			return nil, err
		}
	}

	st := &run{p: p, ctx: ctx, src: r, res: res, rep: rep, prs: prs, log: log}
	if p.store != nil {
		st.row = &store.Run{ID: res.RunID, Source: source, Format: string(p.format), Group: p.group, StartedAt: res.StartTime.UTC()}
		if err := p.store.CreateRun(ctx, st.row); err != nil {
			return nil, err
		}
	}

	log.Infow("Processing annotations", logger.FieldGroup, p.group)
	runErr := st.process()
	if err := st.finish(); err != nil && runErr == nil {
		runErr = err
	}
	return res, runErr
}

func (st *run) process() error {
	engine := rules.NewEngine(st.p.rulesCfg, st.log)
	gen := NewGenerator(parser.NewScanner(st.src, st.prs), engine, st.p.parserCfg.Ontology)
	gen.OnLine = st.line

	for gen.Next() {
		if err := st.ctx.Err(); err != nil {
			return errors.Wrap(err, "processing cancelled")
		}
		if err := st.outcome(gen.Outcome()); err != nil {
			return err
		}
	}
	return gen.Err()
}

func (st *run) line(pr parser.ParseResult) {
	stats := &st.res.Stats
	switch {
	case pr.Header:
		stats.Headers++
		return
	case pr.Fatal != nil:
		return
	}
	stats.Lines++
	if pr.Skipped {
		stats.Skipped++
	}
	if st.p.metrics != nil {
		st.p.metrics.Line(pr.Skipped)
	}
	if stats.Lines%ProgressInterval == 0 {
		st.log.Infow("Progress",
			logger.FieldLineNo, pr.LineNo,
			"accepted", stats.Accepted,
			"dropped", stats.Dropped,
		)
	}
}

func (st *run) outcome(out Outcome) error {
	stats := &st.res.Stats
	stats.Associations++
	if out.Upgraded {
		stats.Upgraded++
	}
	for _, f := range out.Results.Failures() {
		if st.p.metrics != nil {
			st.p.metrics.Verdict(string(f.Rule), f.Verdict.String())
		}
	}
	if out.Annotation() != out.Parsed {
		stats.Repaired++
	}
	if !out.Accepted() {
		stats.Dropped++
		if st.p.metrics != nil {
			st.p.metrics.Association(false)
		}
		return nil
	}

	a := out.Annotation()
	for _, f := range st.p.filters {
		if !f.Keep(a) {
			stats.Filtered++
			return nil
		}
	}
	records := []*annotation.Association{a}
	if st.p.slim != nil {
		records = st.p.slim.Apply(a)
		if len(records) == 0 {
			st.rep.Info(report.TypeUnmappedSlim, out.Line, a.Object.ID.String(), "term maps to no slim term")
			stats.Filtered++
			return nil
		}
	}

	stats.Accepted++
	st.rep.AddAssociation(a.Subject.ID.String(), a.Object.ID.String(), a.Subject.Taxon.String())
	if st.p.metrics != nil {
		st.p.metrics.Association(true)
	}

	for _, rec := range records {
		line := out.Line
		if st.p.out != nil {
			w, err := st.output()
			if err != nil {
				return err
			}
			if line, err = w.Line(rec); err != nil {
				if errors.Is(err, writer.ErrUnwritable) {
					st.rep.Warning(report.TypeUnwritable, out.Line, rec.Object.ID.String(), err.Error())
					stats.Unwritable++
					continue
				}
				return err
			}
			if err := w.Write(rec); err != nil {
				return err
			}
			stats.Written++
		}
		if st.p.store != nil {
			st.batch = append(st.batch, store.Record{LineNo: out.LineNo, Association: rec, Line: line})
			if len(st.batch) >= st.p.batchSize {
				if err := st.flushBatch(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// output creates the writer on first use, once the input format is known.
func (st *run) output() (*writer.Writer, error) {
	if st.writer != nil {
		return st.writer, nil
	}
	dst := st.p.out
	f := dst.format
	if f == "" {
		f = st.prs.Format()
	}
	if f == "" {
		return nil, errors.Wrap(errors.ErrUnknownFormat, "output format not known before the first version header")
	}
	opts := append([]writer.Option{writer.WithLogger(st.log)}, dst.opts...)

	v := dst.version
	if v == nil && f == st.prs.Format() {
		if w, err := writer.New(dst.w, f, st.prs.Version(), opts...); err == nil {
			st.writer = w
			return w, nil
		}
	}
	w, err := writer.New(dst.w, f, v, opts...)
	if err != nil {
		return nil, err
	}
	st.writer = w
	return w, nil
}

func (st *run) flushBatch() error {
	if len(st.batch) == 0 {
		return nil
	}
	err := st.p.store.SaveRecords(st.ctx, st.row.ID, st.batch)
	st.batch = st.batch[:0]
	return err
}

// finish flushes every sink. It runs even after a fatal parse so the partial
// report is stored.
func (st *run) finish() error {
	res := st.res
	res.Format = st.prs.Format()
	if v := st.prs.Version(); v != nil {
		res.Version = v.Original()
	}
	res.EndTime = st.p.now()

	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if st.p.out != nil && (st.writer != nil || res.Format != "" || st.p.out.format != "") {
		w, err := st.output()
		keep(err)
		if err == nil {
			keep(w.WriteHeader())
			keep(w.Flush())
		}
	}

	if st.p.store != nil {
		keep(st.flushBatch())
		keep(st.p.store.SaveMessages(st.ctx, st.row.ID, st.rep.Messages()))
		st.row.Format = string(res.Format)
		st.row.Version = res.Version
		st.row.Lines = res.Stats.Lines
		st.row.Skipped = res.Stats.Skipped
		st.row.Accepted = res.Stats.Accepted
		st.row.Dropped = res.Stats.Dropped
		keep(st.p.store.FinishRun(st.ctx, st.row))
	}

	if st.p.metrics != nil {
		st.p.metrics.ObserveReport(st.rep)
		st.p.metrics.Duration(res.Duration().Seconds())
	}

	st.log.Infow("Processing complete",
		logger.FieldFormat, res.Format,
		logger.FieldVersion, res.Version,
		"lines", res.Stats.Lines,
		"accepted", res.Stats.Accepted,
		"dropped", res.Stats.Dropped,
		"skipped", res.Stats.Skipped,
		logger.FieldDurationMS, res.Duration().Milliseconds(),
	)
	return firstErr
}
