package commands

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teranos/gaffer/config"
	"github.com/teranos/gaffer/db"
	"github.com/teranos/gaffer/display"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
	"github.com/teranos/gaffer/metrics"
	"github.com/teranos/gaffer/pipeline"
	"github.com/teranos/gaffer/report"
	"github.com/teranos/gaffer/store"
	"github.com/teranos/gaffer/version"
	"github.com/teranos/gaffer/writer"
)

// stdio names standard input or output in file arguments.
const stdio = "-"

// addRunFlags registers the flags of every command that pushes a file
// through the pipeline. Each one overrides the matching config key.
// output is the default record sink, "" for none.
func addRunFlags(cmd *cobra.Command, output string) {
	f := cmd.Flags()
	f.String("format", "", "Input format (gaf, gpad); detected from the header when empty")
	f.String("input-version", "", "Input format version for files without a version header")
	f.String("group", "", "Submitting group, used by group rules, the report and metrics")
	f.String("ontology", "", "GO ontology in OBO Graphs JSON")
	f.String("metadata", "", "Metadata YAML (groups, GO_REFs, extension constraints, taxon table)")
	f.String("eco", "", "Evidence code to ECO mapping table")
	f.String("profile", "", "Rule profile (TOML)")
	f.StringSlice("rule", nil, "Run only these rules, e.g. 11 or GORULE:0000011")
	f.StringSlice("context", nil, "Activate a rule context, e.g. import")
	f.Bool("paint", false, "Treat the file as a PAINT submission")
	f.String("db", "", "Store the run in this SQLite database")
	f.String("metrics", "", "Write Prometheus metrics to this textfile")
	f.StringP("output", "o", output, "Write accepted records to this file (- for stdout)")
	f.String("to", "", "Output format (gaf, gpad); defaults to the input format")
	f.String("to-version", "", "Output format version")
}

// applyFlags copies changed flags onto cfg. Flags a command does not define
// are ignored.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	stringFlag(cmd, "format", &cfg.Parser.Format)
	stringFlag(cmd, "input-version", &cfg.Parser.Version)
	stringFlag(cmd, "group", &cfg.Report.Group)
	stringFlag(cmd, "ontology", &cfg.Metadata.Ontology)
	stringFlag(cmd, "metadata", &cfg.Metadata.Path)
	stringFlag(cmd, "eco", &cfg.Metadata.ECO)
	stringFlag(cmd, "profile", &cfg.Rules.Profile)
	sliceFlag(cmd, "rule", &cfg.Rules.Enabled)
	sliceFlag(cmd, "context", &cfg.Rules.Contexts)
	if cmd.Flags().Changed("paint") {
		cfg.Rules.Paint, _ = cmd.Flags().GetBool("paint")
	}
	stringFlag(cmd, "db", &cfg.Database.Path)
	stringFlag(cmd, "metrics", &cfg.Output.Metrics)
	stringFlag(cmd, "to", &cfg.Output.Format)
	stringFlag(cmd, "to-version", &cfg.Output.Version)
	stringFlag(cmd, "report", &cfg.Report.Path)
	stringFlag(cmd, "report-format", &cfg.Report.Format)
	if cmd.Flags().Changed("max-messages") {
		cfg.Report.MaxMessages, _ = cmd.Flags().GetInt("max-messages")
	}
}

func stringFlag(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetString(name)
	}
}

func sliceFlag(cmd *cobra.Command, name string, dst *[]string) {
	if cmd.Flags().Changed(name) {
		*dst, _ = cmd.Flags().GetStringSlice(name)
	}
}

// loadConfig loads the configuration (or the --config file alone), applies
// the command's flags and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var loaded *config.Config
	var err error
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err = config.LoadFromFile(path)
	} else {
		loaded, err = config.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	// Load caches the config; flags must not leak into later calls
	cfg := *loaded
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// job runs one file through the pipeline with the sinks named in cfg.
type job struct {
	cfg     *config.Config
	res     *config.Resources
	output  string
	options []pipeline.Option
}

func newJob(cmd *cobra.Command, cfg *config.Config) (*job, error) {
	res, err := cfg.LoadResources(logger.Logger)
	if err != nil {
		return nil, err
	}
	output, _ := cmd.Flags().GetString("output")
	return &job{cfg: cfg, res: res, output: output}, nil
}

// run processes path. The result is returned together with the error
// whenever the file was at least opened, so callers can show the partial
// report of a fatal run.
func (j *job) run(cmd *cobra.Command, path string) (*pipeline.Result, error) {
	log := logger.Logger.Named("gaffer")

	in, err := openInput(path, cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	defer in.Close()

	parserCfg := j.cfg.ParserConfig(j.res)
	rulesCfg, err := j.cfg.RulesConfig(j.res)
	if err != nil {
		return nil, err
	}
	format, err := j.cfg.InputFormat()
	if err != nil {
		return nil, err
	}

	opts := []pipeline.Option{
		pipeline.WithFormat(format),
		pipeline.WithGroup(j.cfg.Report.Group),
		pipeline.WithMaxMessages(j.cfg.Report.MaxMessages),
		pipeline.WithBatchSize(j.cfg.Database.BatchSize),
		pipeline.WithLogger(log),
	}

	var out *outputFile
	if j.output != "" {
		if out, err = createOutput(j.output, cmd.OutOrStdout()); err != nil {
			return nil, err
		}
		defer out.Close()
		outFormat, outVersion, err := j.cfg.OutputFormat()
		if err != nil {
			return nil, err
		}
		opts = append(opts, pipeline.WithOutput(out, outFormat, outVersion,
			writer.WithGeneratedBy(version.Get().GeneratedBy(j.cfg.Output.GeneratedBy)),
			writer.WithECO(j.res.ECO),
			writer.WithLogger(log),
		))
	}

	if dbPath := j.cfg.Database.Path; dbPath != "" {
		conn, err := db.OpenWithMigrations(dbPath, log)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		opts = append(opts, pipeline.WithStore(store.NewSQLStore(conn, log)))
	}

	var m *metrics.Metrics
	if j.cfg.Output.Metrics != "" {
		m = metrics.New(j.cfg.Report.Group)
		opts = append(opts, pipeline.WithMetrics(m))
	}
	opts = append(opts, j.options...)

	result, runErr := pipeline.New(parserCfg, rulesCfg, opts...).Run(cmd.Context(), in, sourceName(path))
	if result == nil {
		return nil, runErr
	}

	keep := func(err error) {
		if err != nil && runErr == nil {
			runErr = err
		}
	}
	if m != nil {
		keep(m.WriteTextfile(j.cfg.Output.Metrics))
	}
	if j.cfg.Report.Path != "" {
		keep(writeReport(result.Report, j.cfg.Report.Path, j.cfg.Report.Format))
	}
	if out != nil {
		keep(out.Close())
	}
	return result, runErr
}

// summaryOut is where the run summary goes: stderr when records stream to
// stdout.
func (j *job) summaryOut(cmd *cobra.Command) io.Writer {
	if j.output == stdio {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// resultJSON is the --json form of a run.
type resultJSON struct {
	*pipeline.Result
	Summary report.Summary `json:"summary"`
}

// printResult shows the result as JSON or as a terminal summary.
func (j *job) printResult(cmd *cobra.Command, result *pipeline.Result) error {
	w := j.summaryOut(cmd)
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(w, resultJSON{Result: result, Summary: result.Report.Summarize()})
	}
	verbosity, _ := cmd.Flags().GetCount("verbose")
	return display.PrintResult(w, result, verbosity)
}

// runAndPrint is the common body of the file commands.
func (j *job) runAndPrint(cmd *cobra.Command, path string) (*pipeline.Result, error) {
	result, err := j.run(cmd, path)
	if result != nil {
		if perr := j.printResult(cmd, result); perr != nil && err == nil {
			err = perr
		}
	}
	return result, err
}

func writeReport(rep *report.Report, path, format string) error {
	var data []byte
	if format == "json" {
		var err error
		if data, err = rep.JSON(); err != nil {
			return errors.Wrap(err, "failed to render report")
		}
	} else {
		data = []byte(rep.Markdown())
	}
	if err := os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write report %s", path)
	}
	return nil
}

func sourceName(path string) string {
	if path == stdio {
		return "stdin"
	}
	return filepath.Base(path)
}

// readCloser closes a decompressor and the file beneath it.
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openInput opens path, or stdin for "-". Files ending in .gz are
// decompressed.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == stdio {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to decompress %s", path)
	}
	return &readCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
}

// outputFile is the record sink. Close is safe to call twice.
type outputFile struct {
	io.Writer
	closer io.Closer
}

func (o *outputFile) Close() error {
	if o.closer == nil {
		return nil
	}
	c := o.closer
	o.closer = nil
	return c.Close()
}

func createOutput(path string, stdout io.Writer) (*outputFile, error) {
	if path == stdio {
		return &outputFile{Writer: stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", path)
	}
	return &outputFile{Writer: f, closer: f}, nil
}
