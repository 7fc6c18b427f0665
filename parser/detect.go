package parser

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
	"github.com/teranos/gaffer/report"
)

// AutoParser selects GAF or GPAD from the first version header. A data line
// before any version header is the whole-file fatal condition.
type AutoParser struct {
	cfg    Config
	report *report.Report
	logger *zap.SugaredLogger
	inner  Parser
	lineNo int
	fatal  error
}

var _ Parser = (*AutoParser)(nil)

// Detect returns a parser that picks its format from the file header.
func Detect(cfg Config, rep *report.Report, log *zap.SugaredLogger) *AutoParser {
	if rep == nil {
		rep = report.New()
	}
	return &AutoParser{cfg: cfg, report: rep, logger: logger.OrNop(log)}
}

// ParseLine delegates to the detected parser once a version header is seen.
func (a *AutoParser) ParseLine(line string) ParseResult {
	if a.inner != nil {
		return a.inner.ParseLine(line)
	}
	a.lineNo++
	res := ParseResult{Line: line, LineNo: a.lineNo}
	if a.fatal != nil {
		res.Fatal = a.fatal
		return res
	}
	if strings.TrimSpace(line) == "" {
		res.Skipped = true
		return res
	}
	if strings.HasPrefix(line, "!") {
		if f, v, ok := ParseVersionHeader(line); ok {
			inner, err := New(f, a.cfg, a.report, a.logger)
			if err != nil {
				a.fatal = err
				res.Fatal = err
				return res
			}
			a.logger.Infow("Detected format",
				logger.FieldFormat, f,
				logger.FieldVersion, v.Original(),
			)
			a.inner = &offsetParser{Parser: inner, offset: a.lineNo - 1}
			return a.inner.ParseLine(line)
		}
		a.report.AddHeader(line)
		res.Header = true
		return res
	}

	a.report.AddLine()
	a.fatal = errors.WithHint(errors.Wrapf(errors.ErrNoVersion, "line %d", a.lineNo),
		"add a !gaf-version or !gpad-version header, or pass the format explicitly")
	a.report.Message(report.Fatal, report.TypeNoVersion, line, "",
		"data line found before any version header, cannot select a parser")
	a.logger.Errorw("No version header",
		logger.FieldLineNo, a.lineNo,
	)
	res.Fatal = a.fatal
	return res
}

// Format is empty until a header has been seen.
func (a *AutoParser) Format() Format {
	if a.inner == nil {
		return ""
	}
	return a.inner.Format()
}

func (a *AutoParser) Version() *semver.Version {
	if a.inner == nil {
		return nil
	}
	return a.inner.Version()
}

func (a *AutoParser) Report() *report.Report { return a.report }

// offsetParser keeps line numbers continuous after the detected parser takes
// over partway through the header.
type offsetParser struct {
	Parser
	offset int
}

func (o *offsetParser) ParseLine(line string) ParseResult {
	res := o.Parser.ParseLine(line)
	res.LineNo += o.offset
	return res
}
