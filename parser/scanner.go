package parser

import (
	"bufio"
	"io"

	"github.com/teranos/gaffer/errors"
)

// MaxLineLength bounds a single annotation line.
const MaxLineLength = 1024 * 1024

// Scanner streams ParseResults from a reader, one line per Scan. Nothing is
// buffered beyond the current line, so callers may stop early.
//
//	sc := parser.NewScanner(f, p)
//	for sc.Scan() {
//		res := sc.Result()
//		...
//	}
//	if err := sc.Err(); err != nil { ... }
type Scanner struct {
	lines  *bufio.Scanner
	parser Parser
	res    ParseResult
	err    error
}

// NewScanner wraps r. The parser's report receives every message.
func NewScanner(r io.Reader, p Parser) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), MaxLineLength)
	return &Scanner{lines: sc, parser: p}
}

// Scan advances to the next line. It returns false at end of input, on a
// read error, or after a fatal result.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	if !s.lines.Scan() {
		if err := s.lines.Err(); err != nil {
			s.err = errors.Wrap(err, "failed to read annotation line")
		}
		return false
	}
	s.res = s.parser.ParseLine(s.lines.Text())
	if s.res.Fatal != nil {
		s.err = s.res.Fatal
		return false
	}
	return true
}

// Result returns the most recent line's result.
func (s *Scanner) Result() ParseResult { return s.res }

// Err returns the first read error or fatal condition.
func (s *Scanner) Err() error { return s.err }

// Parser returns the underlying parser.
func (s *Scanner) Parser() Parser { return s.parser }

// ParseAll reads r to the end and returns every accepted association. It is a
// convenience for tests and small files.
func ParseAll(r io.Reader, p Parser) ([]ParseResult, error) {
	var out []ParseResult
	sc := NewScanner(r, p)
	for sc.Scan() {
		out = append(out, sc.Result())
	}
	return out, sc.Err()
}
