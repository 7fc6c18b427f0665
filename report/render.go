package report

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Summary is the JSON form of a report.
type Summary struct {
	Group        string         `json:"group"`
	Dataset      string         `json:"dataset"`
	Lines        int            `json:"lines"`
	HeaderLines  int            `json:"header_lines"`
	Skipped      int            `json:"skipped_lines"`
	Associations int            `json:"associations"`
	Levels       map[Level]int  `json:"levels"`
	Types        map[string]int `json:"types"`
	Rules        []RuleSummary  `json:"rules"`
	Subjects     IDSummary      `json:"subjects"`
	Objects      IDSummary      `json:"objects"`
	Taxa         IDSummary      `json:"taxa"`
	Dropped      int            `json:"dropped_messages"`
	Messages     []Message      `json:"messages"`
}

// RuleSummary counts a rule's messages by level.
type RuleSummary struct {
	Rule     string `json:"rule"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
}

// IDSummary is a distinct count plus a few examples. Capped means more
// identifiers were seen than tracked and Distinct is a lower bound.
type IDSummary struct {
	Distinct int      `json:"distinct"`
	Capped   bool     `json:"capped,omitempty"`
	Samples  []string `json:"samples"`
}

// Summarize snapshots the accumulated state.
func (r *Report) Summarize() Summary {
	s := Summary{
		Group:        r.Group,
		Dataset:      r.Dataset,
		Lines:        r.lines,
		HeaderLines:  r.headerLines,
		Skipped:      r.skipped,
		Associations: r.associations,
		Levels:       make(map[Level]int, len(r.levelCounts)),
		Types:        make(map[string]int, len(r.typeCounts)),
		Rules:        []RuleSummary{},
		Subjects:     r.subjects.summary(),
		Objects:      r.objects.summary(),
		Taxa:         r.taxa.summary(),
		Dropped:      r.dropped,
		Messages:     r.Messages(),
	}
	for l, n := range r.levelCounts {
		s.Levels[l] = n
	}
	for t, n := range r.typeCounts {
		s.Types[t] = n
	}
	for _, id := range r.rules() {
		s.Rules = append(s.Rules, RuleSummary{
			Rule:     id,
			Errors:   r.ruleCounts[id][Error],
			Warnings: r.ruleCounts[id][Warning],
		})
	}
	if s.Messages == nil {
		s.Messages = []Message{}
	}
	return s
}

// JSON renders the summary. Map keys are sorted by encoding/json so repeated
// calls are byte-identical.
func (r *Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Summarize(), "", "  ")
}

// Markdown renders the report for human review.
func (r *Report) Markdown() string {
	var sb strings.Builder

	title := r.Group
	if title == "" {
		title = "unknown"
	}
	sb.WriteString(fmt.Sprintf("# Group: %s\n", title))
	if r.Dataset != "" {
		sb.WriteString(fmt.Sprintf("**Dataset:** %s\n", r.Dataset))
	}
	sb.WriteString("\n### Summary\n\n")
	sb.WriteString(fmt.Sprintf("* Associations: %d\n", r.associations))
	sb.WriteString(fmt.Sprintf("* Lines in file (incl headers): %d\n", r.lines))
	sb.WriteString(fmt.Sprintf("* Lines skipped: %d\n", r.skipped))
	for _, l := range levelOrder {
		sb.WriteString(fmt.Sprintf("* %s messages: %d\n", l, r.levelCounts[l]))
	}
	if r.dropped > 0 {
		sb.WriteString(fmt.Sprintf("* Messages not shown (cap reached): %d\n", r.dropped))
	}

	sb.WriteString("\n### Identifiers\n\n")
	writeSample(&sb, "Subjects", r.subjects)
	writeSample(&sb, "Objects", r.objects)
	writeSample(&sb, "Taxa", r.taxa)

	if len(r.header) > 0 {
		sb.WriteString("\n### Header\n\n```\n")
		for _, h := range r.header {
			sb.WriteString(h + "\n")
		}
		sb.WriteString("```\n")
	}

	if rules := r.rules(); len(rules) > 0 {
		sb.WriteString("\n## Rules\n")
		for _, id := range rules {
			sb.WriteString(fmt.Sprintf("\n### %s\n\n", id))
			sb.WriteString(fmt.Sprintf("* total: %d errors, %d warnings\n",
				r.ruleCounts[id][Error], r.ruleCounts[id][Warning]))
			for _, m := range r.messages {
				if m.Type == TypeRule && m.Rule == id {
					writeMessage(&sb, m)
				}
			}
		}
	}

	if types := r.Types(); len(types) > 0 {
		sb.WriteString("\n## Parsing messages\n")
		for _, t := range types {
			sb.WriteString(fmt.Sprintf("\n### %s\n\n", t))
			sb.WriteString(fmt.Sprintf("* total: %d\n", r.typeCounts[t]))
			for _, m := range r.messages {
				if m.Type == t {
					writeMessage(&sb, m)
				}
			}
		}
	}

	return sb.String()
}

func writeSample(sb *strings.Builder, name string, s idSample) {
	if s.capped {
		sb.WriteString(fmt.Sprintf("* %s: at least %d distinct", name, s.distinct()))
	} else {
		sb.WriteString(fmt.Sprintf("* %s: %d distinct", name, s.distinct()))
	}
	if len(s.samples) > 0 {
		sb.WriteString(" (e.g. " + strings.Join(s.samples, ", ") + ")")
	}
	sb.WriteString("\n")
}

func writeMessage(sb *strings.Builder, m Message) {
	obj := ""
	if m.Obj != "" {
		obj = fmt.Sprintf(" `%s`", m.Obj)
	}
	sb.WriteString(fmt.Sprintf(" * %s - line %d:%s %s\n", m.Level, m.LineNo, obj, m.Message))
	if m.Line != "" {
		sb.WriteString(fmt.Sprintf("   * `%s`\n", strings.ReplaceAll(m.Line, "\t", "\\t")))
	}
}
