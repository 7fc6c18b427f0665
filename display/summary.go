package display

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/teranos/gaffer/pipeline"
	"github.com/teranos/gaffer/report"
	"github.com/teranos/gaffer/rules"
	"github.com/teranos/gaffer/store"
)

// maxShownMessages bounds the message listing at -vv.
const maxShownMessages = 20

// PrintResult writes a terminal summary of one run. verbosity 1 adds the
// per-rule table, 2 the first messages.
func PrintResult(w io.Writer, res *pipeline.Result, verbosity int) error {
	title := res.Source
	if res.Format != "" {
		title = fmt.Sprintf("%s (%s %s)", res.Source, res.Format, res.Version)
	}
	fmt.Fprint(w, pterm.DefaultSection.Sprint(title))

	st := res.Stats
	stats, err := pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Lines", "Skipped", "Records", "Accepted", "Dropped", "Repaired", "Filtered", "Written"},
		{itoa(st.Lines), itoa(st.Skipped), itoa(st.Associations), itoa(st.Accepted),
			itoa(st.Dropped), itoa(st.Repaired), itoa(st.Filtered), itoa(st.Written)},
	}).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, stats)

	rep := res.Report
	for _, level := range report.Levels() {
		n := rep.Count(level)
		if n == 0 {
			continue
		}
		fmt.Fprint(w, levelPrinter(level).Sprintf("%d %s messages\n", n, level))
	}

	summary := rep.Summarize()
	if verbosity >= 1 && len(summary.Rules) > 0 {
		data := pterm.TableData{{"Rule", "Errors", "Warnings"}}
		for _, r := range summary.Rules {
			data = append(data, []string{r.Rule, itoa(r.Errors), itoa(r.Warnings)})
		}
		rules, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, rules)
	}

	if verbosity >= 2 {
		for i, m := range summary.Messages {
			if i == maxShownMessages {
				fmt.Fprintf(w, "  ... %d more\n", len(summary.Messages)-maxShownMessages)
				break
			}
			label := m.Type
			if m.Rule != "" {
				label = m.Rule
			}
			fmt.Fprintf(w, "  %s %s line %d: %s\n", levelPrinter(m.Level).Prefix.Text, label, m.LineNo, m.Message)
		}
	}

	switch {
	case rep.HasFatal():
		fmt.Fprint(w, pterm.Error.Sprintln("File could not be processed"))
	case st.Dropped > 0 || st.Skipped > 0:
		fmt.Fprint(w, pterm.Warning.Sprintf("%d records accepted, %d dropped, %d lines skipped in %s\n",
			st.Accepted, st.Dropped, st.Skipped, res.Duration().Round(time.Millisecond)))
	default:
		fmt.Fprint(w, pterm.Success.Sprintf("%d records accepted in %s\n",
			st.Accepted, res.Duration().Round(time.Millisecond)))
	}
	return nil
}

// PrintRuns writes stored runs as a table, newest first.
func PrintRuns(w io.Writer, runs []*store.Run) error {
	if len(runs) == 0 {
		fmt.Fprint(w, pterm.Info.Sprintln("No runs stored"))
		return nil
	}
	data := pterm.TableData{{"ID", "Source", "Format", "Group", "Started", "Lines", "Accepted", "Dropped"}}
	for _, r := range runs {
		format := r.Format
		if r.Version != "" {
			format += " " + r.Version
		}
		data = append(data, []string{
			r.ID[:min(8, len(r.ID))], r.Source, format, r.Group,
			r.StartedAt.Format(time.DateTime), itoa(r.Lines), itoa(r.Accepted), itoa(r.Dropped),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)
	return nil
}

// PrintRules writes the rule catalog.
func PrintRules(w io.Writer, catalog []rules.Rule) error {
	data := pterm.TableData{{"Rule", "Kind", "Mode", "Contexts", "Title"}}
	for _, r := range catalog {
		data = append(data, []string{
			string(r.ID), r.Kind.String(), r.FailMode.String(), strings.Join(r.Contexts, ","), r.Title,
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, table)
	return nil
}

func levelPrinter(level report.Level) pterm.PrefixPrinter {
	switch level {
	case report.Fatal, report.Error:
		return pterm.Error
	case report.Warning:
		return pterm.Warning
	}
	return pterm.Info
}

func itoa(n int) string { return strconv.Itoa(n) }
