// Package classify derives the reporting keys for an event (owner and
// category from its SUMMARY) and maintains the owner → category → date
// index behind the summary report. The index is an explicit value built
// per run; it feeds reporting only and never influences merge decisions.
package classify

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"sdwcal/internal/annot"
	"sdwcal/internal/log"
	"sdwcal/internal/record"
)

// DefaultCategory is used when a summary carries no parenthetical
// category tag: a plain leave entry.
const DefaultCategory = "Off"

// Owner derives the grouping key for the report: the summary with any
// parenthetical span (and a trailing anomaly marker) removed, a leading
// AM/PM marker stripped, lower-cased.
func Owner(summary string) string {
	if i := strings.Index(summary, " ("); i >= 0 {
		if j := strings.LastIndex(summary, ")"); j > i {
			k := j + 1
			for k < len(summary) && summary[k] == '?' {
				k++
			}
			summary = summary[:i] + summary[k:]
		}
	}
	summary = strings.TrimPrefix(strings.TrimPrefix(summary, "AM "), "PM ")
	return strings.ToLower(summary)
}

// Category returns the report category — the first parenthetical group
// starting with a letter, title-cased with internal whitespace removed —
// and the total number of such groups. More than one group is a data
// anomaly the caller should report.
func Category(summary string) (string, int) {
	groups := parentheticals(strings.ToLower(summary))
	if len(groups) == 0 {
		return DefaultCategory, 0
	}
	cat := strings.Join(strings.Fields(annot.Beautify(groups[0])), "")
	return cat, len(groups)
}

// parentheticals collects every "(x...)" group whose content starts with
// a lowercase letter and spans at least two characters, in order.
func parentheticals(value string) []string {
	var groups []string
	for i := 0; i < len(value); i++ {
		if value[i] != '(' {
			continue
		}
		j := strings.IndexByte(value[i+1:], ')')
		if j < 0 {
			break
		}
		content := value[i+1 : i+1+j]
		if len(content) >= 2 && content[0] >= 'a' && content[0] <= 'z' {
			groups = append(groups, content)
		}
		i += j + 1
	}
	return groups
}

// Index accumulates events by owner, category and start date.
type Index struct {
	owners map[string]map[string]map[string][]*record.Record
}

func NewIndex() *Index {
	return &Index{owners: make(map[string]map[string]map[string][]*record.Record)}
}

// Add files an event under its derived owner/category/date. Multiple
// categories in one summary are logged and the first is kept.
func (ix *Index) Add(ev *record.Record) {
	summary := ev.Value(record.FieldSummary)
	owner := Owner(summary)
	cat, n := Category(summary)
	if n > 1 {
		log.Warn("more than one category tag in summary", "summary", summary, "used", cat)
	}
	date := ev.Value(record.FieldStart)

	cats, ok := ix.owners[owner]
	if !ok {
		cats = make(map[string]map[string][]*record.Record)
		ix.owners[owner] = cats
	}
	dsts, ok := cats[cat]
	if !ok {
		dsts = make(map[string][]*record.Record)
		cats[cat] = dsts
	}
	// Several events for the same owner on the same day are kept in
	// arrival order.
	dsts[date] = append(dsts[date], ev)
}

// Dump writes every indexed event to events in owner, category, date
// order — the stable staging order the consolidation pass relies on —
// and a per-owner totals line to report after each owner's events.
func (ix *Index) Dump(events, report io.Writer) error {
	for _, owner := range sortedKeys(ix.owners) {
		cats := ix.owners[owner]
		totals := make(map[string]int, len(cats))
		total := 0
		for _, cat := range sortedKeys(cats) {
			for _, date := range sortedKeys(cats[cat]) {
				for _, ev := range cats[cat][date] {
					totals[cat]++
					total++
					if err := record.WriteRecord(events, ev); err != nil {
						return err
					}
				}
			}
		}
		if _, err := fmt.Fprintf(report, "%s: total: %d, events: %s\n", owner, total, formatTotals(totals)); err != nil {
			return err
		}
	}
	return nil
}

func formatTotals(totals map[string]int) string {
	parts := make([]string, 0, len(totals))
	for _, cat := range sortedKeys(totals) {
		parts = append(parts, fmt.Sprintf("%s: %d", cat, totals[cat]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
