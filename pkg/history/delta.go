// Package history produces and applies the deltas stored in a page's edit
// history. A delta is a unified diff from the previous content to the new
// content with three lines of context per hunk. Forward application is the
// only supported direction; reverting a delta is not provided.
package history

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sourcegraph/go-diff/diff"

	"wikid/pkg/wikierr"
)

// DiffContext is the number of unchanged lines kept around each hunk.
const DiffContext = 3

// Diff renders the unified diff transforming prev into next. The label
// names both sides of the header; identical contents yield an empty delta.
func Diff(label, prev, next string) string {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(prev),
		B:        difflib.SplitLines(next),
		FromFile: label,
		ToFile:   label,
		Context:  DiffContext,
	})
	if err != nil {
		// the writer is an in-memory buffer; this cannot fail in practice
		return ""
	}
	return out
}

// Apply replays a recorded delta forward over the exact previous content it
// was generated from, returning the next content. Deltas that do not parse
// as unified diffs are reported as corrupt.
func Apply(delta, prev string) (string, error) {
	if delta == "" {
		return prev, nil
	}
	fd, err := diff.ParseFileDiff([]byte(delta))
	if err != nil {
		return "", wikierr.Corrupt("history.apply", err)
	}

	// SplitLines normalizes the last line to carry a newline; the same
	// convention produced the delta, so hunk offsets line up. The synthetic
	// trailing newline is trimmed again after the join.
	orig := difflib.SplitLines(prev)
	var out []string
	idx := 0
	for _, hunk := range fd.Hunks {
		start := int(hunk.OrigStartLine) - 1
		if start < 0 {
			start = 0
		}
		for idx < start && idx < len(orig) {
			out = append(out, orig[idx])
			idx++
		}
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				out = append(out, line[1:]+"\n")
			case strings.HasPrefix(line, "-"):
				idx++
			case strings.HasPrefix(line, " "):
				if idx < len(orig) {
					out = append(out, orig[idx])
					idx++
				}
			}
		}
	}
	for idx < len(orig) {
		out = append(out, orig[idx])
		idx++
	}
	return strings.TrimSuffix(strings.Join(out, ""), "\n"), nil
}
