package inserter

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

// lineDiff renders a line based diff of before/after, keeping diffContext
// unchanged lines around each change.
func lineDiff(path, before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s (fixed)\n", path, path)

	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			writeLines(&sb, "+", text)
		case diffmatchpatch.DiffDelete:
			writeLines(&sb, "-", text)
		case diffmatchpatch.DiffEqual:
			first, last := i == 0, i == len(diffs)-1
			switch {
			case first && last:
				writeLines(&sb, " ", text)
			case first:
				writeLines(&sb, " ", tail(text, diffContext))
			case last:
				writeLines(&sb, " ", head(text, diffContext))
			case len(text) > 2*diffContext:
				writeLines(&sb, " ", head(text, diffContext))
				sb.WriteString("@@\n")
				writeLines(&sb, " ", tail(text, diffContext))
			default:
				writeLines(&sb, " ", text)
			}
		}
	}
	return sb.String()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func writeLines(sb *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
}

func head(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

func tail(lines []string, n int) []string {
	if len(lines) > n {
		return lines[len(lines)-n:]
	}
	return lines
}
