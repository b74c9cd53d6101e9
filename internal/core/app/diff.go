package app

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContext = 3

type lineOp struct {
	op   diffmatchpatch.Operation
	text string
}

// UnifiedDiff renders a line diff between before and after with a few lines of context around
// each change. Identical inputs produce an empty string.
func UnifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var ops []lineOp
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			ops = append(ops, lineOp{op: d.Type, text: line})
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)
	oldLine, newLine := 1, 1
	for i := 0; i < len(ops); {
		if ops[i].op == diffmatchpatch.DiffEqual {
			oldLine++
			newLine++
			i++
			continue
		}
		start := i - diffContext
		if start < 0 {
			start = 0
		}
		for start < i && ops[start].op != diffmatchpatch.DiffEqual {
			start++
		}
		end := hunkEnd(ops, i)
		hunkOld, hunkNew := oldLine-(i-start), newLine-(i-start)
		oldCount, newCount := 0, 0
		for _, op := range ops[start:end] {
			if op.op != diffmatchpatch.DiffInsert {
				oldCount++
			}
			if op.op != diffmatchpatch.DiffDelete {
				newCount++
			}
		}
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", hunkOld, oldCount, hunkNew, newCount)
		for _, op := range ops[start:end] {
			sb.WriteString(prefix(op.op))
			sb.WriteString(op.text)
			sb.WriteByte('\n')
		}
		for _, op := range ops[i:end] {
			if op.op != diffmatchpatch.DiffInsert {
				oldLine++
			}
			if op.op != diffmatchpatch.DiffDelete {
				newLine++
			}
		}
		i = end
	}
	return sb.String()
}

// hunkEnd extends a hunk from the change at i until more than two context windows of equal
// lines separate it from the next change.
func hunkEnd(ops []lineOp, i int) int {
	for i < len(ops) {
		if ops[i].op != diffmatchpatch.DiffEqual {
			i++
			continue
		}
		run := i
		for run < len(ops) && ops[run].op == diffmatchpatch.DiffEqual {
			run++
		}
		if run == len(ops) || run-i > 2*diffContext {
			end := i + diffContext
			if end > run {
				end = run
			}
			return end
		}
		i = run
	}
	return i
}

func prefix(op diffmatchpatch.Operation) string {
	switch op {
	case diffmatchpatch.DiffInsert:
		return "+"
	case diffmatchpatch.DiffDelete:
		return "-"
	default:
		return " "
	}
}

func splitLines(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}
