package session

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type DiffOp string

const (
	DiffContext DiffOp = "context"
	DiffAdded   DiffOp = "added"
	DiffRemoved DiffOp = "removed"
)

// DiffLine is one line of the document-vs-draft comparison.
type DiffLine struct {
	Op   DiffOp
	Text string
}

// SandboxDiff compares the original document with the current draft line
// by line.
func (s *Session) SandboxDiff() []DiffLine {
	s.mu.Lock()
	before, after := s.doc.Text, s.draft
	s.mu.Unlock()
	return lineDiff(before, after)
}

func lineDiff(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lineArray)

	var lines []DiffLine
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		op := DiffContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = DiffAdded
		case diffmatchpatch.DiffDelete:
			op = DiffRemoved
		}
		for _, line := range chunk {
			lines = append(lines, DiffLine{Op: op, Text: line})
		}
	}
	return lines
}

// Changed reports whether any line differs.
func Changed(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Op != DiffContext {
			return true
		}
	}
	return false
}
