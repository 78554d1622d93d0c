// Package compileerr formats compilation errors with source context and a
// caret pointing at the offending byte offset, adapted from the teacher's
// internal/errors package: the original keyed a Position off its own
// lexer, which a JSON-AST pipeline has no equivalent of, so Position here
// is a byte offset resolved against the raw document text instead.
package compileerr

import (
	"fmt"
	"strings"
)

// Position locates a byte offset within a source document as a 1-indexed
// line/column pair.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Locate resolves a byte offset into source into a Position. Offsets
// outside the document clamp to the nearest end.
func Locate(source string, offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(source) {
		offset = len(source)
	}
	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Position{Offset: offset, Line: line, Column: col}
}

// CompileError is a single compilation violation with position and
// document context: a duplicate identity, an unknown variant, a
// reference to a nonexistent field, a missing required property.
type CompileError struct {
	Message string
	Source  string
	NodeID  string
	Pos     Position
}

// New creates a CompileError not tied to any byte offset (the common
// case: most violations are structural — a duplicate identity, a dangling
// reference — rather than a single malformed token).
func New(nodeID, format string, args ...any) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...), NodeID: nodeID}
}

// NewAt creates a CompileError anchored to a byte offset in source.
func NewAt(source string, offset int, nodeID, format string, args ...any) *CompileError {
	return &CompileError{
		Message: fmt.Sprintf(format, args...),
		Source:  source,
		NodeID:  nodeID,
		Pos:     Locate(source, offset),
	}
}

func (e *CompileError) Error() string { return e.Format(false) }

// Format renders the error with a source line and caret when a source
// document was supplied; otherwise it falls back to "nodeID: message".
func (e *CompileError) Format(color bool) string {
	if e.Source == "" {
		if e.NodeID != "" {
			return fmt.Sprintf("%s: %s", e.NodeID, e.Message)
		}
		return e.Message
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "error at line %d:%d", e.Pos.Line, e.Pos.Column)
	if e.NodeID != "" {
		fmt.Fprintf(&sb, " (%s)", e.NodeID)
	}
	sb.WriteString("\n")

	if line := sourceLine(e.Source, e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// Aggregate collects every violation the compiler pipeline finds (spec
// §4.1, "the pipeline collects errors and throws a single aggregate error
// with all violations") rather than failing at the first one.
type Aggregate struct {
	Errors []*CompileError
}

func (a *Aggregate) Add(err *CompileError) {
	a.Errors = append(a.Errors, err)
}

func (a *Aggregate) Addf(nodeID, format string, args ...any) {
	a.Add(New(nodeID, format, args...))
}

func (a *Aggregate) HasErrors() bool { return len(a.Errors) > 0 }

// AsError returns a itself as an error when non-empty, nil otherwise — the
// usual "return agg.AsError()" tail of a compile pass.
func (a *Aggregate) AsError() error {
	if !a.HasErrors() {
		return nil
	}
	return a
}

func (a *Aggregate) Error() string {
	parts := make([]string, len(a.Errors))
	for i, e := range a.Errors {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("%d compile error(s):\n%s", len(a.Errors), strings.Join(parts, "\n"))
}
