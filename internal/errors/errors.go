// Package errors is the uniform error currency of the whole pipeline
// (spec.md §4.7 / §7). Every recoverable lexical, syntactic, semantic, or
// interop failure is reported as a Diagnostic and collected rather than
// returned as a bare error, so a single pass can report every problem it
// finds instead of stopping at the first one.
//
// The Kind taxonomy and the New/Wrap/WithContext shape are grounded on the
// teacher's pkgs/errors/errors.go DevCmdError, generalized from a flat
// string Type to a structured Kind plus an optional source Span, Note, and
// Help, since this spec needs caret-pointing rich diagnostics the
// teacher's CLI-facing errors didn't.
package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/span"
)

// Kind partitions diagnostics into the families spec.md §7 enumerates.
type Kind int

const (
	// Lexical
	KindInvalidCharacter Kind = iota
	KindUnterminatedString
	KindInvalidNumber

	// Syntactic
	KindSyntaxError
	KindUnexpectedToken
	KindUnexpectedEOF
	KindInvalidExpression
	KindInvalidStatement

	// Semantic (type checker)
	KindTypeError
	KindTypeMismatch
	KindUndefinedVariable
	KindUndefinedFunction
	KindUndefinedType
	KindInvalidMethodCall
	KindAmbiguousType
	KindFieldNotFound

	// Code generation
	KindUnsupportedFeature
	KindInternalError

	// Interop
	KindCargoFailure
	KindInteropParseFailure
	KindCrateNotFound
	KindInteropIOError

	// I/O
	KindFileNotFound
	KindIOError
)

var kindNames = [...]string{
	KindInvalidCharacter:    "InvalidCharacter",
	KindUnterminatedString:  "UnterminatedString",
	KindInvalidNumber:       "InvalidNumber",
	KindSyntaxError:         "SyntaxError",
	KindUnexpectedToken:     "UnexpectedToken",
	KindUnexpectedEOF:       "UnexpectedEOF",
	KindInvalidExpression:   "InvalidExpression",
	KindInvalidStatement:    "InvalidStatement",
	KindTypeError:           "TypeError",
	KindTypeMismatch:        "TypeMismatch",
	KindUndefinedVariable:   "UndefinedVariable",
	KindUndefinedFunction:   "UndefinedFunction",
	KindUndefinedType:       "UndefinedType",
	KindInvalidMethodCall:   "InvalidMethodCall",
	KindAmbiguousType:       "AmbiguousType",
	KindFieldNotFound:       "FieldNotFound",
	KindUnsupportedFeature:  "UnsupportedFeature",
	KindInternalError:       "InternalError",
	KindCargoFailure:        "CargoFailure",
	KindInteropParseFailure: "InteropParseFailure",
	KindCrateNotFound:       "CrateNotFound",
	KindInteropIOError:      "InteropIOError",
	KindFileNotFound:        "FileNotFound",
	KindIOError:             "IOError",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsWarning reports whether this kind should be counted as a warning
// rather than an error in Collection.Summary(). Nothing in the current
// taxonomy is a warning yet, but the hook exists so a future lint-style
// diagnostic has somewhere to land without widening Diagnostic itself.
func (k Kind) IsWarning() bool { return false }

// Diagnostic is a single error record: what kind of problem, a message,
// and context (span/note/help), following the teacher's
// (Type, Message, Cause, Context) record shape generalized to spans.
type Diagnostic struct {
	Kind    Kind
	Message string
	Span    span.Span
	Note    string
	Help    string
	Cause   error
}

// New builds a bare diagnostic.
func New(kind Kind, message string, at span.Span) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: message, Span: at}
}

// Wrap builds a diagnostic carrying an underlying cause, mirroring the
// teacher's Wrap(errorType, message, cause).
func Wrap(kind Kind, message string, at span.Span, cause error) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: message, Span: at, Cause: cause}
}

// WithNote attaches an explanatory note and returns the receiver for
// chaining, e.g. errors.New(...).WithNote("...").WithHelp("...").
func (d *Diagnostic) WithNote(note string) *Diagnostic {
	d.Note = note
	return d
}

// WithHelp attaches a suggestion string.
func (d *Diagnostic) WithHelp(help string) *Diagnostic {
	d.Help = help
	return d
}

// Error implements the error interface so a Diagnostic can be used
// anywhere a plain error is expected (e.g. returned from a Go stdlib call
// site at the I/O boundary).
func (d *Diagnostic) Error() string {
	return d.Compact()
}

// Unwrap exposes the wrapped cause, if any.
func (d *Diagnostic) Unwrap() error {
	return d.Cause
}

// Compact renders "span: kind: message" (spec.md §4.7).
func (d *Diagnostic) Compact() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s: %s", d.Span, d.Kind, d.Message)
	return b.String()
}

// Rich renders the compact form followed by note:/help: lines and, when
// source is non-empty, the offending line with a caret under the span.
// This is the "rich formatter" SPEC_FULL.md §4 adds over spec.md's
// minimum.
func (d *Diagnostic) Rich(source string) string {
	var b strings.Builder
	b.WriteString(d.Compact())
	if d.Note != "" {
		fmt.Fprintf(&b, "\n  note: %s", d.Note)
	}
	if d.Help != "" {
		fmt.Fprintf(&b, "\n  help: %s", d.Help)
	}
	if line := sourceLine(source, d.Span.Start.Line); line != "" {
		fmt.Fprintf(&b, "\n  %s\n  %s", line, caret(d.Span))
	}
	return b.String()
}

func sourceLine(source string, lineNo int) string {
	if lineNo <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNo > len(lines) {
		return ""
	}
	return lines[lineNo-1]
}

func caret(s span.Span) string {
	col := s.Start.Column
	if col < 1 {
		col = 1
	}
	width := s.End.Column - s.Start.Column
	if s.End.Line != s.Start.Line || width < 1 {
		width = 1
	}
	return strings.Repeat(" ", col-1) + strings.Repeat("^", width)
}

// Collection accumulates diagnostics across a single pass so the pass
// never short-circuits on the first error (spec.md §4.5/§7).
type Collection struct {
	items []*Diagnostic
}

// Add appends a diagnostic.
func (c *Collection) Add(d *Diagnostic) {
	if d == nil {
		return
	}
	c.items = append(c.items, d)
}

// Addf is a convenience constructor+append.
func (c *Collection) Addf(kind Kind, at span.Span, format string, args ...any) *Diagnostic {
	d := New(kind, fmt.Sprintf(format, args...), at)
	c.Add(d)
	return d
}

// Merge appends every diagnostic from other into c.
func (c *Collection) Merge(other *Collection) {
	if other == nil {
		return
	}
	c.items = append(c.items, other.items...)
}

// HasErrors reports whether any non-warning diagnostic was collected.
func (c *Collection) HasErrors() bool {
	for _, d := range c.items {
		if !d.Kind.IsWarning() {
			return true
		}
	}
	return false
}

// Items returns diagnostics in source order (stable sort by span).
func (c *Collection) Items() []*Diagnostic {
	sorted := make([]*Diagnostic, len(c.items))
	copy(sorted, c.items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start.Less(sorted[j].Span.Start)
	})
	return sorted
}

// Len reports the number of collected diagnostics.
func (c *Collection) Len() int { return len(c.items) }

// Summary renders the "N error(s), M warning(s)" line spec.md §7 requires.
func (c *Collection) Summary() string {
	errs, warns := 0, 0
	for _, d := range c.items {
		if d.Kind.IsWarning() {
			warns++
		} else {
			errs++
		}
	}
	return fmt.Sprintf("%d error(s), %d warning(s)", errs, warns)
}

// Compact renders every diagnostic in source order, one per line, plus the
// trailing summary line.
func (c *Collection) Compact() string {
	var b strings.Builder
	for _, d := range c.Items() {
		b.WriteString(d.Compact())
		b.WriteByte('\n')
	}
	b.WriteString(c.Summary())
	return b.String()
}

// Rich renders every diagnostic in rich (caret-pointing) form plus the
// trailing summary line.
func (c *Collection) Rich(source string) string {
	var b strings.Builder
	for _, d := range c.Items() {
		b.WriteString(d.Rich(source))
		b.WriteString("\n\n")
	}
	b.WriteString(c.Summary())
	return b.String()
}
