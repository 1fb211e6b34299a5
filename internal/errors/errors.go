// internal/errors/errors.go
package errors

import (
	"fmt"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// SourceProvider re-fetches the contents of a source file by name (the
// driver's InputSource). Error rendering uses it to
// recover the lines surrounding a span; if it returns false the span's
// position is still printed, just without source context.
type SourceProvider func(filename string) (string, bool)

// ZError is the single error type returned across lexing, parsing, type
// checking and interpretation. Code is one of the closed set of L/P/T/I
// identifiers below; Spans may be empty for errors with no useful location.
type ZError struct {
	Code    string
	Message string
	Spans   []Span
}

func New(code, message string) *ZError {
	return &ZError{Code: code, Message: message}
}

func (e *ZError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithSpan attaches a single span to the error, replacing any existing ones.
func (e *ZError) WithSpan(span Span) *ZError {
	e.Spans = []Span{span}
	return e
}

// WithSpans attaches multiple spans, e.g. for errors spanning disjoint tokens.
func (e *ZError) WithSpans(spans ...Span) *ZError {
	e.Spans = spans
	return e
}

const contextLines = 3

// Render produces the filename:line:col header followed by up to three
// lines of surrounding source per attached span, with the erroring range
// marked by a caret line underneath it.
func (e *ZError) Render(get SourceProvider) string {
	var sb strings.Builder
	for _, span := range e.Spans {
		fmt.Fprintf(&sb, "%s\n", span.Start.String())
		src, ok := get(span.Start.Filename)
		if !ok {
			continue
		}
		lines := strings.Split(src, "\n")
		startLine := span.Start.Line - contextLines
		if startLine < 1 {
			startLine = 1
		}
		endLine := span.End.Line + contextLines
		if endLine > len(lines) {
			endLine = len(lines)
		}
		for i := startLine; i <= endLine; i++ {
			fmt.Fprintf(&sb, "%4d | %s\n", i, lines[i-1])
			if i == span.Start.Line {
				pad := strings.Repeat(" ", span.Start.Column-1)
				marks := "^"
				if span.End.Line == span.Start.Line && span.End.Column > span.Start.Column+1 {
					marks = strings.Repeat("^", span.End.Column-span.Start.Column)
				}
				fmt.Fprintf(&sb, "     | %s%s\n", pad, marks)
			}
		}
	}
	fmt.Fprintf(&sb, "Error %s: %s\n", e.Code, e.Message)
	return sb.String()
}

// Internal wraps a bug in the implementation itself — never a user mistake —
// under the catch-all code so test suites can tell the two apart.
func Internal(cause error, where string) *ZError {
	return New("I000", pkgerrors.Wrap(cause, where).Error())
}

// --- L: lexer errors ---

func L001(symbol string) *ZError {
	return New("L001", fmt.Sprintf("Unknown symbol %q", symbol))
}

func L002() *ZError {
	return New("L002", "Unterminated string literal")
}

func L003() *ZError {
	return New("L003", "Unterminated block comment")
}

// --- P: parser errors ---

func P001() *ZError { return New("P001", "Stray start/end of comment") }
func P002() *ZError { return New("P002", "Unexpected token (could not be collapsed)") }
func P003() *ZError { return New("P003", "Unexpected token (could not be parsed into AST)") }
func P004() *ZError { return New("P004", "Missing ident before assignment operator") }
func P005() *ZError { return New("P005", "Missing value after assignment operator") }
func P006() *ZError { return New("P006", "Missing value to left/right of binary operator") }
func P007() *ZError { return New("P007", "Expected more after this token") }
func P008() *ZError { return New("P008", "Expected more before this token") }
func P009(want string) *ZError {
	return New("P009", fmt.Sprintf("Expected closing %s", want))
}
func P010() *ZError { return New("P010", "Classes cannot have parameters here") }
func P011() *ZError {
	return New("P011", "Classes must have a block after `class` (consider using a `struct`)")
}
func P012() *ZError { return New("P012", "Invalid ident name") }
func P013() *ZError { return New("P013", "Invalid tokens between flag and declared ident") }
func P014() *ZError { return New("P014", "Cannot delete a dereferenced ident") }
func P015() *ZError { return New("P015", "Only idents can be deleted") }
func P016(tok string) *ZError {
	return New("P016", fmt.Sprintf("%s not after `if`", tok))
}
func P017(tok string) *ZError {
	return New("P017", fmt.Sprintf("%s found after `else`", tok))
}
func P018() *ZError { return New("P018", "Block expected after condition expression") }
func P019() *ZError { return New("P019", "Expected an ident as an argument name") }
func P020() *ZError { return New("P020", "Expected an expression as a type") }
func P021() *ZError {
	return New("P021", "Detected unparenthesised argument list with no function")
}
func P022() *ZError { return New("P022", "Expected expression before `.`") }
func P023() *ZError { return New("P023", "Stray `)`") }
func P024() *ZError { return New("P024", "Stray `(`") }

// --- T: type checker errors ---

func T001() *ZError { return New("T001", "Cannot assign into a constant frame") }
func T002(name string) *ZError {
	return New("T002", fmt.Sprintf("Name %q not found", name))
}
func T003(want, got string) *ZError {
	return New("T003", fmt.Sprintf("Mismatched return type: expected %s, got %s", want, got))
}
func T004(want, got string) *ZError {
	return New("T004", fmt.Sprintf("Type mismatch: expected %s, got %s", want, got))
}
func T005(name string) *ZError {
	return New("T005", fmt.Sprintf("Member %q not found", name))
}
func T006() *ZError { return New("T006", "Expected a pattern (a plain ident) here") }
func T007(name string) *ZError {
	return New("T007", fmt.Sprintf("%q is not callable", name))
}
func T008(want, got int) *ZError {
	return New("T008", fmt.Sprintf("Expected %d arguments, got %d", want, got))
}
func T009() *ZError {
	return New("T009", "Program must evaluate to an integer exit code")
}
func T010(name string) *ZError {
	return New("T010", fmt.Sprintf("%q is not a type", name))
}
func T011() *ZError { return New("T011", "Duplicate declaration in this frame") }
func T012() *ZError {
	return New("T012", "A struct with a user-defined `_new` cannot take arguments")
}
func T013() *ZError { return New("T013", "Class/struct body must consist only of declarations") }
func T014() *ZError { return New("T014", "A struct must not define `_new`") }

// --- I: interpreter errors ---

func I001(name string) *ZError {
	return New("I001", fmt.Sprintf("Arithmetic overflow in %s", name))
}
func I002(input string) *ZError {
	return New("I002", fmt.Sprintf("Unhandled builtin input: %s", input))
}
func I003() *ZError { return New("I003", "Division by zero") }