// internal/driver/driver.go
package driver

import (
	"zyxt/internal/ast"
	zerrors "zyxt/internal/errors"
	"zyxt/internal/interpreter"
	"zyxt/internal/lexer"
	"zyxt/internal/parser"
	"zyxt/internal/symtable"
	"zyxt/internal/token"
	"zyxt/internal/typecheck"
)

// InputSource re-fetches source text by filename, the hook used to
// re-read a file for error rendering. The REPL and CLI each supply their
// own.
type InputSource = zerrors.SourceProvider

// Tokenize is exposed separately from Compile for tooling that only needs
// the lexical stream (a formatter or syntax highlighter).
func Tokenize(source, filename string) ([]token.Token, *zerrors.ZError) {
	return lexer.Tokenize(source, filename)
}

// Compile runs the lexer, parser and type checker over source, returning
// a fully resolved program ready for Interpret. typeTable carries
// declarations across calls for a caller (the REPL) that wants later
// lines to see earlier ones; pass nil for a one-shot compile.
func Compile(source, filename string, typeTable *symtable.TypeCheckSymTable) (*ast.Block, *zerrors.ZError) {
	toks, err := lexer.Tokenize(source, filename)
	if err != nil {
		return nil, err
	}
	program, err := parser.Parse(toks, filename)
	if err != nil {
		return nil, err
	}
	return typecheck.Check(program, typeTable)
}

// Interpret evaluates an already-compiled program and returns its result
// value. valueTable is the interpreter analog of Compile's typeTable.
func Interpret(program *ast.Block, valueTable *symtable.InterpretSymTable) (ast.Value, *zerrors.ZError) {
	return interpreter.Run(program, valueTable)
}

// Run compiles and interprets source in one step with fresh symbol
// tables, the shape the CLI's `run` subcommand needs.
func Run(source, filename string) (ast.Value, *zerrors.ZError) {
	program, err := Compile(source, filename, nil)
	if err != nil {
		return nil, err
	}
	return Interpret(program, nil)
}

// ExitCode maps a top-level program result to a process exit code: Unit
// becomes 0, an i32 becomes its own value, anything else is T009 — the
// one place the integer-exit-code convention is enforced.
func ExitCode(v ast.Value) (int, *zerrors.ZError) {
	switch x := v.(type) {
	case ast.UnitValue:
		return 0, nil
	case *ast.IntValue:
		if x.Kind == ast.I32 {
			return int(x.V.Int64()), nil
		}
	}
	return 0, zerrors.T009()
}
