// internal/repl/repl.go
package repl

import (
	"bufio"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"zyxt/internal/ast"
	"zyxt/internal/errors"
	"zyxt/internal/interpreter"
	"zyxt/internal/lexer"
	"zyxt/internal/parser"
	"zyxt/internal/symtable"
	"zyxt/internal/typecheck"
)

const replFilename = "<repl>"

// Start runs an interactive read-eval-print loop. A single type-check
// table and a single interpret table are held open for the whole
// session, so a declaration on one line is visible — and assignable —
// on the next, matching the driver's `compile(..., type_table: &mut
// TypeCheckSymTable)` interface rather than re-running a replayed buffer.
func Start() {
	fmt.Println("zyxt repl | type 'exit' to quit")
	color := isatty.IsTerminal(os.Stdout.Fd())

	typeTable := typecheck.NewSymTable()
	typecheck.StartSession(typeTable)
	defer typecheck.EndSession(typeTable)
	valueTable := interpreter.NewSymTable()
	interpreter.StartSession(valueTable)
	defer interpreter.EndSession(valueTable)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		v, err := evalLine(line, typeTable, valueTable)
		if err != nil {
			fmt.Println(renderErr(err, line, color))
			continue
		}
		fmt.Println(v.String())
	}
}

func evalLine(line string, typeTable *symtable.TypeCheckSymTable, valueTable *symtable.InterpretSymTable) (ast.Value, *errors.ZError) {
	toks, err := lexer.Tokenize(line, replFilename)
	if err != nil {
		return nil, err
	}
	program, err := parser.Parse(toks, replFilename)
	if err != nil {
		return nil, err
	}
	if _, err := typecheck.CheckStatements(typeTable, program.Content); err != nil {
		return nil, err
	}
	return interpreter.EvalStatements(valueTable, program.Content)
}

func renderErr(err *errors.ZError, line string, color bool) string {
	rendered := err.Render(func(filename string) (string, bool) {
		if filename != replFilename {
			return "", false
		}
		return line, true
	})
	if !color {
		return rendered
	}
	return "\x1b[31m" + rendered + "\x1b[0m"
}
