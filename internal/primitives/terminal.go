// internal/primitives/terminal.go
package primitives

import (
	"fmt"
	"strings"

	"zyxt/internal/ast"
	zerrors "zyxt/internal/errors"
)

// registerTerminal builds the `ter` singleton: the language's `out` print
// construct, expressed as an ordinary namespace method on a real type
// rather than a special case in the checker or interpreter. `ter.out(a, b)`
// desugars like any other method call into `out(ter, a, b)`, which resolves
// through the same namespace-dispatch fallback every other primitive's
// methods use.
func registerTerminal() {
	ns := map[string]ast.NamespaceEntry{}

	ns["out"] = method(func(args []ast.Value) (ast.Value, *zerrors.ZError) {
		parts := make([]string, 0, len(args)-1)
		for _, a := range args[1:] {
			parts = append(parts, a.String())
		}
		fmt.Println(strings.Join(parts, " "))
		return ast.UnitValue{}, nil
	})

	registry["ter"] = &ast.DefType{Name: "ter", NamespaceM: ns}
}
