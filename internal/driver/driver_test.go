package driver

import (
	"bufio"
	"io"
	"os"
	"strings"
	"testing"
)

// runOK compiles and interprets source, failing the test on any error, and
// returns the program's exit code.
func runOK(t *testing.T, source string) int {
	t.Helper()
	v, err := Run(source, "<test>")
	if err != nil {
		t.Fatalf("Run(%q): unexpected error %v", source, err)
	}
	code, err := ExitCode(v)
	if err != nil {
		t.Fatalf("ExitCode(%v): unexpected error %v", v, err)
	}
	return code
}

// captureStdout redirects os.Stdout for the duration of fn and returns
// whatever it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	saved := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = saved }()

	fn()

	w.Close()
	var sb strings.Builder
	io.Copy(&sb, bufio.NewReader(r))
	return sb.String()
}

func TestRunArithmetic(t *testing.T) {
	if code := runOK(t, "1 + 2;"); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestRunAssignment(t *testing.T) {
	if code := runOK(t, "x := 10; x = x + 5; x;"); code != 15 {
		t.Errorf("exit code = %d, want 15", code)
	}
}

func TestRunIfElse(t *testing.T) {
	if code := runOK(t, "if 1 == 1 { 7 } else { 9 };"); code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
}

func TestRunProcedureCall(t *testing.T) {
	if code := runOK(t, "f := |a: i32, b: i32|: i32 { a + b }; f(4, 5);"); code != 9 {
		t.Errorf("exit code = %d, want 9", code)
	}
}

func TestRunTerminalOut(t *testing.T) {
	var code int
	out := captureStdout(t, func() {
		code = runOK(t, `ter.out("hello");`)
	})
	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(out, "hello\n") {
		t.Errorf("stdout = %q, want it to contain %q", out, "hello\\n")
	}
}

func TestRunStringConcatRejectedAsExitCode(t *testing.T) {
	v, err := Run(`x := "ab"; x ~ "cd";`, "<test>")
	if err != nil {
		t.Fatalf("Run: unexpected compile/runtime error %v", err)
	}
	if _, err := ExitCode(v); err == nil {
		t.Fatal("ExitCode: expected an error for a non-integer top-level value")
	} else if err.Code != "T009" {
		t.Errorf("ExitCode error code = %s, want T009", err.Code)
	}
}

func TestRunDefersRunInInsertionOrder(t *testing.T) {
	// Deferred expressions run in the order they were registered on frame
	// pop, not reversed the way Go's own `defer` would run them.
	out := captureStdout(t, func() {
		runOK(t, `{ defer ter.out("1"); defer ter.out("2"); ter.out("3") };`)
	})
	iThree := strings.Index(out, "3")
	iOne := strings.Index(out, "1")
	iTwo := strings.Index(out, "2")
	if iThree == -1 || iOne == -1 || iTwo == -1 || !(iThree < iOne && iOne < iTwo) {
		t.Errorf("stdout = %q, want \"3\" then \"1\" then \"2\"", out)
	}
}

func TestRunDeferSeesBlockBindings(t *testing.T) {
	// Defers run before the frame is discarded, so a deferred expression
	// still resolves names declared in its own block.
	out := captureStdout(t, func() {
		runOK(t, `{ x := 41; defer ter.out(x) }; 0;`)
	})
	if !strings.Contains(out, "41\n") {
		t.Errorf("stdout = %q, want the deferred print to see x", out)
	}
}

func TestProcedureBodyCannotCloseOverOuterBinding(t *testing.T) {
	// Symbol-table resolution walks outward only as far as the nearest
	// Function frame; past it, only Constants entries remain visible, so
	// a procedure body can't reach a sibling top-level declaration by
	// name — procedures don't capture their enclosing scope.
	_, err := Compile(`double := |n: i32|: i32 { n * 2 }; quad := |n: i32|: i32 { double(n) * 2 }; quad(3);`, "<test>", nil)
	if err == nil {
		t.Fatal("expected a compile error")
	}
	if err.Code != "T002" {
		t.Errorf("error code = %s, want T002", err.Code)
	}
}

func TestProcedureBodySeesItsOwnArgs(t *testing.T) {
	if code := runOK(t, `square := |n: i32|: i32 { n * n }; square(4);`); code != 16 {
		t.Errorf("exit code = %d, want 16", code)
	}
}

func TestCompileReportsLexError(t *testing.T) {
	_, err := Compile("x >< y;", "<test>", nil)
	if err == nil {
		t.Fatal("expected a lex error")
	}
	if err.Code != "L001" {
		t.Errorf("error code = %s, want L001", err.Code)
	}
}

func TestCompileReportsUndefinedName(t *testing.T) {
	_, err := Compile("y;", "<test>", nil)
	if err == nil {
		t.Fatal("expected a type error")
	}
	if err.Code != "T002" {
		t.Errorf("error code = %s, want T002", err.Code)
	}
}

func TestCompileReportsUnknownMember(t *testing.T) {
	_, err := Compile(`x := 1; x.nope;`, "<test>", nil)
	if err == nil {
		t.Fatal("expected a type error")
	}
	if err.Code != "T005" {
		t.Errorf("error code = %s, want T005", err.Code)
	}
}

func TestCompileReportsDuplicateDeclaration(t *testing.T) {
	_, err := Compile("x := 1; x := 2;", "<test>", nil)
	if err == nil {
		t.Fatal("expected a type error")
	}
	if err.Code != "T011" {
		t.Errorf("error code = %s, want T011", err.Code)
	}
}

func TestRunRejectsAssignIntoConstant(t *testing.T) {
	// "i32 = str;" type-checks fine (both sides are type-valued names), so
	// the Constants-frame protection only surfaces at interpret time.
	_, err := Run("i32 = str;", "<test>")
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	if err.Code != "T001" {
		t.Errorf("error code = %s, want T001", err.Code)
	}
}

func TestRunExpressionBodiedProcedure(t *testing.T) {
	if code := runOK(t, "f := |a: i32, b: i32|: i32 a + b; f(4, 5);"); code != 9 {
		t.Errorf("exit code = %d, want 9", code)
	}
}

func TestRunUnparenthesisedCall(t *testing.T) {
	if code := runOK(t, "f := |a: i32, b: i32|: i32 { a + b }; f 4, 5;"); code != 9 {
		t.Errorf("exit code = %d, want 9", code)
	}
}

func TestRunDefaultedArgOmittedAtCallSite(t *testing.T) {
	if code := runOK(t, "f := |a: i32, b: i32: 2|: i32 { a + b }; f(10);"); code != 12 {
		t.Errorf("exit code = %d, want 12", code)
	}
}

func TestRunEarlyReturnStillRunsDefer(t *testing.T) {
	var code int
	out := captureStdout(t, func() {
		code = runOK(t, `f := |n: i32|: i32 { defer ter.out("cleanup"); ret n }; f(3);`)
	})
	if code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if !strings.Contains(out, "cleanup\n") {
		t.Errorf("stdout = %q, want the deferred print to have run on early return", out)
	}
}

func TestRunReturnInsideIfBranch(t *testing.T) {
	if code := runOK(t, "f := |n: i32|: i32 { if n == 0 { ret 5 }; 7 }; f(0);"); code != 5 {
		t.Errorf("exit code = %d, want 5", code)
	}
	if code := runOK(t, "f := |n: i32|: i32 { if n == 0 { ret 5 }; 7 }; f(1);"); code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
}

func TestRunStructFieldAccess(t *testing.T) {
	if code := runOK(t, "Point := struct |x: i32, y: i32| {}; p := Point(1, 2); p.x + p.y;"); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestRunStructFieldDefault(t *testing.T) {
	if code := runOK(t, "Point := struct |x: i32, y: i32: 4| {}; p := Point(1); p.y;"); code != 4 {
		t.Errorf("exit code = %d, want 4", code)
	}
}

func TestRunClassInstFieldConstruction(t *testing.T) {
	if code := runOK(t, "C := class { inst x := 0; }; c := C(5); c.x;"); code != 5 {
		t.Errorf("exit code = %d, want 5", code)
	}
}

func TestRunClassInstFieldDefault(t *testing.T) {
	if code := runOK(t, "C := class { inst x := 9; }; c := C(); c.x;"); code != 9 {
		t.Errorf("exit code = %d, want 9", code)
	}
}

func TestRunClassNamespaceConstant(t *testing.T) {
	if code := runOK(t, "C := class { k := 7; }; C.k;"); code != 7 {
		t.Errorf("exit code = %d, want 7", code)
	}
}

func TestRunAnnotatedDeclareCastsAtRuntime(t *testing.T) {
	if code := runOK(t, "x: i64 := 40; x @ i32;"); code != 40 {
		t.Errorf("exit code = %d, want 40", code)
	}
}

func TestRunAnnotatedDeclareCastFailureSurfacesAtRuntime(t *testing.T) {
	// `x: i32 := "a"` type-checks — the annotation mismatch inserts an
	// implicit cast — but "a" has no integer parse, so the cast fails
	// when actually evaluated.
	_, err := Run(`x: i32 := "a";`, "<test>")
	if err == nil {
		t.Fatal("expected a runtime error")
	}
	if err.Code != "I001" {
		t.Errorf("error code = %s, want I001", err.Code)
	}
}

func TestRunStringToIntTypecast(t *testing.T) {
	if code := runOK(t, `"42" @ i32;`); code != 42 {
		t.Errorf("exit code = %d, want 42", code)
	}
}

func TestRunPreprocessInlinesCompileTimeValue(t *testing.T) {
	if code := runOK(t, "pre 1 + 2;"); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
}

func TestCompileReportsParseError(t *testing.T) {
	_, err := Compile("1 + 2);", "<test>", nil)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if err.Code != "P023" {
		t.Errorf("error code = %s, want P023", err.Code)
	}
}
