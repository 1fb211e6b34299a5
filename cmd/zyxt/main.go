// cmd/zyxt/main.go
package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"zyxt/internal/driver"
	"zyxt/internal/errors"
	"zyxt/internal/repl"
)

const usage = `zyxt - the Zyxt language driver

Usage:
  zyxt run <file>      compile and run a .zx program
  zyxt check <file>    type-check a .zx program without running it
  zyxt repl            start an interactive session
  zyxt version         print the driver version

Exit status is the program's own evaluated exit code; a compile or
runtime error exits 1.`

const version = "zyxt 0.1.0"

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch args[0] {
	case "run":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: zyxt run <file>")
			os.Exit(1)
		}
		os.Exit(runFile(args[1]))
	case "check":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: zyxt check <file>")
			os.Exit(1)
		}
		os.Exit(checkFile(args[1]))
	case "repl":
		repl.Start()
	case "version", "-v", "--version":
		fmt.Println(version)
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "zyxt: unknown command %q\n\n%s\n", args[0], usage)
		os.Exit(1)
	}
}

func readSource(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

func source(path string) errors.SourceProvider {
	return func(filename string) (string, bool) {
		if filename != path {
			return "", false
		}
		return readSource(path)
	}
}

func renderErr(err *errors.ZError, path string) string {
	rendered := err.Render(source(path))
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return rendered
	}
	return "\x1b[31m" + rendered + "\x1b[0m"
}

func runFile(path string) int {
	src, ok := readSource(path)
	if !ok {
		fmt.Fprintf(os.Stderr, "zyxt: cannot read %s\n", path)
		return 1
	}
	result, err := driver.Run(src, path)
	if err != nil {
		fmt.Fprintln(os.Stderr, renderErr(err, path))
		return 1
	}
	code, err := driver.ExitCode(result)
	if err != nil {
		fmt.Fprintln(os.Stderr, renderErr(err, path))
		return 1
	}
	return code
}

func checkFile(path string) int {
	src, ok := readSource(path)
	if !ok {
		fmt.Fprintf(os.Stderr, "zyxt: cannot read %s\n", path)
		return 1
	}
	if _, err := driver.Compile(src, path, nil); err != nil {
		fmt.Fprintln(os.Stderr, renderErr(err, path))
		return 1
	}
	fmt.Println("ok")
	return 0
}
