package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/io7m/ironpage-sub000/internal/cli"
	"github.com/io7m/ironpage-sub000/pkg/ironpage"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(ironpage.ExitPanic)
		}
	}()

	if os.Getenv("IRONPAGE_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(ironpage.ExitCodeForError(err))
	}
}
