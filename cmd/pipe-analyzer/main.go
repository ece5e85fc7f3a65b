package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := newApp().rootCommand().ExecuteContext(ctx)
	os.Exit(exitCode(err))
}

// exitError carries a specific process exit code.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		fmt.Fprintln(os.Stderr, ee.msg)
		return ee.code
	}
	if errors.Is(err, context.Canceled) {
		return 130 // Standard shell convention for SIGINT
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}
