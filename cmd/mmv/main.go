// Package main provides the CLI entry point for mmv.
package main

import (
	"os"
)

// Version information, set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	a := newApp(os.Stdout, os.Stderr)
	if err := a.execute(os.Args[1:]); err != nil {
		a.output().Error("%v", err)
		os.Exit(1)
	}
}
