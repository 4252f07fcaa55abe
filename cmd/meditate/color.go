package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/meditation/internal/config"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiRed   = "\033[31m"
	ansiGreen = "\033[32m"
	ansiDim   = "\033[2m"
)

// painter adds ANSI styling when writing to a terminal.
type painter struct {
	enabled bool
}

func newPainter(out io.Writer) painter {
	if config.IsTestMode {
		return painter{}
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok || os.Getenv("TERM") == "dumb" {
		return painter{}
	}
	f, ok := out.(*os.File)
	if !ok {
		return painter{}
	}
	fd := f.Fd()
	return painter{enabled: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)}
}

func (p painter) wrap(code, s string) string {
	if !p.enabled {
		return s
	}
	return code + s + ansiReset
}

func (p painter) bold(s string) string  { return p.wrap(ansiBold, s) }
func (p painter) ok(s string) string    { return p.wrap(ansiGreen, s) }
func (p painter) fail(s string) string  { return p.wrap(ansiRed, s) }
func (p painter) faint(s string) string { return p.wrap(ansiDim, s) }
