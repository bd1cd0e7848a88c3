// Package main provides partdump, a tool dumping the structure of raw HTTP/1 messages,
// multipart bodies and urlencoded forms.
//
// Usage:
//
//	partdump [--config FILE] [--log-level LEVEL] [--format json|msgpack] <command> FILE
//
// FILE may be "-" to read from the standard input. Exit codes:
//   - 0: success
//   - 1: usage or setup error
//   - 2: the input could not be parsed
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           "partdump",
		Usage:          "Dump parsed HTTP/1 messages, multipart bodies and urlencoded forms",
		Flags:          globalFlags(),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			multipartCommand(),
			formCommand(),
			statusCommand(),
			requestCommand(),
		},
	}
}

// exitErrHandler preserves exit codes passed via cli.Exit.
func exitErrHandler(c *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		if msg := exitCoder.Error(); msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(c.App.ErrWriter, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(c.App.ErrWriter, "Error: %v\n", err)
	os.Exit(1)
}
