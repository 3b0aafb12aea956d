// Command n8nctl is a command-line client for the n8n public API.
//
// Configuration is read from N8N_* environment variables, an optional .env
// file in the working directory and an optional config file given with
// N8N_CONFIG_FILE.
package main

import (
	"bufio"
	"io"
	"os"

	"github.com/mitchellh/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	name := "n8nctl"
	if len(args) > 0 {
		name = args[0]
		args = args[1:]
	}

	if len(args) == 1 && (args[0] == "-version" || args[0] == "-v") {
		args = []string{"version"}
	}

	ui := &cli.BasicUi{
		Reader:      bufio.NewReader(stdin),
		Writer:      stdout,
		ErrorWriter: stderr,
	}

	c := &cli.CLI{
		Name:        name,
		Args:        args,
		Version:     version,
		Commands:    commands(&meta{ui: ui, logOutput: stderr}),
		HelpWriter:  stdout,
		ErrorWriter: stderr,
	}

	exitCode, err := c.Run()
	if err != nil {
		ui.Error(err.Error())
		return 1
	}

	return exitCode
}
